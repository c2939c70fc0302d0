package conversation

import (
	"time"

	"chefgpt-server/internal/utils/stringutils"
)

// DefaultTitle labels a conversation until its first caller turn exists.
const DefaultTitle = "New Chat"

// OwnerID identifies an authenticated caller. The zero value is the anonymous (guest) identity.
type OwnerID string

// Anonymous is the identity of a caller without a valid credential.
const Anonymous OwnerID = ""

// IsAnonymous reports whether the identity is the guest identity.
func (o OwnerID) IsAnonymous() bool {
	return o == Anonymous
}

// Speaker attributes a turn to one side of the exchange.
type Speaker string

const (
	SpeakerCaller    Speaker = "user"
	SpeakerAssistant Speaker = "model"
)

// Valid reports whether s is one of the two known speakers.
func (s Speaker) Valid() bool {
	return s == SpeakerCaller || s == SpeakerAssistant
}

// TitleState tracks how far title derivation has progressed.
type TitleState string

const (
	TitleDefault     TitleState = "default"
	TitleProvisional TitleState = "provisional"
	TitleFinal       TitleState = "final"
)

// Turn is one message in a conversation.
type Turn struct {
	Speaker   Speaker
	Text      string
	CreatedAt time.Time
}

// Stats is bookkeeping derived from the turn list. It is never set directly.
type Stats struct {
	Count      int
	StartedAt  time.Time
	LastTurnAt *time.Time
	Duration   time.Duration
}

// Conversation is the persisted aggregate of one chat session.
type Conversation struct {
	ID         string
	Owner      OwnerID
	Title      string
	TitleState TitleState
	Turns      []Turn
	Stats      Stats
	// Version increments on every successful replace and guards against lost updates.
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Summary is the list view of a conversation, without turn bodies.
type Summary struct {
	ID    string
	Title string
	Stats Stats
}

// NewConversation creates an empty conversation owned by owner (which may be Anonymous).
func NewConversation(id string, owner OwnerID, now time.Time) *Conversation {
	conv := &Conversation{
		ID:         id,
		Owner:      owner,
		Title:      DefaultTitle,
		TitleState: TitleDefault,
		Turns:      []Turn{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	conv.RefreshStats()
	return conv
}

// IsGuest reports whether the conversation has no owner yet.
func (c *Conversation) IsGuest() bool {
	return c.Owner.IsAnonymous()
}

// AccessibleBy reports whether caller may read or write the conversation.
// Guest conversations are open to anyone holding the id.
func (c *Conversation) AccessibleBy(caller OwnerID) bool {
	return c.IsGuest() || c.Owner == caller
}

// AppendTurn adds a turn at the end of the transcript and refreshes stats.
// Timestamps never go backwards within a conversation.
func (c *Conversation) AppendTurn(speaker Speaker, text string, now time.Time) Turn {
	if n := len(c.Turns); n > 0 && now.Before(c.Turns[n-1].CreatedAt) {
		now = c.Turns[n-1].CreatedAt
	}
	turn := Turn{Speaker: speaker, Text: text, CreatedAt: now}
	c.Turns = append(c.Turns, turn)
	c.UpdatedAt = now
	c.RefreshStats()
	return turn
}

// RefreshStats recomputes Stats from Turns.
func (c *Conversation) RefreshStats() {
	stats := Stats{Count: len(c.Turns), StartedAt: c.CreatedAt}
	if stats.Count > 0 {
		first := c.Turns[0].CreatedAt
		last := c.Turns[stats.Count-1].CreatedAt
		stats.StartedAt = first
		stats.LastTurnAt = &last
		stats.Duration = last.Sub(first)
	}
	c.Stats = stats
}

// DeriveTitle sets a provisional title from the first caller message.
// Only the default title is ever replaced.
func (c *Conversation) DeriveTitle(text string, maxLen int) {
	if c.TitleState != TitleDefault && c.TitleState != "" {
		return
	}
	title := stringutils.GenerateTitle(text, maxLen)
	if title == "" {
		return
	}
	c.Title = title
	c.TitleState = TitleProvisional
}

// FinalizeTitle locks a provisional title once an exchange has completed.
func (c *Conversation) FinalizeTitle() {
	if c.TitleState == TitleProvisional {
		c.TitleState = TitleFinal
	}
}

// AssignOwner moves a guest conversation to owner. It reports false when the
// conversation already belongs to someone, in which case nothing changes.
func (c *Conversation) AssignOwner(owner OwnerID, now time.Time) bool {
	if !c.IsGuest() || owner.IsAnonymous() {
		return false
	}
	c.Owner = owner
	c.UpdatedAt = now
	return true
}

// History returns a copy of the turns in append order.
func (c *Conversation) History() []Turn {
	history := make([]Turn, len(c.Turns))
	copy(history, c.Turns)
	return history
}

// Summary returns the list view of the conversation.
func (c *Conversation) Summary() Summary {
	return Summary{ID: c.ID, Title: c.Title, Stats: c.Stats}
}

// Clone returns a deep copy so stores never share turn slices with callers.
func (c *Conversation) Clone() *Conversation {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Turns = c.History()
	if c.Stats.LastTurnAt != nil {
		last := *c.Stats.LastTurnAt
		clone.Stats.LastTurnAt = &last
	}
	return &clone
}
