package entities

import (
	"time"

	"gorm.io/datatypes"

	domain "chefgpt-server/internal/domain/conversation"
)

// Conversation is the SQL row for one chat session. Turns are embedded as a
// JSON array so a conversation is always read and written as one document.
type Conversation struct {
	ID         string                          `gorm:"type:varchar(64);primaryKey"`
	OwnerID    *string                         `gorm:"type:varchar(128);index:idx_conversations_owner_started,priority:1"`
	Title      string                          `gorm:"type:varchar(256);not null"`
	TitleState string                          `gorm:"type:varchar(16);not null"`
	Turns      datatypes.JSONSlice[StoredTurn] `gorm:"not null"`
	TurnCount  int                             `gorm:"not null"`
	StartedAt  time.Time                       `gorm:"not null;index:idx_conversations_owner_started,priority:2,sort:desc"`
	LastTurnAt *time.Time                      `gorm:"default:null"`
	DurationMS int64                           `gorm:"not null"`
	Version    int64                           `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Conversation) TableName() string {
	return "conversations"
}

// StoredTurn is the JSON shape of a turn inside the turns column.
type StoredTurn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewConversation maps a domain conversation to its row.
func NewConversation(conv *domain.Conversation) *Conversation {
	turns := make(datatypes.JSONSlice[StoredTurn], 0, len(conv.Turns))
	for _, turn := range conv.Turns {
		turns = append(turns, StoredTurn{Role: string(turn.Speaker), Content: turn.Text, Timestamp: turn.CreatedAt.UTC()})
	}

	var owner *string
	if !conv.Owner.IsAnonymous() {
		id := string(conv.Owner)
		owner = &id
	}

	var lastTurnAt *time.Time
	if conv.Stats.LastTurnAt != nil {
		last := conv.Stats.LastTurnAt.UTC()
		lastTurnAt = &last
	}

	return &Conversation{
		ID:         conv.ID,
		OwnerID:    owner,
		Title:      conv.Title,
		TitleState: string(conv.TitleState),
		Turns:      turns,
		TurnCount:  conv.Stats.Count,
		StartedAt:  conv.Stats.StartedAt.UTC(),
		LastTurnAt: lastTurnAt,
		DurationMS: conv.Stats.Duration.Milliseconds(),
		Version:    conv.Version,
		CreatedAt:  conv.CreatedAt.UTC(),
		UpdatedAt:  conv.UpdatedAt.UTC(),
	}
}

// EtoD converts the row back to a domain conversation. Stats are recomputed
// from the turns rather than trusted from the denormalised columns.
func (c *Conversation) EtoD() *domain.Conversation {
	conv := &domain.Conversation{
		ID:         c.ID,
		Title:      c.Title,
		TitleState: domain.TitleState(c.TitleState),
		Turns:      make([]domain.Turn, 0, len(c.Turns)),
		Version:    c.Version,
		CreatedAt:  c.CreatedAt.UTC(),
		UpdatedAt:  c.UpdatedAt.UTC(),
	}
	if c.OwnerID != nil {
		conv.Owner = domain.OwnerID(*c.OwnerID)
	}
	for _, turn := range c.Turns {
		conv.Turns = append(conv.Turns, domain.Turn{
			Speaker:   domain.Speaker(turn.Role),
			Text:      turn.Content,
			CreatedAt: turn.Timestamp.UTC(),
		})
	}
	conv.RefreshStats()
	return conv
}

// UpdateColumns lists the mutable columns written by a versioned replace.
func (c *Conversation) UpdateColumns() map[string]any {
	return map[string]any{
		"owner_id":     c.OwnerID,
		"title":        c.Title,
		"title_state":  c.TitleState,
		"turns":        c.Turns,
		"turn_count":   c.TurnCount,
		"started_at":   c.StartedAt,
		"last_turn_at": c.LastTurnAt,
		"duration_ms":  c.DurationMS,
		"version":      c.Version + 1,
		"updated_at":   c.UpdatedAt,
	}
}
