package conversation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"chefgpt-server/internal/utils/platformerrors"
	"chefgpt-server/pkg/telemetry"
)

// Service owns the conversation lifecycle.
type Service interface {
	CreateOrResume(ctx context.Context, owner OwnerID, existingID string) (*Conversation, error)
	AppendAndRespond(ctx context.Context, owner OwnerID, conversationID, text string) (*Exchange, error)
	ListByOwner(ctx context.Context, owner OwnerID) ([]Summary, error)
	FetchByID(ctx context.Context, owner OwnerID, conversationID string) (*Conversation, error)
	DeleteByID(ctx context.Context, owner OwnerID, conversationID string) error
	Reconcile(ctx context.Context, owner OwnerID, guestConversationID string) (string, error)
}

// Exchange is the outcome of AppendAndRespond. When the gateway fails the
// exchange is still returned alongside the error so callers learn which
// conversation now holds the unanswered caller turn.
type Exchange struct {
	ConversationID string
	Reply          string
	Conversation   *Conversation
}

// Config holds the fixed parameters of the session manager.
type Config struct {
	SystemInstruction string
	ListLimit         int
	TitleMaxLength    int
	GatewayTimeout    time.Duration
	LockTTL           time.Duration
	MaxWriteAttempts  int
}

func (c Config) withDefaults() Config {
	if c.ListLimit <= 0 {
		c.ListLimit = 50
	}
	if c.TitleMaxLength <= 0 {
		c.TitleMaxLength = 50
	}
	if c.GatewayTimeout <= 0 {
		c.GatewayTimeout = 60 * time.Second
	}
	if c.LockTTL <= 0 {
		c.LockTTL = 15 * time.Second
	}
	if c.MaxWriteAttempts <= 0 {
		c.MaxWriteAttempts = 3
	}
	return c
}

// Option customises a service at construction.
type Option func(*service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// WithIDGenerator replaces the uuid based id generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *service) { s.newID = newID }
}

// WithSanitizer controls how owner ids appear in logs.
func WithSanitizer(sanitizer *telemetry.Sanitizer) Option {
	return func(s *service) { s.sanitizer = sanitizer }
}

type service struct {
	store     Store
	gateway   Gateway
	locker    Locker
	cfg       Config
	log       zerolog.Logger
	sanitizer *telemetry.Sanitizer
	now       func() time.Time
	newID     func() string
}

// errNoChange lets a mutation finish successfully without writing.
var errNoChange = errors.New("no change")

// NewService wires the session manager with its collaborators.
func NewService(store Store, gateway Gateway, locker Locker, cfg Config, log zerolog.Logger, opts ...Option) Service {
	s := &service{
		store:     store,
		gateway:   gateway,
		locker:    locker,
		cfg:       cfg.withDefaults(),
		log:       log.With().Str("component", "conversation-service").Logger(),
		sanitizer: telemetry.NewSanitizer(telemetry.PIILevelHashed, "conversation"),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) CreateOrResume(ctx context.Context, owner OwnerID, existingID string) (*Conversation, error) {
	if existingID = strings.TrimSpace(existingID); existingID != "" {
		conv, err := s.store.FindByID(ctx, existingID)
		if err != nil {
			return nil, s.storeError(ctx, err, "resume conversation")
		}
		// Only guest conversations resume for anyone holding the id.
		if !conv.AccessibleBy(owner) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden, "access denied", nil, "5e8b2d71-3c49-4a06-9f1e-8d4c7a2b6e53")
		}
		return conv, nil
	}

	conv := NewConversation(s.newID(), owner, s.now())
	if err := s.store.Insert(ctx, conv); err != nil {
		return nil, s.storeError(ctx, err, "create conversation")
	}

	s.log.Info().
		Str("conversation_id", conv.ID).
		Str("owner", s.sanitizer.SanitizeUserID(string(owner))).
		Msg("conversation created")
	return conv, nil
}

func (s *service) AppendAndRespond(ctx context.Context, owner OwnerID, conversationID, text string) (*Exchange, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "message is required", nil, "4b1f0c2e-6f55-4d8e-9a0c-1d7e3b5a2f10")
	}

	conversationID = strings.TrimSpace(conversationID)
	if conversationID == "" {
		conversationID = s.newID()
	}

	// The caller turn is durable before the model is called.
	conv, err := s.mutate(ctx, conversationID,
		func() *Conversation { return NewConversation(conversationID, owner, s.now()) },
		func(conv *Conversation) error {
			if !conv.AccessibleBy(owner) {
				return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden, "access denied", nil, "9e2d4c61-0b3a-4f7e-8c15-2a6d9f0e4b73")
			}
			conv.DeriveTitle(text, s.cfg.TitleMaxLength)
			conv.AppendTurn(SpeakerCaller, text, s.now())
			return nil
		})
	if err != nil {
		return nil, err
	}

	exchange := &Exchange{ConversationID: conv.ID, Conversation: conv}
	log := s.log.With().
		Str("conversation_id", conv.ID).
		Str("owner", s.sanitizer.SanitizeUserID(string(owner))).
		Logger()
	log.Debug().
		Int("turns", conv.Stats.Count).
		Str("text", s.sanitizer.SanitizeText(text, 80)).
		Msg("caller turn stored")

	genCtx, cancel := context.WithTimeout(ctx, s.cfg.GatewayTimeout)
	reply, err := s.gateway.Generate(genCtx, conv.History(), s.cfg.SystemInstruction)
	cancel()
	if err != nil {
		log.Warn().Err(err).Msg("assistant reply failed, caller turn kept")
		return exchange, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUpstreamUnavailable,
			"assistant is unavailable, try again", err, "c7a3e9d2-5b14-4f68-a0e1-3d9b2c7f6e45",
			map[string]any{"conversation_id": conv.ID, "turn_count": conv.Stats.Count})
	}

	// The exchange was authorised when the caller turn was written, so the
	// reply lands even if the conversation was reconciled in the meantime.
	conv, err = s.mutate(ctx, conv.ID, nil, func(conv *Conversation) error {
		conv.AppendTurn(SpeakerAssistant, reply, s.now())
		conv.FinalizeTitle()
		return nil
	})
	if err != nil {
		return exchange, err
	}

	exchange.Reply = reply
	exchange.Conversation = conv
	log.Info().
		Int("turns", conv.Stats.Count).
		Str("reply", s.sanitizer.SanitizeText(reply, 80)).
		Msg("exchange completed")
	return exchange, nil
}

func (s *service) ListByOwner(ctx context.Context, owner OwnerID) ([]Summary, error) {
	if owner.IsAnonymous() {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnauthorized, "authentication required", nil, "1f6b8d3a-7c29-4e50-b4d1-8a2e6c9f0d37")
	}

	convs, err := s.store.FindByOwner(ctx, owner, s.cfg.ListLimit)
	if err != nil {
		return nil, s.storeError(ctx, err, "list conversations")
	}

	summaries := make([]Summary, 0, len(convs))
	for _, conv := range convs {
		summaries = append(summaries, conv.Summary())
	}
	return summaries, nil
}

func (s *service) FetchByID(ctx context.Context, owner OwnerID, conversationID string) (*Conversation, error) {
	conv, err := s.store.FindByID(ctx, strings.TrimSpace(conversationID))
	if err != nil {
		return nil, s.storeError(ctx, err, "fetch conversation")
	}
	if !conv.AccessibleBy(owner) {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden, "access denied", nil, "5d0e7a94-3c61-4b2f-9e88-6f1a4d2c7b09")
	}
	return conv, nil
}

func (s *service) DeleteByID(ctx context.Context, owner OwnerID, conversationID string) error {
	conv, err := s.FetchByID(ctx, owner, conversationID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteByID(ctx, conv.ID); err != nil {
		return s.storeError(ctx, err, "delete conversation")
	}

	s.log.Info().
		Str("conversation_id", conv.ID).
		Str("owner", s.sanitizer.SanitizeUserID(string(owner))).
		Msg("conversation deleted")
	return nil
}

func (s *service) Reconcile(ctx context.Context, owner OwnerID, guestConversationID string) (string, error) {
	if owner.IsAnonymous() {
		return "", platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnauthorized, "authentication required", nil, "8a4c2f17-9d3e-4b60-a5f2-0c7e1b9d6a38")
	}
	guestConversationID = strings.TrimSpace(guestConversationID)
	if guestConversationID == "" {
		return "", platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "temporaryChatId is required", nil, "e3b7d1a5-2f84-4c9a-8d06-7b5e3a1c9f24")
	}

	conv, err := s.mutate(ctx, guestConversationID, nil, func(conv *Conversation) error {
		if conv.Owner == owner {
			return errNoChange
		}
		if !conv.AssignOwner(owner, s.now()) {
			return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, "guest conversation not found", nil, "0b9f6e28-4d1a-4c73-b8e5-9a2d7f3c1e60")
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.log.Info().
		Str("conversation_id", conv.ID).
		Str("owner", s.sanitizer.SanitizeUserID(string(owner))).
		Msg("guest conversation reconciled")
	return conv.ID, nil
}

// mutate runs one read-modify-write against a conversation under its lock.
// A version conflict re-reads and re-applies. When create is non-nil a
// missing conversation is created instead of reported as not found.
func (s *service) mutate(ctx context.Context, id string, create func() *Conversation, apply func(*Conversation) error) (*Conversation, error) {
	var result *Conversation
	err := s.locker.WithLock(ctx, "conversation:"+id, s.cfg.LockTTL, func(ctx context.Context) error {
		for attempt := 1; ; attempt++ {
			conv, err := s.store.FindByID(ctx, id)
			inserting := false
			switch {
			case errors.Is(err, ErrNotFound) && create != nil:
				conv = create()
				inserting = true
			case err != nil:
				return err
			}

			if err := apply(conv); err != nil {
				if errors.Is(err, errNoChange) {
					result = conv
					return nil
				}
				return err
			}

			if inserting {
				err = s.store.Insert(ctx, conv)
			} else {
				err = s.store.Replace(ctx, conv)
			}
			if (errors.Is(err, ErrConflict) || errors.Is(err, ErrDuplicateID)) && attempt < s.cfg.MaxWriteAttempts {
				s.log.Warn().Str("conversation_id", id).Int("attempt", attempt).Msg("concurrent write detected, retrying")
				continue
			}
			if err != nil {
				return err
			}
			result = conv
			return nil
		}
	})
	if err != nil {
		return nil, s.storeError(ctx, err, "update conversation")
	}
	return result, nil
}

// storeError classifies errors coming back from the store or the locker.
func (s *service) storeError(ctx context.Context, err error, message string) error {
	if platformErr := platformerrors.GetPlatformError(err); platformErr != nil {
		return platformErr
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, "conversation not found", err, "6c2a9e41-8b7d-4f35-a0c3-5e1d8b4f2a97")
	case errors.Is(err, ErrConflict), errors.Is(err, ErrDuplicateID), errors.Is(err, ErrLockBusy):
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeConflict, "conversation is busy, try again", err, "d1f5b3c8-6e20-4a97-b4d9-2c8f0e6a3b15")
	case errors.Is(err, context.Canceled):
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal, "request cancelled", err, "a9e3c7f1-2d58-4b06-8e4a-7f1c5d9b3e62")
	default:
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeStoreUnavailable, message+" failed", err, "f4d8a2b6-1c93-4e7f-9b05-3a6e8c2d1f74")
	}
}
