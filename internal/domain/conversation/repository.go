package conversation

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by a Store when no conversation has the requested id.
	ErrNotFound = errors.New("conversation not found")
	// ErrDuplicateID is returned by Store.Insert when the id is already taken.
	ErrDuplicateID = errors.New("conversation id already exists")
	// ErrConflict is returned by Store.Replace when the stored version moved since the read.
	ErrConflict = errors.New("conversation was modified concurrently")
	// ErrLockBusy is returned by a Locker that gave up waiting for another holder.
	ErrLockBusy = errors.New("conversation lock is busy")
)

// Store persists conversation documents keyed by id.
type Store interface {
	FindByID(ctx context.Context, id string) (*Conversation, error)
	// FindByOwner returns at most limit conversations of owner, most recently started first.
	FindByOwner(ctx context.Context, owner OwnerID, limit int) ([]*Conversation, error)
	Insert(ctx context.Context, conv *Conversation) error
	// Replace overwrites the stored document if its version still equals conv.Version,
	// then increments conv.Version.
	Replace(ctx context.Context, conv *Conversation) error
	DeleteByID(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// Gateway turns a transcript into the next assistant reply.
type Gateway interface {
	Generate(ctx context.Context, turns []Turn, systemInstruction string) (string, error)
}

// Locker serialises writes to a single conversation across service instances.
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) error
}
