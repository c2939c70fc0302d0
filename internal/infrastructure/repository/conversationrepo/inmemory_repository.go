package conversationrepo

import (
	"context"
	"sort"
	"sync"

	domain "chefgpt-server/internal/domain/conversation"
)

// InMemoryStore is a thread-safe store for local runs and tests.
type InMemoryStore struct {
	mu    sync.RWMutex
	items map[string]*domain.Conversation
}

var _ domain.Store = (*InMemoryStore)(nil)

// NewInMemoryStore returns an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{items: make(map[string]*domain.Conversation)}
}

func (s *InMemoryStore) FindByID(ctx context.Context, id string) (*domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return conv.Clone(), nil
}

func (s *InMemoryStore) FindByOwner(ctx context.Context, owner domain.OwnerID, limit int) ([]*domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Conversation
	for _, conv := range s.items {
		if conv.Owner == owner && !owner.IsAnonymous() {
			result = append(result, conv.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i].Stats.StartedAt, result[j].Stats.StartedAt
		if !a.Equal(b) {
			return a.After(b)
		}
		return result[i].ID < result[j].ID
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *InMemoryStore) Insert(ctx context.Context, conv *domain.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[conv.ID]; exists {
		return domain.ErrDuplicateID
	}
	s.items[conv.ID] = conv.Clone()
	return nil
}

func (s *InMemoryStore) Replace(ctx context.Context, conv *domain.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.items[conv.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if current.Version != conv.Version {
		return domain.ErrConflict
	}
	conv.Version++
	s.items[conv.ID] = conv.Clone()
	return nil
}

func (s *InMemoryStore) DeleteByID(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *InMemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}
