package store

import (
	"fmt"
	"sync"
	"time"

	"eke/internal/domain"
)

// IdentityMemoryStore keeps identities in memory only.
type IdentityMemoryStore struct {
	mu  sync.RWMutex
	ids map[domain.Username]domain.Identity
}

func NewIdentityMemoryStore() *IdentityMemoryStore {
	return &IdentityMemoryStore{ids: make(map[domain.Username]domain.Identity)}
}

func (s *IdentityMemoryStore) CreateIdentity(id domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[id.Username]; ok {
		return fmt.Errorf("store: %w: %s", domain.ErrDuplicateUser, id.Username)
	}
	if id.CreatedUTC == 0 {
		id.CreatedUTC = time.Now().UTC().Unix()
	}
	s.ids[id.Username] = id
	return nil
}

func (s *IdentityMemoryStore) LoadIdentity(username domain.Username) (domain.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.ids[username]
	if !ok {
		return domain.Identity{}, fmt.Errorf("store: %w: %s", domain.ErrUnknownUser, username)
	}
	return id, nil
}

// Usernames lists registered usernames in sorted order.
func (s *IdentityMemoryStore) Usernames() []domain.Username {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedUsernames(s.ids)
}

var _ domain.IdentityStore = (*IdentityMemoryStore)(nil)
