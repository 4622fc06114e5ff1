package store

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"eke/internal/domain"
)

const identitiesFile = "identities.json"

// IdentityFileStore persists identities to <dir>/identities.json. The file
// is read once when the store is opened and rewritten atomically on every
// change. With a non-empty passphrase the file is sealed.
type IdentityFileStore struct {
	path       string
	passphrase string
	scrypt     scryptParams

	mu  sync.RWMutex
	ids map[domain.Username]domain.Identity
}

// OpenIdentityFileStore loads (or prepares) the identity file under dir. A
// wrong passphrase for an existing sealed file fails here with
// ErrWrongPassphrase rather than on first use.
func OpenIdentityFileStore(dir, passphrase string) (*IdentityFileStore, error) {
	s := &IdentityFileStore{
		path:       filepath.Join(dir, identitiesFile),
		passphrase: passphrase,
		scrypt:     defaultScrypt(),
		ids:        make(map[domain.Username]domain.Identity),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path is the location of the backing file.
func (s *IdentityFileStore) Path() string { return s.path }

// CreateIdentity adds id and writes the file. The username must be new.
func (s *IdentityFileStore) CreateIdentity(id domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[id.Username]; ok {
		return fmt.Errorf("store: %w: %s", domain.ErrDuplicateUser, id.Username)
	}
	if id.CreatedUTC == 0 {
		id.CreatedUTC = time.Now().UTC().Unix()
	}
	s.ids[id.Username] = id
	if err := s.flush(); err != nil {
		delete(s.ids, id.Username)
		return err
	}
	return nil
}

// LoadIdentity returns the identity registered under username.
func (s *IdentityFileStore) LoadIdentity(username domain.Username) (domain.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.ids[username]
	if !ok {
		return domain.Identity{}, fmt.Errorf("store: %w: %s", domain.ErrUnknownUser, username)
	}
	return id, nil
}

// Usernames lists registered usernames in sorted order.
func (s *IdentityFileStore) Usernames() []domain.Username {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedUsernames(s.ids)
}

// identityFile is the JSON document written to disk.
type identityFile struct {
	Identities []domain.Identity `json:"identities"`
}

func (s *IdentityFileStore) load() error {
	b, err := readFile(s.path)
	if err != nil {
		return err
	}
	if b == nil {
		return nil
	}
	if s.passphrase != "" {
		if b, err = open(s.passphrase, b); err != nil {
			return err
		}
	}
	var doc identityFile
	if err := json.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("store: parse %s: %w", s.path, err)
	}
	for _, id := range doc.Identities {
		s.ids[id.Username] = id
	}
	return nil
}

// flush must be called with mu held for writing.
func (s *IdentityFileStore) flush() error {
	doc := identityFile{Identities: make([]domain.Identity, 0, len(s.ids))}
	for _, u := range sortedUsernames(s.ids) {
		doc.Identities = append(doc.Identities, s.ids[u])
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	if s.passphrase != "" {
		if b, err = seal(s.passphrase, b, s.scrypt); err != nil {
			return err
		}
	}
	return writeFile(s.path, b, 0o600)
}

func sortedUsernames(m map[domain.Username]domain.Identity) []domain.Username {
	out := make([]domain.Username, 0, len(m))
	for u := range m {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Compile-time assertion that IdentityFileStore implements domain.IdentityStore.
var _ domain.IdentityStore = (*IdentityFileStore)(nil)
