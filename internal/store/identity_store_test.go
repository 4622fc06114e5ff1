package store_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-test/deep"

	"eke/internal/domain"
	"eke/internal/store"
)

func sampleIdentity(name string, fill byte) domain.Identity {
	var secret domain.SymmetricKey
	for i := range secret {
		secret[i] = fill
	}
	return domain.Identity{
		Username:   domain.Username(name),
		Secret:     secret,
		KDF:        domain.KDFArgon2id,
		CreatedUTC: 1700000000,
	}
}

func TestIdentityFileStore_CreateLoadReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := store.OpenIdentityFileStore(dir, "")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	alice := sampleIdentity("alice", 1)
	bob := sampleIdentity("bob", 2)
	for _, id := range []domain.Identity{bob, alice} {
		if err := s.CreateIdentity(id); err != nil {
			t.Fatalf("create %s: %v", id.Username, err)
		}
	}

	reopened, err := store.OpenIdentityFileStore(dir, "")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := reopened.LoadIdentity("alice")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := deep.Equal(got, alice); diff != nil {
		t.Fatal(diff)
	}
	if diff := deep.Equal(reopened.Usernames(), []domain.Username{"alice", "bob"}); diff != nil {
		t.Fatal(diff)
	}

	info, err := os.Stat(reopened.Path())
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("file mode %v, want 0600", info.Mode().Perm())
	}
}

func TestIdentityFileStore_DuplicateAndUnknown(t *testing.T) {
	s, err := store.OpenIdentityFileStore(t.TempDir(), "")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.CreateIdentity(sampleIdentity("alice", 1)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.CreateIdentity(sampleIdentity("alice", 9)); !errors.Is(err, domain.ErrDuplicateUser) {
		t.Fatalf("want ErrDuplicateUser, got %v", err)
	}
	got, err := s.LoadIdentity("alice")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Secret[0] != 1 {
		t.Fatal("duplicate registration overwrote the secret")
	}
	if _, err := s.LoadIdentity("mallory"); !errors.Is(err, domain.ErrUnknownUser) {
		t.Fatalf("want ErrUnknownUser, got %v", err)
	}
}

func TestIdentityFileStore_SealedAtRest(t *testing.T) {
	dir := t.TempDir()
	s, err := store.OpenIdentityFileStore(dir, "correct horse")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	alice := sampleIdentity("alice", 7)
	if err := s.CreateIdentity(alice); err != nil {
		t.Fatalf("create: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "identities.json"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if bytes.Contains(raw, []byte("alice")) {
		t.Fatal("sealed file leaks usernames")
	}

	if _, err := store.OpenIdentityFileStore(dir, "wrong"); !errors.Is(err, store.ErrWrongPassphrase) {
		t.Fatalf("want ErrWrongPassphrase, got %v", err)
	}
	reopened, err := store.OpenIdentityFileStore(dir, "correct horse")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := reopened.LoadIdentity("alice")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Secret != alice.Secret {
		t.Fatal("secret changed across seal/open")
	}
}

func TestIdentityFileStore_TamperedSealedFile(t *testing.T) {
	dir := t.TempDir()
	s, err := store.OpenIdentityFileStore(dir, "pw")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.CreateIdentity(sampleIdentity("alice", 3)); err != nil {
		t.Fatalf("create: %v", err)
	}

	path := filepath.Join(dir, "identities.json")
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	// Flip a character inside the base64 ciphertext.
	i := bytes.Index(raw, []byte(`"cipher":"`)) + len(`"cipher":"`) + 4
	if raw[i] == 'A' {
		raw[i] = 'B'
	} else {
		raw[i] = 'A'
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := store.OpenIdentityFileStore(dir, "pw"); !errors.Is(err, store.ErrWrongPassphrase) {
		t.Fatalf("want ErrWrongPassphrase, got %v", err)
	}
}

func TestIdentityMemoryStore(t *testing.T) {
	var ids domain.IdentityStore = store.NewIdentityMemoryStore()
	if err := ids.CreateIdentity(sampleIdentity("alice", 1)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := ids.CreateIdentity(sampleIdentity("alice", 2)); !errors.Is(err, domain.ErrDuplicateUser) {
		t.Fatalf("want ErrDuplicateUser, got %v", err)
	}
	if _, err := ids.LoadIdentity("bob"); !errors.Is(err, domain.ErrUnknownUser) {
		t.Fatalf("want ErrUnknownUser, got %v", err)
	}
	got, err := ids.LoadIdentity("alice")
	if err != nil || got.Secret[0] != 1 {
		t.Fatalf("load: %+v, %v", got, err)
	}
}

func TestIdentityMemoryStore_StampsCreation(t *testing.T) {
	s := store.NewIdentityMemoryStore()
	id := sampleIdentity("carol", 1)
	id.CreatedUTC = 0
	if err := s.CreateIdentity(id); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, _ := s.LoadIdentity("carol")
	if got.CreatedUTC == 0 {
		t.Fatal("CreatedUTC not stamped")
	}
}
