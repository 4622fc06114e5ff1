package eke

import (
	"bytes"
	"errors"
	"testing"

	"eke/internal/crypto"
	"eke/internal/domain"
)

func testKey(t *testing.T) domain.SymmetricKey {
	t.Helper()
	k, err := crypto.DerivePasswordKey(domain.KDFSHA256, "alice", "123456")
	if err != nil {
		t.Fatalf("DerivePasswordKey: %v", err)
	}
	return k
}

// throughMsg4 runs the honest handshake and returns msg4 undelivered.
func throughMsg4(t *testing.T) (*Initiator, *Responder, []byte) {
	t.Helper()
	k := testKey(t)
	in := NewInitiator(k)
	r := NewResponder(domain.Identity{Username: "alice", Secret: k})

	msg1, err := in.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	msg2, err := r.OnMsg1(msg1)
	if err != nil {
		t.Fatalf("OnMsg1: %v", err)
	}
	msg3, err := in.OnMsg2(msg2)
	if err != nil {
		t.Fatalf("OnMsg2: %v", err)
	}
	msg4, err := r.OnMsg3(msg3)
	if err != nil {
		t.Fatalf("OnMsg3: %v", err)
	}
	return in, r, msg4
}

func TestInitiator_WrongEchoedChallengeIsMismatch(t *testing.T) {
	in, r, _ := throughMsg4(t)

	// A party holding key_R but echoing the wrong challenge.
	forged := append(bytes.Repeat([]byte{0xAA}, crypto.ChallengeBytes), r.challengeLocal...)
	msg4, err := crypto.EncryptSymmetric(r.keyR, forged, adMsg4)
	if err != nil {
		t.Fatalf("EncryptSymmetric: %v", err)
	}
	if _, err := in.OnMsg4(msg4); !errors.Is(err, domain.ErrAuthenticationMismatch) {
		t.Fatalf("want ErrAuthenticationMismatch, got %v", err)
	}
	if in.State() != StateFailed {
		t.Fatalf("state %s, want failed", in.State())
	}
	if in.seed != nil || in.challengeLocal != nil || in.keyR != (domain.SymmetricKey{}) {
		t.Fatal("ephemeral state survived the failure")
	}
}

func TestInitiator_ShortChallengeBlockIsMismatch(t *testing.T) {
	in, r, _ := throughMsg4(t)
	msg4, err := crypto.EncryptSymmetric(r.keyR, in.challengeLocal, adMsg4)
	if err != nil {
		t.Fatalf("EncryptSymmetric: %v", err)
	}
	if _, err := in.OnMsg4(msg4); !errors.Is(err, domain.ErrAuthenticationMismatch) {
		t.Fatalf("want ErrAuthenticationMismatch, got %v", err)
	}
}

func TestResponder_WrongReturnedChallengeIsMismatch(t *testing.T) {
	in, r, msg4 := throughMsg4(t)
	if _, err := in.OnMsg4(msg4); err != nil {
		t.Fatalf("OnMsg4: %v", err)
	}

	msg5, err := crypto.EncryptSymmetric(r.keyR, bytes.Repeat([]byte{0x55}, crypto.ChallengeBytes), adMsg5)
	if err != nil {
		t.Fatalf("EncryptSymmetric: %v", err)
	}
	if _, err := r.OnMsg5(msg5); !errors.Is(err, domain.ErrAuthenticationMismatch) {
		t.Fatalf("want ErrAuthenticationMismatch, got %v", err)
	}
	if r.State() != StateFailed {
		t.Fatalf("state %s, want failed", r.State())
	}
	if _, ok := r.SessionKey(); ok {
		t.Fatal("session key issued after mismatch")
	}
	if r.seed != nil || r.challengeLocal != nil {
		t.Fatal("ephemeral state survived the failure")
	}
}

func TestResponder_FreshSeedPerNegotiation(t *testing.T) {
	k := testKey(t)
	seeds := make([][]byte, 2)
	for i := range seeds {
		in := NewInitiator(k)
		r := NewResponder(domain.Identity{Username: "alice", Secret: k})
		msg1, err := in.Start()
		if err != nil {
			t.Fatalf("Start: %v", err)
		}
		if _, err := r.OnMsg1(msg1); err != nil {
			t.Fatalf("OnMsg1: %v", err)
		}
		seeds[i] = append([]byte(nil), r.seed...)
	}
	if bytes.Equal(seeds[0], seeds[1]) {
		t.Fatal("R repeated across negotiations")
	}
}

func TestResponder_MalformedPublicKey(t *testing.T) {
	k := testKey(t)
	r := NewResponder(domain.Identity{Username: "alice", Secret: k})
	msg1, err := crypto.EncryptSymmetric(k, []byte("-----BEGIN NOTHING-----"), adMsg1)
	if err != nil {
		t.Fatalf("EncryptSymmetric: %v", err)
	}
	if _, err := r.OnMsg1(msg1); !errors.Is(err, domain.ErrMalformedKey) {
		t.Fatalf("want ErrMalformedKey, got %v", err)
	}
	if r.State() != StateFailed {
		t.Fatalf("state %s, want failed", r.State())
	}
}
