package responder

import (
	"context"
	"errors"
	"testing"

	"eke/internal/crypto"
	"eke/internal/domain"
	"eke/internal/protocol/eke"
	"eke/internal/store"
)

func always(*slot) bool { return true }
func never(*slot) bool  { return false }

func newSlot(username domain.Username) *slot {
	return &slot{key: slotKey{username: username, id: newNegotiationID()}}
}

func TestRegistry_ConfirmingSlotIsNotEvicted(t *testing.T) {
	reg := newRegistry()
	a := newSlot("alice")
	if _, err := reg.insert(a, always); err != nil {
		t.Fatalf("insert a: %v", err)
	}
	if !reg.claim(a) {
		t.Fatal("claim of an indexed slot failed")
	}

	b := newSlot("alice")
	evicted, err := reg.insert(b, always)
	if err != nil {
		t.Fatalf("insert b: %v", err)
	}
	if evicted != nil {
		t.Fatalf("confirming slot %s was evicted", evicted.key.id)
	}
	if _, err := reg.lookup("alice", a.key.id); err != nil {
		t.Fatalf("confirming slot dropped: %v", err)
	}
	if reg.inflight["alice"] != b.key.id {
		t.Fatalf("in-flight id %s, want %s", reg.inflight["alice"], b.key.id)
	}

	// b has not started confirming, so it is replaceable as usual.
	c := newSlot("alice")
	evicted, err = reg.insert(c, always)
	if err != nil {
		t.Fatalf("insert c: %v", err)
	}
	if evicted != b {
		t.Fatal("unconfirmed slot was not evicted")
	}
	if reg.claim(b) {
		t.Fatal("claim succeeded on an evicted slot")
	}
}

func TestRegistry_ConfirmingSlotDoesNotBlockReject(t *testing.T) {
	reg := newRegistry()
	a := newSlot("alice")
	if _, err := reg.insert(a, never); err != nil {
		t.Fatalf("insert a: %v", err)
	}
	if _, err := reg.insert(newSlot("alice"), never); !errors.Is(err, domain.ErrNegotiationInProgress) {
		t.Fatalf("want ErrNegotiationInProgress, got %v", err)
	}

	reg.claim(a)
	if _, err := reg.insert(newSlot("alice"), never); err != nil {
		t.Fatalf("insert while confirming: %v", err)
	}
}

// A round 1 that lands between the claim and the promotion of round 5 must
// not tear down the session that round 5 is about to establish.
func TestService_RoundOneDuringConfirmationKeepsSession(t *testing.T) {
	ctx := context.Background()
	svc := New(store.NewIdentityMemoryStore(), Options{})
	if err := svc.Register(ctx, "alice", "123456", domain.KDFSHA256); err != nil {
		t.Fatalf("register: %v", err)
	}
	keyP, err := crypto.DerivePasswordKey(domain.KDFSHA256, "alice", "123456")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}

	in := eke.NewInitiator(keyP)
	msg1, err := in.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	id, msg2, err := svc.Negotiate12(ctx, "alice", msg1)
	if err != nil {
		t.Fatalf("Negotiate12: %v", err)
	}
	msg3, err := in.OnMsg2(msg2)
	if err != nil {
		t.Fatalf("OnMsg2: %v", err)
	}
	msg4, err := svc.Negotiate34(ctx, "alice", id, msg3)
	if err != nil {
		t.Fatalf("Negotiate34: %v", err)
	}
	msg5, err := in.OnMsg4(msg4)
	if err != nil {
		t.Fatalf("OnMsg4: %v", err)
	}

	sl, err := svc.reg.lookup("alice", id)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	sl.mu.Lock()
	svc.reg.claim(sl)
	sl.mu.Unlock()

	other, err := eke.NewInitiator(keyP).Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, _, err := svc.Negotiate12(ctx, "alice", other); err != nil {
		t.Fatalf("second Negotiate12: %v", err)
	}

	msg6, err := svc.Negotiate56(ctx, "alice", id, msg5)
	if err != nil {
		t.Fatalf("Negotiate56: %v", err)
	}
	if err := in.OnMsg6(msg6); err != nil {
		t.Fatalf("OnMsg6: %v", err)
	}
	ch, err := in.Channel()
	if err != nil {
		t.Fatalf("Channel: %v", err)
	}
	ct, err := ch.Send([]byte("hello"))
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if _, err := svc.Exchange(ctx, "alice", id, ct); err != nil {
		t.Fatalf("Exchange after concurrent round 1: %v", err)
	}
	if inFlight, est := svc.Counts(); inFlight != 1 || est != 1 {
		t.Fatalf("counts %d/%d, want 1/1", inFlight, est)
	}
}
