package responder

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	uuid "github.com/satori/go.uuid"

	"eke/internal/domain"
	"eke/internal/protocol/eke"
)

type slotKey struct {
	username domain.Username
	id       domain.NegotiationID
}

// slot is one negotiation and, once established, its session.
type slot struct {
	key     slotKey
	started time.Time

	// confirming is set once msg5 is being verified. Guarded by registry.mu.
	confirming bool

	mu      sync.Mutex
	r       *eke.Responder
	channel *eke.Channel
	dead    bool

	established atomic.Bool
	lastUsed    atomic.Int64
}

func (s *slot) touch(now time.Time) { s.lastUsed.Store(now.UnixNano()) }

// kill wipes the slot. It must be called with s.mu held.
func (s *slot) kill() {
	if s.dead {
		return
	}
	s.dead = true
	s.r.Discard()
	if s.channel != nil {
		s.channel.Close()
		s.channel = nil
	}
}

// registry indexes live slots. inflight maps a username to the negotiation
// that has not yet reached Established.
type registry struct {
	mu       sync.Mutex
	slots    map[slotKey]*slot
	inflight map[domain.Username]domain.NegotiationID
}

func newRegistry() *registry {
	return &registry{
		slots:    make(map[slotKey]*slot),
		inflight: make(map[domain.Username]domain.NegotiationID),
	}
}

func newNegotiationID() domain.NegotiationID {
	return domain.NegotiationID(uuid.NewV4().String())
}

// insert adds s as the in-flight negotiation for its username. If another
// negotiation is in flight, replace decides whether it is evicted or the
// insert fails. A negotiation already confirming msg5 is left to finish and
// neither evicted nor blocking. An evicted slot is returned for the caller to
// wipe outside the index lock.
func (reg *registry) insert(s *slot, replace func(old *slot) bool) (evicted *slot, err error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if oldID, ok := reg.inflight[s.key.username]; ok {
		old := reg.slots[slotKey{s.key.username, oldID}]
		if old != nil && !old.confirming {
			if !replace(old) {
				return nil, fmt.Errorf("responder: %w: %s", domain.ErrNegotiationInProgress, s.key.username)
			}
			delete(reg.slots, old.key)
			evicted = old
		}
	}
	reg.slots[s.key] = s
	reg.inflight[s.key.username] = s.key.id
	return evicted, nil
}

func (reg *registry) lookup(username domain.Username, id domain.NegotiationID) (*slot, error) {
	if _, err := uuid.FromString(id.String()); err != nil {
		return nil, fmt.Errorf("responder: %w: malformed id", domain.ErrUnknownNegotiation)
	}
	reg.mu.Lock()
	defer reg.mu.Unlock()

	s, ok := reg.slots[slotKey{username, id}]
	if !ok {
		return nil, fmt.Errorf("responder: %w: %s/%s", domain.ErrUnknownNegotiation, username, id)
	}
	return s, nil
}

// remove drops s from the index if it is still the indexed entry for its key.
func (reg *registry) remove(s *slot) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if reg.slots[s.key] != s {
		return false
	}
	delete(reg.slots, s.key)
	if reg.inflight[s.key.username] == s.key.id {
		delete(reg.inflight, s.key.username)
	}
	return true
}

// claim marks s as confirming so a concurrent round 1 cannot evict it. It
// fails if s has already been evicted. Callers hold s.mu.
func (reg *registry) claim(s *slot) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if reg.slots[s.key] != s {
		return false
	}
	s.confirming = true
	return true
}

// promote marks s established, freeing the username for a new negotiation.
func (reg *registry) promote(s *slot) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if reg.inflight[s.key.username] == s.key.id {
		delete(reg.inflight, s.key.username)
	}
}

// expired removes and returns every slot past its deadline.
func (reg *registry) expired(now time.Time, handshakeTimeout, sessionTTL time.Duration) []*slot {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	var out []*slot
	for key, s := range reg.slots {
		var stale bool
		if s.established.Load() {
			stale = now.Sub(time.Unix(0, s.lastUsed.Load())) > sessionTTL
		} else {
			stale = now.Sub(s.started) > handshakeTimeout
		}
		if !stale {
			continue
		}
		delete(reg.slots, key)
		if reg.inflight[key.username] == key.id {
			delete(reg.inflight, key.username)
		}
		out = append(out, s)
	}
	return out
}

func (reg *registry) counts() (inFlight, established int) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	for _, s := range reg.slots {
		if s.established.Load() {
			established++
		} else {
			inFlight++
		}
	}
	return inFlight, established
}
