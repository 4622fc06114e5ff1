package types

// Round names a request/response pair of the six-message handshake.
type Round uint8

const (
	// Round12 carries msg1 (initiator) and msg2 (responder).
	Round12 Round = iota + 1
	// Round34 carries msg3 and msg4.
	Round34
	// Round56 carries msg5 and msg6.
	Round56
)

// String returns the route-style name of the round.
func (r Round) String() string {
	switch r {
	case Round12:
		return "negotiate12"
	case Round34:
		return "negotiate34"
	case Round56:
		return "negotiate56"
	default:
		return "unknown"
	}
}
