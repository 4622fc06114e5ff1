package eke

import (
	"fmt"

	"eke/internal/domain"
)

// State is the position of one role in the handshake.
type State uint8

const (
	StateIdle State = iota
	StateKeySent
	StateKeyReceived
	StateRSeeded
	StateChallengeSent
	StateChallengeIssued
	StateChallengeConfirmed
	StateEstablished
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateKeySent:
		return "key-sent"
	case StateKeyReceived:
		return "key-received"
	case StateRSeeded:
		return "r-seeded"
	case StateChallengeSent:
		return "challenge-sent"
	case StateChallengeIssued:
		return "challenge-issued"
	case StateChallengeConfirmed:
		return "challenge-confirmed"
	case StateEstablished:
		return "established"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Role tells the two ends of a handshake (and of a Channel) apart.
type Role uint8

const (
	RoleInitiator Role = iota + 1
	RoleResponder
)

func (r Role) String() string {
	switch r {
	case RoleInitiator:
		return "initiator"
	case RoleResponder:
		return "responder"
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

// Peer returns the opposite role.
func (r Role) Peer() Role {
	if r == RoleInitiator {
		return RoleResponder
	}
	return RoleInitiator
}

// Associated data binding each ciphertext to its position in the handshake.
var (
	adMsg1 = []byte("eke/v1/msg1")
	adMsg2 = []byte("eke/v1/msg2")
	adMsg3 = []byte("eke/v1/msg3")
	adMsg4 = []byte("eke/v1/msg4")
	adMsg5 = []byte("eke/v1/msg5")
	adMsg6 = []byte("eke/v1/msg6")
)

func violation(op string, got State, want ...State) error {
	return fmt.Errorf("eke: %s: %w: in state %s, want %v", op, domain.ErrProtocolStateViolation, got, want)
}
