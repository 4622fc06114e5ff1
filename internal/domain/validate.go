package domain

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// MaxUsernameBytes bounds the length of a username.
const MaxUsernameBytes = 64

// ValidateUsername accepts non-empty, valid UTF-8 names of at most
// MaxUsernameBytes bytes made of printable, non-space characters.
func ValidateUsername(u Username) error {
	s := u.String()
	switch {
	case s == "":
		return fmt.Errorf("%w: empty", ErrInvalidUsername)
	case len(s) > MaxUsernameBytes:
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidUsername, MaxUsernameBytes)
	case !utf8.ValidString(s):
		return fmt.Errorf("%w: not valid UTF-8", ErrInvalidUsername)
	}
	for _, r := range s {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return fmt.Errorf("%w: contains %q", ErrInvalidUsername, r)
		}
	}
	return nil
}
