package domain

import (
	"fmt"
	"strings"
	"unicode"
)

// MaxAddressLength bounds caller identities.
const MaxAddressLength = 128

// Address identifies a caller: a funder or the owner.
type Address string

// Normalize trims the address and lower-cases 0x-prefixed hex addresses so
// that checksummed and plain forms compare equal.
func (a Address) Normalize() Address {
	s := strings.TrimSpace(string(a))
	if len(s) > 2 && (s[:2] == "0x" || s[:2] == "0X") {
		s = "0x" + strings.ToLower(s[2:])
	}
	return Address(s)
}

// String implements fmt.Stringer.
func (a Address) String() string {
	return string(a)
}

// ParseAddress validates and normalizes a caller identity.
func ParseAddress(s string) (Address, error) {
	addr := Address(s).Normalize()

	if addr == "" {
		return "", fmt.Errorf("%w: address cannot be empty", ErrInvalidAddress)
	}

	if len(addr) > MaxAddressLength {
		return "", fmt.Errorf("%w: address exceeds %d characters", ErrInvalidAddress, MaxAddressLength)
	}

	for _, r := range string(addr) {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return "", fmt.Errorf("%w: address contains whitespace", ErrInvalidAddress)
		}
	}

	return addr, nil
}
