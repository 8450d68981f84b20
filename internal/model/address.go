package model

import (
	"strings"

	apperrors "event-registry/pkg/app_errors"

	"github.com/ethereum/go-ethereum/common"
)

// Address identifies an account: 0x followed by 40 hex digits, stored lower-case.
type Address string

// ParseAddress trims and lower-cases s and checks its shape.
func ParseAddress(s string) (Address, error) {
	a := Address(strings.ToLower(strings.TrimSpace(s)))
	if !a.Valid() {
		return "", apperrors.ErrInvalidAddress
	}
	return a, nil
}

// MustParseAddress is ParseAddress for constants and tests.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Valid reports whether a is in canonical form. common.IsHexAddress alone
// also accepts the bare 40-digit form, so the prefix is required here.
func (a Address) Valid() bool {
	s := string(a)
	return strings.HasPrefix(s, "0x") && s == strings.ToLower(s) && common.IsHexAddress(s)
}

// Common converts a to the go-ethereum address type.
func (a Address) Common() common.Address {
	return common.HexToAddress(string(a))
}

func (a Address) String() string {
	return string(a)
}
