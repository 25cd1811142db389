// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-ethcrypto.
//
// go-ethcrypto is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package hexutil converts between byte slices and the hex strings used
// throughout go-ethcrypto.
//
// Keys, hashes and signatures are emitted with a canonical "0x" prefix.
// Every decoder accepts input with or without the prefix.
package hexutil

import (
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
)

// Prefix is the canonical hex prefix.
const Prefix = "0x"

var (
	// ErrInvalidHex is returned when a string is not valid hex
	// (odd length or characters outside [0-9a-fA-F]).
	ErrInvalidHex = errors.New("hexutil: invalid hex string")

	// ErrInvalidType is an alias kept for callers matching on the
	// "wrong input type" failure kind of hex utilities.
	ErrInvalidType = ErrInvalidHex

	hexStringPattern = regexp.MustCompile(`^0x[0-9A-Fa-f]*$`)
)

// IsHexPrefixed reports whether s starts with "0x".
func IsHexPrefixed(s string) bool {
	return len(s) >= 2 && s[0] == '0' && s[1] == 'x'
}

// StripHexPrefix removes a single leading "0x" if present.
func StripHexPrefix(s string) string {
	if IsHexPrefixed(s) {
		return s[2:]
	}
	return s
}

// AddLeading0x adds "0x" to s unless it is already present.
func AddLeading0x(s string) string {
	if IsHexPrefixed(s) {
		return s
	}
	return Prefix + s
}

// IsHexString reports whether value is a 0x-prefixed hex string. When
// length is positive the string must encode exactly length bytes.
func IsHexString(value string, length int) bool {
	if !hexStringPattern.MatchString(value) {
		return false
	}
	if length > 0 && len(value) != 2+2*length {
		return false
	}
	return true
}

// Decode decodes a hex string with an optional "0x" prefix.
func Decode(s string) ([]byte, error) {
	b, err := hex.DecodeString(StripHexPrefix(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHex, err)
	}
	return b, nil
}

// DecodeLen decodes s and checks that it holds exactly n bytes.
func DecodeLen(s string, n int) ([]byte, error) {
	b, err := Decode(s)
	if err != nil {
		return nil, err
	}
	if len(b) != n {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidHex, n, len(b))
	}
	return b, nil
}

// Encode returns the lowercase hex encoding of b without a prefix.
func Encode(b []byte) string {
	return hex.EncodeToString(b)
}

// EncodePrefixed returns the lowercase hex encoding of b with a "0x" prefix.
func EncodePrefixed(b []byte) string {
	return Prefix + hex.EncodeToString(b)
}
