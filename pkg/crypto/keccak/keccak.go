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

// Package keccak provides the legacy Keccak-256 hash used by Ethereum
// (the pre-standard padding, not FIPS 202 SHA3-256).
package keccak

import (
	"golang.org/x/crypto/sha3"

	"github.com/jeremyhahn/go-ethcrypto/pkg/crypto/hexutil"
)

// Size is the digest length in bytes.
const Size = 32

// Sum256 returns the Keccak-256 digest of the concatenation of data.
func Sum256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, b := range data {
		h.Write(b)
	}
	return h.Sum(nil)
}

// Hash returns the 0x-prefixed Keccak-256 digest of the UTF-8 bytes of s.
//
// The input is hashed as text: "0x1234" hashes six ASCII bytes, it is not
// decoded as hex first.
func Hash(s string) string {
	return hexutil.EncodePrefixed(Sum256([]byte(s)))
}
