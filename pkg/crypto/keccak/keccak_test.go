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

package keccak

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHash_KnownVector(t *testing.T) {
	got := Hash("0x8ba1f109551bd432803012645ac136ddd64dba72")
	assert.Equal(t, "0xd59d38b46c2e385e712dced79b33e8e7e5e931138f17435596f1bfee9914f99e", got)
}

func TestHash_EmptyString(t *testing.T) {
	// Keccak-256 of the empty input
	assert.Equal(t, "0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470", Hash(""))
}

func TestHash_Format(t *testing.T) {
	pattern := regexp.MustCompile(`^0x[0-9a-f]{64}$`)
	for _, s := range []string{"a", "hello world", "\U0002070E", "0x"} {
		assert.Regexp(t, pattern, Hash(s))
	}
}

func TestHash_Deterministic(t *testing.T) {
	assert.Equal(t, Hash("same input"), Hash("same input"))
	assert.NotEqual(t, Hash("input a"), Hash("input b"))
}

func TestSum256_Concatenates(t *testing.T) {
	assert.Equal(t, Sum256([]byte("hello world")), Sum256([]byte("hello"), []byte(" "), []byte("world")))
	assert.Len(t, Sum256(), Size)
}
