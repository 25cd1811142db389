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

// Package identity creates secp256k1 private keys and derives their
// public keys.
package identity

import (
	"errors"
	"fmt"
	"io"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/jeremyhahn/go-ethcrypto/pkg/crypto/hexutil"
	"github.com/jeremyhahn/go-ethcrypto/pkg/crypto/keccak"
	"github.com/jeremyhahn/go-ethcrypto/pkg/crypto/pubkey"
)

// DefaultEntropyBytes is the minimum accepted entropy length and the size of
// each random draw when no entropy is supplied.
const DefaultEntropyBytes = 32

var (
	// ErrInvalidEntropy is returned when caller supplied entropy is shorter
	// than DefaultEntropyBytes.
	ErrInvalidEntropy = errors.New("identity: entropy too short")

	// ErrInvalidPrivateKey is returned when a private key is not 32 bytes of
	// hex or is not a scalar in [1, N-1].
	ErrInvalidPrivateKey = errors.New("identity: invalid private key")
)

// Identity is a key pair in canonical string form.
type Identity struct {
	// PrivateKey is "0x" followed by 64 hex digits.
	PrivateKey string `json:"privateKey" yaml:"privateKey"`

	// PublicKey is the raw 128 hex digit x || y encoding.
	PublicKey string `json:"publicKey" yaml:"publicKey"`
}

// CreatePrivateKey returns a new 0x-prefixed private key.
//
// With entropy, the key is the Keccak-256 digest of the entropy, so the
// same entropy always yields the same key. Without entropy, 128 bytes are
// drawn from random and mixed as keccak(r1 || keccak(r2 || r3) || r4).
func CreatePrivateKey(random io.Reader, entropy []byte) (string, error) {
	if entropy != nil {
		if len(entropy) < DefaultEntropyBytes {
			return "", fmt.Errorf("%w: need at least %d bytes, got %d",
				ErrInvalidEntropy, DefaultEntropyBytes, len(entropy))
		}
		return hexutil.EncodePrefixed(keccak.Sum256(entropy)), nil
	}

	if random == nil {
		return "", errors.New("identity: random source cannot be nil")
	}

	draws := make([]byte, 4*DefaultEntropyBytes)
	defer clear(draws)
	if _, err := io.ReadFull(random, draws); err != nil {
		return "", fmt.Errorf("identity: read random: %w", err)
	}
	r1 := draws[0:32]
	r2 := draws[32:64]
	r3 := draws[64:96]
	r4 := draws[96:128]

	inner := keccak.Sum256(r2, r3)
	defer clear(inner)
	return hexutil.EncodePrefixed(keccak.Sum256(r1, inner, r4)), nil
}

// ParsePrivateKey decodes a hex private key with an optional "0x" prefix.
// The key must be exactly 32 bytes and a valid non-zero scalar.
func ParsePrivateKey(privateKey string) (*secp256k1.PrivateKey, error) {
	b, err := hexutil.DecodeLen(privateKey, secp256k1.PrivKeyBytesLen)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPrivateKey, err)
	}
	defer clear(b)

	var k secp256k1.ModNScalar
	if overflow := k.SetByteSlice(b); overflow {
		return nil, fmt.Errorf("%w: scalar exceeds curve order", ErrInvalidPrivateKey)
	}
	if k.IsZero() {
		return nil, fmt.Errorf("%w: zero scalar", ErrInvalidPrivateKey)
	}
	return secp256k1.NewPrivateKey(&k), nil
}

// PublicKeyByPrivateKey returns the raw 128 hex digit public key of
// privateKey.
func PublicKeyByPrivateKey(privateKey string) (string, error) {
	priv, err := ParsePrivateKey(privateKey)
	if err != nil {
		return "", err
	}
	defer priv.Zero()

	uncompressed := hexutil.Encode(priv.PubKey().SerializeUncompressed())
	return pubkey.Decompress(uncompressed)
}

// CreateIdentity creates a private key and derives its public key.
func CreateIdentity(random io.Reader, entropy []byte) (*Identity, error) {
	priv, err := CreatePrivateKey(random, entropy)
	if err != nil {
		return nil, err
	}
	pub, err := PublicKeyByPrivateKey(priv)
	if err != nil {
		return nil, err
	}
	return &Identity{PrivateKey: priv, PublicKey: pub}, nil
}
