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

// Package signing produces and verifies recoverable secp256k1 ECDSA
// signatures over 32-byte hashes.
//
// Signatures are 65 bytes, r || s || v, hex encoded with a "0x" prefix.
// The trailing byte v is 0x1b when the recovery id is even and 0x1c when
// it is odd. Nonces are derived deterministically per RFC 6979 and s is
// always in the lower half of the curve order.
package signing

import (
	"crypto"
	"fmt"
	"io"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/jeremyhahn/go-ethcrypto/pkg/crypto/hexutil"
	"github.com/jeremyhahn/go-ethcrypto/pkg/crypto/identity"
	"github.com/jeremyhahn/go-ethcrypto/pkg/crypto/pubkey"
)

const (
	// HashLen is the required digest length in bytes.
	HashLen = 32

	// SignatureLen is the length of an r || s || v signature in bytes.
	SignatureLen = 65

	// compactMagic is the offset added to the recovery id in the
	// compact signature header byte.
	compactMagic = 27

	// recoveryOdd is the trailer byte of an odd recovery id.
	recoveryOdd = "1c"
)

// Sign signs a 0x-prefixed or bare 32-byte hex hash with privateKey and
// returns the 0x-prefixed r || s || v signature.
func Sign(privateKey, hash string) (string, error) {
	if len(hexutil.AddLeading0x(hash)) != 2+2*HashLen {
		return "", fmt.Errorf("%w: got %d hex digits", ErrInvalidHashLength, len(hexutil.StripHexPrefix(hash)))
	}
	digest, err := hexutil.Decode(hash)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidHashLength, err)
	}

	priv, err := identity.ParsePrivateKey(privateKey)
	if err != nil {
		return "", err
	}
	defer priv.Zero()

	return hexutil.EncodePrefixed(signDigest(priv, digest)), nil
}

// signDigest returns r || s || v for a 32-byte digest.
func signDigest(priv *secp256k1.PrivateKey, digest []byte) []byte {
	// SignCompact returns v || r || s with v = 27 + recovery id.
	compact := ecdsa.SignCompact(priv, digest, false)

	sig := make([]byte, SignatureLen)
	copy(sig, compact[1:])
	if (compact[0]-compactMagic)&1 == 1 {
		sig[64] = 0x1c
	} else {
		sig[64] = 0x1b
	}
	return sig
}

// RecoverPublicKey returns the raw 128 hex digit public key that produced
// signature over hash.
//
// A trailing byte of "1c" selects recovery id 1 and every other value
// selects 0. The trailer is compared case-insensitively, so "1C" also
// selects 1; implementations that compare only the lowercase form read
// "1C" as 0 and recover a different key.
func RecoverPublicKey(signature, hash string) (string, error) {
	pk, err := recoverKey(signature, hash)
	if err != nil {
		return "", err
	}
	return pubkey.Serialize(pk, pubkey.FormatRaw)
}

// VerifySignature reports whether signature over hash was produced by the
// private key of publicKey. publicKey may be in any encoding accepted by
// pubkey.Parse.
func VerifySignature(publicKey, signature, hash string) (bool, error) {
	expected, err := pubkey.Parse(publicKey)
	if err != nil {
		return false, err
	}
	recovered, err := recoverKey(signature, hash)
	if err != nil {
		return false, err
	}
	return recovered.IsEqual(expected), nil
}

func recoverKey(signature, hash string) (*secp256k1.PublicKey, error) {
	sigHex := hexutil.StripHexPrefix(signature)
	if len(sigHex) != 2*SignatureLen {
		return nil, fmt.Errorf("%w: expected %d hex digits, got %d", ErrMalformedSignature, 2*SignatureLen, len(sigHex))
	}

	sigOnly := sigHex[:len(sigHex)-2]
	v := strings.ToLower(sigHex[len(sigHex)-2:])

	rs, err := hexutil.Decode(sigOnly)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedSignature, err)
	}
	if _, err := hexutil.Decode(v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedSignature, err)
	}

	digest, err := hexutil.DecodeLen(hash, HashLen)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHashLength, err)
	}

	var recovery byte
	if v == recoveryOdd {
		recovery = 1
	}

	compact := make([]byte, 0, SignatureLen)
	compact = append(compact, compactMagic+recovery)
	compact = append(compact, rs...)

	pk, _, err := ecdsa.RecoverCompact(compact, digest)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRecoveryFailure, err)
	}
	return pk, nil
}

// Signer is a crypto.Signer over a secp256k1 private key that returns
// 65-byte r || s || v signatures.
type Signer struct {
	key *secp256k1.PrivateKey
}

var _ crypto.Signer = (*Signer)(nil)

// NewSigner parses privateKey and returns a Signer for it.
func NewSigner(privateKey string) (*Signer, error) {
	priv, err := identity.ParsePrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	return &Signer{key: priv}, nil
}

// Public returns the *secp256k1.PublicKey of the signer.
func (s *Signer) Public() crypto.PublicKey {
	return s.key.PubKey()
}

// Sign signs a 32-byte digest. The nonce is deterministic so rand is
// ignored, and opts may be nil.
func (s *Signer) Sign(_ io.Reader, digest []byte, _ crypto.SignerOpts) ([]byte, error) {
	if s.key == nil {
		return nil, fmt.Errorf("%w: signer destroyed", ErrSigningFailed)
	}
	if len(digest) != HashLen {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidHashLength, len(digest))
	}
	return signDigest(s.key, digest), nil
}

// Destroy zeroes the private key. The Signer is unusable afterwards.
func (s *Signer) Destroy() {
	if s.key != nil {
		s.key.Zero()
		s.key = nil
	}
}
