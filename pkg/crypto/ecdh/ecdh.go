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

// Package ecdh performs secp256k1 Elliptic Curve Diffie-Hellman key
// agreement and splits the shared secret into encryption and MAC keys.
//
// Example usage:
//
//	alice, _ := secp256k1.GeneratePrivateKey()
//	bob, _ := secp256k1.GeneratePrivateKey()
//
//	// Both sides compute the same 32-byte secret
//	aliceSecret, _ := ecdh.DeriveSharedSecret(alice, bob.PubKey())
//	bobSecret, _ := ecdh.DeriveSharedSecret(bob, alice.PubKey())
//
//	encKey, macKey, _ := ecdh.DeriveKeys(aliceSecret)
package ecdh

import (
	"crypto/sha512"
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

const (
	// SharedSecretLen is the length of the shared x coordinate.
	SharedSecretLen = 32

	// KeyLen is the length of each derived key.
	KeyLen = 32
)

// ErrInvalidKey is returned for nil or zero keys.
var ErrInvalidKey = errors.New("ecdh: invalid key")

// DeriveSharedSecret multiplies publicKey by privateKey and returns the
// compressed encoding of the resulting point without its format byte,
// which is the 32-byte big-endian x coordinate.
func DeriveSharedSecret(privateKey *secp256k1.PrivateKey, publicKey *secp256k1.PublicKey) ([]byte, error) {
	if privateKey == nil {
		return nil, fmt.Errorf("%w: private key cannot be nil", ErrInvalidKey)
	}
	if publicKey == nil {
		return nil, fmt.Errorf("%w: public key cannot be nil", ErrInvalidKey)
	}
	if privateKey.Key.IsZero() {
		return nil, fmt.Errorf("%w: private key is zero", ErrInvalidKey)
	}

	var point, result secp256k1.JacobianPoint
	publicKey.AsJacobian(&point)
	secp256k1.ScalarMultNonConst(&privateKey.Key, &point, &result)
	if (result.X.IsZero() && result.Y.IsZero()) || result.Z.IsZero() {
		return nil, errors.New("ecdh: shared point is at infinity")
	}
	result.ToAffine()

	shared := secp256k1.NewPublicKey(&result.X, &result.Y)
	return shared.SerializeCompressed()[1:], nil
}

// DeriveKeys hashes sharedSecret with SHA-512 and returns the first 32
// bytes as the encryption key and the last 32 bytes as the MAC key.
func DeriveKeys(sharedSecret []byte) (encryptionKey, macKey []byte, err error) {
	if len(sharedSecret) == 0 {
		return nil, nil, errors.New("ecdh: shared secret cannot be empty")
	}

	digest := sha512.Sum512(sharedSecret)
	defer clear(digest[:])

	encryptionKey = make([]byte, KeyLen)
	macKey = make([]byte, KeyLen)
	copy(encryptionKey, digest[:KeyLen])
	copy(macKey, digest[KeyLen:])
	return encryptionKey, macKey, nil
}
