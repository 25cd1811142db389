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

package ethcrypto

import (
	"context"
	"sync"

	"github.com/jeremyhahn/go-ethcrypto/pkg/crypto/ecies"
	"github.com/jeremyhahn/go-ethcrypto/pkg/crypto/identity"
	"github.com/jeremyhahn/go-ethcrypto/pkg/crypto/rand"
	"github.com/jeremyhahn/go-ethcrypto/pkg/logging"
)

var (
	defaultToolkit *Toolkit
	defaultOnce    sync.Once
)

// Default returns the shared software RNG Toolkit used by the package
// level functions.
func Default() *Toolkit {
	defaultOnce.Do(func() {
		defaultToolkit = NewWithResolver(rand.NewSoftwareResolver(), logging.DefaultLogger())
	})
	return defaultToolkit
}

// CreateIdentity creates a key pair with the default Toolkit.
func CreateIdentity(entropy []byte) (*identity.Identity, error) {
	return Default().CreateIdentity(context.Background(), entropy)
}

// PublicKeyByPrivateKey derives a public key with the default Toolkit.
func PublicKeyByPrivateKey(privateKey string) (string, error) {
	return Default().PublicKeyByPrivateKey(context.Background(), privateKey)
}

// Keccak256 hashes s with the default Toolkit.
func Keccak256(s string) (string, error) {
	return Default().Keccak256(context.Background(), s)
}

// Sign signs hash with the default Toolkit.
func Sign(privateKey, hash string) (string, error) {
	return Default().Sign(context.Background(), privateKey, hash)
}

// RecoverPublicKey recovers a public key with the default Toolkit.
func RecoverPublicKey(signature, hash string) (string, error) {
	return Default().RecoverPublicKey(context.Background(), signature, hash)
}

// EncryptWithPublicKey encrypts with the default Toolkit.
func EncryptWithPublicKey(publicKey, message string) (*ecies.Encrypted, error) {
	return Default().EncryptWithPublicKey(context.Background(), publicKey, message, nil)
}

// DecryptWithPrivateKey decrypts with the default Toolkit, verifying the MAC.
func DecryptWithPrivateKey(privateKey string, encrypted *ecies.Encrypted) (string, error) {
	return Default().DecryptWithPrivateKey(context.Background(), privateKey, encrypted, nil)
}
