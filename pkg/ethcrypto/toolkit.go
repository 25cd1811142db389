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
	"errors"
	"fmt"
	"time"

	"github.com/jeremyhahn/go-ethcrypto/pkg/correlation"
	"github.com/jeremyhahn/go-ethcrypto/pkg/crypto/ecies"
	"github.com/jeremyhahn/go-ethcrypto/pkg/crypto/identity"
	"github.com/jeremyhahn/go-ethcrypto/pkg/crypto/keccak"
	"github.com/jeremyhahn/go-ethcrypto/pkg/crypto/pubkey"
	"github.com/jeremyhahn/go-ethcrypto/pkg/crypto/rand"
	"github.com/jeremyhahn/go-ethcrypto/pkg/logging"
	"github.com/jeremyhahn/go-ethcrypto/pkg/metrics"
	"github.com/jeremyhahn/go-ethcrypto/pkg/signing"
)

// Config configures a Toolkit.
type Config struct {
	// RNG selects the random source. Nil selects ModeAuto.
	RNG *rand.Config

	// Logger receives debug records for every operation. Nil uses
	// logging.DefaultLogger.
	Logger *logging.Logger
}

// Toolkit performs go-ethcrypto operations. It is safe for concurrent use.
type Toolkit struct {
	rng    rand.Resolver
	logger *logging.Logger
}

// New creates a Toolkit from cfg. A nil cfg uses defaults.
func New(cfg *Config) (*Toolkit, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	rng, err := rand.NewResolver(cfg.RNG)
	if err != nil {
		return nil, fmt.Errorf("ethcrypto: random source: %w", err)
	}
	return NewWithResolver(rng, cfg.Logger), nil
}

// NewWithResolver creates a Toolkit around an existing random source.
func NewWithResolver(rng rand.Resolver, logger *logging.Logger) *Toolkit {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &Toolkit{rng: rng, logger: logger}
}

// Source reports the random source in use.
func (t *Toolkit) Source() rand.Mode {
	return t.rng.Mode()
}

// Close releases the random source.
func (t *Toolkit) Close() error {
	return t.rng.Close()
}

// CreatePrivateKey returns a new 0x-prefixed private key. See
// identity.CreatePrivateKey for how entropy is used.
func (t *Toolkit) CreatePrivateKey(ctx context.Context, entropy []byte) (string, error) {
	return run(ctx, t, metrics.OpCreatePrivateKey, func() (string, error) {
		return identity.CreatePrivateKey(t.rng, entropy)
	})
}

// CreateIdentity returns a new key pair.
func (t *Toolkit) CreateIdentity(ctx context.Context, entropy []byte) (*identity.Identity, error) {
	return run(ctx, t, metrics.OpCreateIdentity, func() (*identity.Identity, error) {
		return identity.CreateIdentity(t.rng, entropy)
	})
}

// PublicKeyByPrivateKey returns the raw 128 hex digit public key.
func (t *Toolkit) PublicKeyByPrivateKey(ctx context.Context, privateKey string) (string, error) {
	return run(ctx, t, metrics.OpPublicKey, func() (string, error) {
		return identity.PublicKeyByPrivateKey(privateKey)
	})
}

// Keccak256 returns the 0x-prefixed Keccak-256 digest of s. Hashing
// cannot fail; the error reports a canceled or expired ctx.
func (t *Toolkit) Keccak256(ctx context.Context, s string) (string, error) {
	return run(ctx, t, metrics.OpHash, func() (string, error) {
		return keccak.Hash(s), nil
	})
}

// Sign signs a 32-byte hex hash.
func (t *Toolkit) Sign(ctx context.Context, privateKey, hash string) (string, error) {
	return run(ctx, t, metrics.OpSign, func() (string, error) {
		return signing.Sign(privateKey, hash)
	})
}

// RecoverPublicKey returns the raw public key that produced signature.
func (t *Toolkit) RecoverPublicKey(ctx context.Context, signature, hash string) (string, error) {
	return run(ctx, t, metrics.OpRecover, func() (string, error) {
		return signing.RecoverPublicKey(signature, hash)
	})
}

// VerifySignature reports whether publicKey produced signature over hash.
func (t *Toolkit) VerifySignature(ctx context.Context, publicKey, signature, hash string) (bool, error) {
	return run(ctx, t, metrics.OpVerify, func() (bool, error) {
		return signing.VerifySignature(publicKey, signature, hash)
	})
}

// EncryptWithPublicKey encrypts message to publicKey. opts may be nil.
func (t *Toolkit) EncryptWithPublicKey(ctx context.Context, publicKey, message string, opts *ecies.EncryptionOptions) (*ecies.Encrypted, error) {
	return run(ctx, t, metrics.OpEncrypt, func() (*ecies.Encrypted, error) {
		return ecies.Encrypt(t.rng, publicKey, message, opts)
	})
}

// DecryptWithPrivateKey decrypts encrypted. opts may be nil.
func (t *Toolkit) DecryptWithPrivateKey(ctx context.Context, privateKey string, encrypted *ecies.Encrypted, opts *ecies.DecryptOptions) (string, error) {
	return run(ctx, t, metrics.OpDecrypt, func() (string, error) {
		return ecies.Decrypt(privateKey, encrypted, opts)
	})
}

// CompressPublicKey returns the 33-byte compressed hex form of publicKey.
func (t *Toolkit) CompressPublicKey(ctx context.Context, publicKey string) (string, error) {
	return run(ctx, t, metrics.OpCompress, func() (string, error) {
		return pubkey.Compress(publicKey)
	})
}

// DecompressPublicKey returns the raw 128 hex digit form of publicKey,
// expanding compressed keys.
func (t *Toolkit) DecompressPublicKey(ctx context.Context, publicKey string) (string, error) {
	return run(ctx, t, metrics.OpDecompress, func() (string, error) {
		return pubkey.Uncompress(publicKey)
	})
}

// run wraps fn with cancellation, correlation, metrics and logging.
// Arguments and results are never logged since they may be secret.
func run[T any](ctx context.Context, t *Toolkit, op string, fn func() (T, error)) (T, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, id := correlation.Ensure(ctx)
	log := t.logger.With(correlation.LogKey, id, "operation", op)
	source := string(t.rng.Mode())

	var zero T
	if err := ctx.Err(); err != nil {
		metrics.RecordOperation(op, source, metrics.StatusError, 0)
		metrics.RecordError(op, "canceled")
		log.Debug("operation canceled", "error", err)
		return zero, err
	}

	start := time.Now()
	result, err := fn()
	elapsed := time.Since(start)

	if err != nil {
		kind := ErrorType(err)
		metrics.RecordOperation(op, source, metrics.StatusError, elapsed.Seconds())
		metrics.RecordError(op, kind)
		log.Debug("operation failed", "error_type", kind, "error", err, "duration", elapsed)
		return zero, err
	}

	metrics.RecordOperation(op, source, metrics.StatusSuccess, elapsed.Seconds())
	log.Debug("operation completed", "duration", elapsed)
	return result, nil
}

// errorTypes maps sentinel errors to metric labels. Order matters where
// one sentinel aliases another.
var errorTypes = []struct {
	err  error
	kind string
}{
	{ecies.ErrMACMismatch, "mac_mismatch"},
	{ecies.ErrCipherFailure, "cipher_failure"},
	{ecies.ErrInvalidIV, "invalid_iv"},
	{ecies.ErrInvalidEnvelope, "invalid_envelope"},
	{signing.ErrInvalidHashLength, "invalid_hash_length"},
	{signing.ErrMalformedSignature, "malformed_signature"},
	{signing.ErrRecoveryFailure, "recovery_failure"},
	{identity.ErrInvalidEntropy, "invalid_entropy"},
	{identity.ErrInvalidPrivateKey, "invalid_private_key"},
	{pubkey.ErrInvalidPublicKey, "invalid_public_key"},
	{rand.ErrClosed, "rng_closed"},
	{context.Canceled, "canceled"},
	{context.DeadlineExceeded, "deadline_exceeded"},
}

// ErrorType returns a stable label for err suitable for metrics.
func ErrorType(err error) string {
	if err == nil {
		return ""
	}
	for _, e := range errorTypes {
		if errors.Is(err, e.err) {
			return e.kind
		}
	}
	return "other"
}
