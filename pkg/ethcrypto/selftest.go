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
	"bytes"
	"context"

	"github.com/jeremyhahn/go-ethcrypto/pkg/crypto/ecies"
	"github.com/jeremyhahn/go-ethcrypto/pkg/crypto/identity"
	"github.com/jeremyhahn/go-ethcrypto/pkg/crypto/keccak"
	"github.com/jeremyhahn/go-ethcrypto/pkg/health"
	"github.com/jeremyhahn/go-ethcrypto/pkg/signing"
)

// Known-answer vectors for the self test.
const (
	katEmptyKeccak = "0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"
	katPrivateKey  = "0xb966663733f9dacb81ccf336508bb334cca74136f6063783f737fb4c12c96c63"
	katPublicKey   = "482a8203fc2c502f1f2f5112ca4abec8a25835c6627bac4c479d93c140ff7d9b" +
		"bc7fb8913e2aaeae26871966af70a739aa0305b5256c4abb8e8d016ccf795f44"
	katHash      = "0x2a6cbba5f734a92891f3548343db1ad63a5aa63b14d17b8af526d5f978f8770e"
	katSignature = "0xa222db3e921f6c3f9fc5f11a75868b1b50343885e38f5b2644a7dd49b6566c4c" +
		"61903c65e439bc19cf6f079687785f60a5e17185af7420674265c7c95e21a2401b"
	katIV        = "000102030405060708090a0b0c0d0e0f"
	katEphemeral = "0x0a0b0c0d0e0f101112131415161718191a1b1c1d1e1f20212223242526272829"
	katMessage   = "go-ethcrypto self test"

	sampleSize = 32
)

// Health check names.
const (
	CheckRandom  = "random_source"
	CheckKeccak  = "keccak256"
	CheckSigning = "signing"
	CheckECIES   = "ecies"
)

// SelfTest runs known-answer tests for every primitive and samples the
// random source. Checks bypass metrics and operation logging.
func (t *Toolkit) SelfTest(ctx context.Context) []health.CheckResult {
	checker := health.NewChecker()
	checker.RegisterCheck(CheckRandom, t.checkRandom)
	checker.RegisterCheck(CheckKeccak, checkKeccak)
	checker.RegisterCheck(CheckSigning, checkSigning)
	checker.RegisterCheck(CheckECIES, checkECIES)

	results := checker.Run(ctx)
	t.logger.Debug("self test completed", "status", health.AggregateStatus(results))
	return results
}

// checkRandom fails on an unavailable source or on two identical draws.
func (t *Toolkit) checkRandom(ctx context.Context) health.CheckResult {
	if !t.rng.Available() {
		return health.Failf(CheckRandom, "random source %s is not available", t.rng.Mode())
	}
	first, err := t.rng.Rand(sampleSize)
	if err != nil {
		return health.Fail(CheckRandom, err)
	}
	second, err := t.rng.Rand(sampleSize)
	if err != nil {
		return health.Fail(CheckRandom, err)
	}
	if bytes.Equal(first, second) {
		return health.Failf(CheckRandom, "random source %s repeated its output", t.rng.Mode())
	}
	return health.Pass(CheckRandom, "source "+string(t.rng.Mode()))
}

func checkKeccak(ctx context.Context) health.CheckResult {
	if got := keccak.Hash(""); got != katEmptyKeccak {
		return health.Failf(CheckKeccak, "empty input hashed to %s", got)
	}
	return health.Pass(CheckKeccak, "known answer matches")
}

func checkSigning(ctx context.Context) health.CheckResult {
	sig, err := signing.Sign(katPrivateKey, katHash)
	if err != nil {
		return health.Fail(CheckSigning, err)
	}
	if sig != katSignature {
		return health.Failf(CheckSigning, "signature mismatch: %s", sig)
	}
	pub, err := signing.RecoverPublicKey(sig, katHash)
	if err != nil {
		return health.Fail(CheckSigning, err)
	}
	if pub != katPublicKey {
		return health.Failf(CheckSigning, "recovered %s", pub)
	}
	return health.Pass(CheckSigning, "sign and recover known answers match")
}

func checkECIES(ctx context.Context) health.CheckResult {
	pub, err := identity.PublicKeyByPrivateKey(katPrivateKey)
	if err != nil {
		return health.Fail(CheckECIES, err)
	}
	enc, err := ecies.Encrypt(nil, pub, katMessage, &ecies.EncryptionOptions{
		IV:              katIV,
		EphemPrivateKey: katEphemeral,
	})
	if err != nil {
		return health.Fail(CheckECIES, err)
	}
	msg, err := ecies.Decrypt(katPrivateKey, enc, nil)
	if err != nil {
		return health.Fail(CheckECIES, err)
	}
	if msg != katMessage {
		return health.Failf(CheckECIES, "round trip returned %q", msg)
	}
	return health.Pass(CheckECIES, "encrypt and decrypt round trip")
}
