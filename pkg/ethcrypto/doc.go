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

// Package ethcrypto is the high level entry point to go-ethcrypto. A
// Toolkit bundles key derivation, Keccak-256 hashing, recoverable
// signatures and ECIES encryption with a configured random source,
// structured logging, Prometheus metrics and correlation IDs.
//
//	tk, err := ethcrypto.New(&ethcrypto.Config{
//	    RNG: &rand.Config{Mode: rand.ModeAuto},
//	})
//	if err != nil {
//	    return err
//	}
//	defer tk.Close()
//
//	id, _ := tk.CreateIdentity(ctx, nil)
//	hash, _ := tk.Keccak256(ctx, "hello")
//	sig, _ := tk.Sign(ctx, id.PrivateKey, hash)
//
// SelfTest runs known-answer tests for every primitive before use.
//
// The package level functions use a shared Toolkit backed by crypto/rand.
package ethcrypto
