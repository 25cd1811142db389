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

package signing

import "errors"

var (
	// ErrInvalidHashLength indicates the hash is not 32 bytes of hex
	ErrInvalidHashLength = errors.New("signing: hash must be 32 bytes")

	// ErrMalformedSignature indicates the signature is not 65 bytes of hex
	ErrMalformedSignature = errors.New("signing: malformed signature")

	// ErrRecoveryFailure indicates no public key could be recovered from
	// the signature and hash
	ErrRecoveryFailure = errors.New("signing: public key recovery failed")

	// ErrSigningFailed indicates the private key could not be used to sign
	ErrSigningFailed = errors.New("signing: operation failed")
)
