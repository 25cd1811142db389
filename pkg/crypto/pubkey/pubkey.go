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

// Package pubkey converts secp256k1 public keys between their three hex
// encodings:
//
//   - Compressed:   33 bytes, 0x02/0x03 || x
//   - Uncompressed: 65 bytes, 0x04 || x || y
//   - Raw:          64 bytes, x || y
//
// The raw form (128 hex characters, no "0x") is the canonical public key
// string used by the rest of go-ethcrypto.
package pubkey

import (
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/jeremyhahn/go-ethcrypto/pkg/crypto/hexutil"
)

// Format identifies a public key encoding.
type Format int

const (
	// FormatRaw is the 64-byte x || y encoding.
	FormatRaw Format = iota

	// FormatUncompressed is the 65-byte 0x04 || x || y encoding.
	FormatUncompressed

	// FormatCompressed is the 33-byte 0x02/0x03 || x encoding.
	FormatCompressed
)

const (
	// RawLen is the byte length of a raw public key.
	RawLen = 64

	// UncompressedLen is the byte length of an uncompressed public key.
	UncompressedLen = secp256k1.PubKeyBytesLenUncompressed

	// CompressedLen is the byte length of a compressed public key.
	CompressedLen = secp256k1.PubKeyBytesLenCompressed

	// uncompressedPrefix is the SEC1 format byte for uncompressed points.
	uncompressedPrefix = "04"
)

// ErrInvalidPublicKey is returned when a public key cannot be decoded or is
// not a point on the curve.
var ErrInvalidPublicKey = errors.New("pubkey: invalid public key")

// String returns the name of the format.
func (f Format) String() string {
	switch f {
	case FormatRaw:
		return "raw"
	case FormatUncompressed:
		return "uncompressed"
	case FormatCompressed:
		return "compressed"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Decompress normalizes a hex public key to the raw 64-byte form using the
// byte count alone: a 64-byte input is treated as already raw, anything
// else is assumed to carry a one-byte format prefix which is dropped.
//
// No curve arithmetic is performed, so a compressed key passed here comes
// back as its bare x coordinate. Use Uncompress when the input may be
// compressed or must be validated.
func Decompress(hexPubKey string) (string, error) {
	key := hexutil.StripHexPrefix(hexPubKey)
	b, err := hexutil.Decode(key)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidPublicKey, err)
	}
	if len(b) == 0 {
		return "", fmt.Errorf("%w: empty key", ErrInvalidPublicKey)
	}

	startsWith04 := key
	if len(b) == RawLen {
		startsWith04 = uncompressedPrefix + key
	}
	return startsWith04[2:], nil
}

// Parse decodes a compressed, uncompressed or raw hex public key and
// verifies that it is a point on the curve.
func Parse(hexPubKey string) (*secp256k1.PublicKey, error) {
	b, err := hexutil.Decode(hexPubKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPublicKey, err)
	}

	if len(b) == RawLen {
		withPrefix := make([]byte, 0, UncompressedLen)
		withPrefix = append(withPrefix, secp256k1.PubKeyFormatUncompressed)
		b = append(withPrefix, b...)
	}

	switch len(b) {
	case CompressedLen, UncompressedLen:
	default:
		return nil, fmt.Errorf("%w: unexpected length %d", ErrInvalidPublicKey, len(b))
	}

	pk, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPublicKey, err)
	}
	return pk, nil
}

// Serialize encodes pk as hex in the requested format without a "0x" prefix.
func Serialize(pk *secp256k1.PublicKey, format Format) (string, error) {
	if pk == nil {
		return "", fmt.Errorf("%w: public key cannot be nil", ErrInvalidPublicKey)
	}
	switch format {
	case FormatRaw:
		return hexutil.Encode(pk.SerializeUncompressed()[1:]), nil
	case FormatUncompressed:
		return hexutil.Encode(pk.SerializeUncompressed()), nil
	case FormatCompressed:
		return hexutil.Encode(pk.SerializeCompressed()), nil
	default:
		return "", fmt.Errorf("pubkey: unsupported format %s", format)
	}
}

// Uncompress converts any supported encoding to the raw 64-byte form,
// expanding compressed keys and validating the point.
func Uncompress(hexPubKey string) (string, error) {
	pk, err := Parse(hexPubKey)
	if err != nil {
		return "", err
	}
	return Serialize(pk, FormatRaw)
}

// Compress converts any supported encoding to the 33-byte compressed form.
func Compress(hexPubKey string) (string, error) {
	pk, err := Parse(hexPubKey)
	if err != nil {
		return "", err
	}
	return Serialize(pk, FormatCompressed)
}

// Convert re-encodes a public key in the requested format.
func Convert(hexPubKey string, format Format) (string, error) {
	pk, err := Parse(hexPubKey)
	if err != nil {
		return "", err
	}
	return Serialize(pk, format)
}
