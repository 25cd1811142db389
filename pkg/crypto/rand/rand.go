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

// Package rand supplies the randomness consumed by key generation and
// ECIES encryption.
//
// A Resolver is selected by Mode:
//   - software: crypto/rand
//   - tpm2: TPM 2.0 GetRandom (requires the tpm2 build tag)
//   - pkcs11: HSM C_GenerateRandom (requires the pkcs11 build tag)
//   - auto: the first available of pkcs11, tpm2 and software
//
// Every Resolver implements io.Reader so it can be passed directly to
// identity.CreatePrivateKey and ecies.Encrypt.
//
//	rng, err := rand.NewResolver(&rand.Config{Mode: rand.ModeAuto})
//	if err != nil {
//	    return err
//	}
//	defer rng.Close()
//	key, err := identity.CreatePrivateKey(rng, nil)
package rand

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Mode specifies which RNG source to use.
type Mode string

const (
	// ModeAuto selects the best available source.
	ModeAuto Mode = "auto"

	// ModeSoftware uses crypto/rand.
	ModeSoftware Mode = "software"

	// ModeTPM2 uses the TPM 2.0 hardware RNG.
	ModeTPM2 Mode = "tpm2"

	// ModePKCS11 uses a PKCS#11 token's RNG.
	ModePKCS11 Mode = "pkcs11"
)

var (
	// ErrUnknownMode is returned for a Mode outside the supported set.
	ErrUnknownMode = errors.New("rand: unknown mode")

	// ErrNotCompiled is returned when a hardware mode is requested from a
	// binary built without its build tag.
	ErrNotCompiled = errors.New("rand: source not compiled in")

	// ErrClosed is returned by a hardware resolver after Close.
	ErrClosed = errors.New("rand: resolver closed")

	// ErrInvalidLength is returned when a negative byte count is requested.
	ErrInvalidLength = errors.New("rand: invalid length")
)

// Config selects and configures the RNG source.
type Config struct {
	// Mode is the primary source. Empty means ModeAuto.
	Mode Mode `yaml:"mode" json:"mode"`

	// FallbackMode is used when the primary source fails to produce
	// bytes. Empty disables fallback.
	FallbackMode Mode `yaml:"fallback_mode,omitempty" json:"fallback_mode,omitempty"`

	TPM2   *TPM2Config   `yaml:"tpm2,omitempty" json:"tpm2,omitempty"`
	PKCS11 *PKCS11Config `yaml:"pkcs11,omitempty" json:"pkcs11,omitempty"`
}

// TPM2Config configures the TPM 2.0 source.
type TPM2Config struct {
	// Device is the TPM character device. Default: /dev/tpmrm0
	Device string `yaml:"device" json:"device"`

	// MaxRequestSize caps the bytes requested per GetRandom call.
	// Default: 32
	MaxRequestSize int `yaml:"max_request_size" json:"max_request_size"`

	// SimulatorAddress, when set, connects to a TCP simulator (swtpm)
	// at host:port instead of Device. The platform port is port+1.
	SimulatorAddress string `yaml:"simulator_address,omitempty" json:"simulator_address,omitempty"`
}

// PKCS11Config configures the PKCS#11 source.
type PKCS11Config struct {
	// Module is the path to the PKCS#11 shared library.
	Module string `yaml:"module" json:"module"`

	// SlotID is the token slot to open a session on.
	SlotID uint `yaml:"slot_id" json:"slot_id"`

	// PIN logs the session in as CKU_USER when non-empty.
	PIN string `yaml:"pin,omitempty" json:"-"`
}

// Resolver produces random bytes from a configured source.
type Resolver interface {
	io.Reader

	// Rand returns n random bytes.
	Rand(n int) ([]byte, error)

	// Mode reports the source actually in use.
	Mode() Mode

	// Available reports whether the source can currently produce bytes.
	Available() bool

	// Close releases any device handles.
	Close() error
}

// ParseMode converts a case-insensitive mode name into a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeAuto, nil
	case ModeAuto, ModeSoftware, ModeTPM2, ModePKCS11:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// NewResolver creates a Resolver for cfg. A nil cfg selects ModeAuto.
func NewResolver(cfg *Config) (Resolver, error) {
	if cfg == nil {
		cfg = &Config{Mode: ModeAuto}
	}

	primary, err := newSource(cfg, cfg.Mode)
	if err != nil {
		return nil, err
	}
	if cfg.FallbackMode == "" || cfg.FallbackMode == primary.Mode() {
		return primary, nil
	}

	fallback, err := newSource(cfg, cfg.FallbackMode)
	if err != nil {
		_ = primary.Close()
		return nil, fmt.Errorf("rand: fallback: %w", err)
	}
	return &fallbackResolver{primary: primary, fallback: fallback}, nil
}

func newSource(cfg *Config, mode Mode) (Resolver, error) {
	switch mode {
	case "", ModeAuto:
		return newAutoResolver(cfg)
	case ModeSoftware:
		return NewSoftwareResolver(), nil
	case ModeTPM2:
		return newTPM2Resolver(cfg.TPM2)
	case ModePKCS11:
		return newPKCS11Resolver(cfg.PKCS11)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

// readFull fills p from r.Rand, the common io.Reader implementation of
// every resolver.
func readFull(r interface{ Rand(int) ([]byte, error) }, p []byte) (int, error) {
	b, err := r.Rand(len(p))
	if err != nil {
		return 0, err
	}
	return copy(p, b), nil
}
