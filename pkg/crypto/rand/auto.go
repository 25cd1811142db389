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

package rand

import (
	"errors"
	"sync"
)

// newAutoResolver returns the first available source in the order
// PKCS#11, TPM2, software. Hardware sources that fail to open are skipped.
func newAutoResolver(cfg *Config) (Resolver, error) {
	if pkcs11Available() && cfg.PKCS11 != nil {
		if r, err := newPKCS11Resolver(cfg.PKCS11); err == nil {
			if r.Available() {
				return r, nil
			}
			_ = r.Close()
		}
	}

	if tpm2Available() {
		if r, err := newTPM2Resolver(cfg.TPM2); err == nil {
			if r.Available() {
				return r, nil
			}
			_ = r.Close()
		}
	}

	return NewSoftwareResolver(), nil
}

// fallbackResolver retries a failed read against a secondary source.
type fallbackResolver struct {
	mu       sync.RWMutex
	primary  Resolver
	fallback Resolver
}

var _ Resolver = (*fallbackResolver)(nil)

func (f *fallbackResolver) Rand(n int) ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	b, err := f.primary.Rand(n)
	if err == nil {
		return b, nil
	}
	b, ferr := f.fallback.Rand(n)
	if ferr != nil {
		return nil, errors.Join(err, ferr)
	}
	return b, nil
}

func (f *fallbackResolver) Read(p []byte) (int, error) {
	return readFull(f, p)
}

func (f *fallbackResolver) Mode() Mode {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.primary.Available() {
		return f.primary.Mode()
	}
	return f.fallback.Mode()
}

func (f *fallbackResolver) Available() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.primary.Available() || f.fallback.Available()
}

func (f *fallbackResolver) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return errors.Join(f.primary.Close(), f.fallback.Close())
}
