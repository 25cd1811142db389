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
	"crypto/rand"
	"fmt"
)

// SoftwareResolver reads from crypto/rand. It is always available.
type SoftwareResolver struct{}

var _ Resolver = (*SoftwareResolver)(nil)

// NewSoftwareResolver returns a resolver backed by the operating system CSPRNG.
func NewSoftwareResolver() *SoftwareResolver {
	return &SoftwareResolver{}
}

func (s *SoftwareResolver) Rand(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, n)
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("rand: software read: %w", err)
	}
	return buf, nil
}

func (s *SoftwareResolver) Read(p []byte) (int, error) {
	return rand.Read(p)
}

func (s *SoftwareResolver) Mode() Mode      { return ModeSoftware }
func (s *SoftwareResolver) Available() bool { return true }
func (s *SoftwareResolver) Close() error    { return nil }
