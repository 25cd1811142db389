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

//go:build tpm2

package rand

import (
	"fmt"
	"net"
	"strconv"
	"sync"

	"github.com/google/go-tpm/tpm2"
	"github.com/google/go-tpm/tpm2/transport"
	"github.com/google/go-tpm/tpm2/transport/tcp"
	"github.com/google/go-tpm/tpmutil"
)

const (
	defaultTPMDevice      = "/dev/tpmrm0"
	defaultTPMRequestSize = 32
)

// tpm2Resolver draws bytes from the TPM's GetRandom command.
type tpm2Resolver struct {
	mu      sync.Mutex
	tpm     transport.TPMCloser
	maxSize int
}

var _ Resolver = (*tpm2Resolver)(nil)

func tpm2Available() bool {
	return true
}

func newTPM2Resolver(cfg *TPM2Config) (Resolver, error) {
	c := TPM2Config{}
	if cfg != nil {
		c = *cfg
	}
	if c.Device == "" {
		c.Device = defaultTPMDevice
	}
	if c.MaxRequestSize <= 0 {
		c.MaxRequestSize = defaultTPMRequestSize
	}

	var tpm transport.TPMCloser
	if c.SimulatorAddress != "" {
		host, port, err := net.SplitHostPort(c.SimulatorAddress)
		if err != nil {
			return nil, fmt.Errorf("rand: tpm2 simulator address: %w", err)
		}
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("rand: tpm2 simulator port: %w", err)
		}
		tpm, err = tcp.Open(tcp.Config{
			CommandAddress:  c.SimulatorAddress,
			PlatformAddress: net.JoinHostPort(host, strconv.Itoa(p+1)),
		})
		if err != nil {
			return nil, fmt.Errorf("rand: tpm2 simulator %s: %w", c.SimulatorAddress, err)
		}
	} else {
		dev, err := tpmutil.OpenTPM(c.Device)
		if err != nil {
			return nil, fmt.Errorf("rand: open tpm2 device %s: %w", c.Device, err)
		}
		tpm = transport.FromReadWriteCloser(dev)
	}

	return &tpm2Resolver{tpm: tpm, maxSize: c.MaxRequestSize}, nil
}

func (t *tpm2Resolver) Rand(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, n)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.tpm == nil {
		return nil, ErrClosed
	}

	out := make([]byte, 0, n)
	for len(out) < n {
		chunk := min(n-len(out), t.maxSize)
		rsp, err := tpm2.GetRandom{BytesRequested: uint16(chunk)}.Execute(t.tpm)
		if err != nil {
			return nil, fmt.Errorf("rand: tpm2 GetRandom: %w", err)
		}
		if len(rsp.RandomBytes.Buffer) == 0 {
			return nil, fmt.Errorf("rand: tpm2 GetRandom returned no bytes")
		}
		out = append(out, rsp.RandomBytes.Buffer...)
	}
	return out[:n], nil
}

func (t *tpm2Resolver) Read(p []byte) (int, error) {
	return readFull(t, p)
}

func (t *tpm2Resolver) Mode() Mode { return ModeTPM2 }

func (t *tpm2Resolver) Available() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tpm != nil
}

func (t *tpm2Resolver) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.tpm == nil {
		return nil
	}
	err := t.tpm.Close()
	t.tpm = nil
	return err
}
