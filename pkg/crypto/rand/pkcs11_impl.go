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

//go:build pkcs11

package rand

import (
	"errors"
	"fmt"
	"sync"

	"github.com/miekg/pkcs11"
)

// pkcs11Resolver draws bytes from C_GenerateRandom on an open session.
type pkcs11Resolver struct {
	mu       sync.Mutex
	ctx      *pkcs11.Ctx
	session  pkcs11.SessionHandle
	loggedIn bool
}

var _ Resolver = (*pkcs11Resolver)(nil)

func pkcs11Available() bool {
	return true
}

func newPKCS11Resolver(cfg *PKCS11Config) (Resolver, error) {
	if cfg == nil || cfg.Module == "" {
		return nil, errors.New("rand: pkcs11 module path is required")
	}

	ctx := pkcs11.New(cfg.Module)
	if ctx == nil {
		return nil, fmt.Errorf("rand: load pkcs11 module %s", cfg.Module)
	}
	if err := ctx.Initialize(); err != nil {
		ctx.Destroy()
		return nil, fmt.Errorf("rand: pkcs11 initialize: %w", err)
	}

	teardown := func() {
		_ = ctx.Finalize()
		ctx.Destroy()
	}

	// Some tokens only expose slots after a slot list query.
	if _, err := ctx.GetSlotList(true); err != nil {
		teardown()
		return nil, fmt.Errorf("rand: pkcs11 slot list: %w", err)
	}

	session, err := ctx.OpenSession(cfg.SlotID, pkcs11.CKF_SERIAL_SESSION)
	if err != nil {
		teardown()
		return nil, fmt.Errorf("rand: pkcs11 open session on slot %d: %w", cfg.SlotID, err)
	}

	r := &pkcs11Resolver{ctx: ctx, session: session}
	if cfg.PIN != "" {
		if err := ctx.Login(session, pkcs11.CKU_USER, cfg.PIN); err != nil {
			_ = ctx.CloseSession(session)
			teardown()
			return nil, fmt.Errorf("rand: pkcs11 login: %w", err)
		}
		r.loggedIn = true
	}
	return r, nil
}

func (p *pkcs11Resolver) Rand(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, n)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctx == nil {
		return nil, ErrClosed
	}
	if n == 0 {
		return []byte{}, nil
	}
	b, err := p.ctx.GenerateRandom(p.session, n)
	if err != nil {
		return nil, fmt.Errorf("rand: pkcs11 GenerateRandom: %w", err)
	}
	return b, nil
}

func (p *pkcs11Resolver) Read(b []byte) (int, error) {
	return readFull(p, b)
}

func (p *pkcs11Resolver) Mode() Mode { return ModePKCS11 }

func (p *pkcs11Resolver) Available() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ctx != nil
}

func (p *pkcs11Resolver) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctx == nil {
		return nil
	}
	if p.loggedIn {
		_ = p.ctx.Logout(p.session)
	}
	err := p.ctx.CloseSession(p.session)
	_ = p.ctx.Finalize()
	p.ctx.Destroy()
	p.ctx = nil
	return err
}
