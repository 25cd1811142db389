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

// Package health runs named checks and aggregates their status. The
// ethcrypto toolkit registers known-answer tests and a random source check
// with it.
package health

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Status represents the health status of a component.
type Status string

const (
	// StatusHealthy indicates the component is operating normally.
	StatusHealthy Status = "healthy"
	// StatusUnhealthy indicates the component is not functioning.
	StatusUnhealthy Status = "unhealthy"
	// StatusDegraded indicates the component works with reduced guarantees,
	// such as a hardware random source falling back to software.
	StatusDegraded Status = "degraded"
)

// CheckResult represents the result of a single health check.
type CheckResult struct {
	// Name is the identifier for this health check.
	Name string `json:"name" yaml:"name"`
	// Status is the health status of the component.
	Status Status `json:"status" yaml:"status"`
	// Message provides additional context about the status.
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
	// Latency is how long the check took to execute.
	Latency time.Duration `json:"latency" yaml:"latency"`
	// Error contains error details if the check failed.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// CheckFunc is a function that performs a health check.
type CheckFunc func(ctx context.Context) CheckResult

// Checker holds named checks. It is safe for concurrent use.
type Checker struct {
	mu     sync.RWMutex
	checks map[string]CheckFunc
}

// NewChecker creates a new health checker.
func NewChecker() *Checker {
	return &Checker{checks: make(map[string]CheckFunc)}
}

// RegisterCheck adds a health check with the given name.
// If a check with this name already exists, it will be replaced.
func (c *Checker) RegisterCheck(name string, check CheckFunc) {
	if check == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// UnregisterCheck removes a health check.
func (c *Checker) UnregisterCheck(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.checks, name)
}

// GetAllChecks returns the names of all registered checks in sorted order.
func (c *Checker) GetAllChecks() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run executes every registered check in name order. A canceled context
// marks the remaining checks unhealthy without running them.
func (c *Checker) Run(ctx context.Context) []CheckResult {
	c.mu.RLock()
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	c.mu.RUnlock()

	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]CheckResult, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			results = append(results, Fail(name, err))
			continue
		}
		start := time.Now()
		result := checks[name](ctx)
		result.Latency = time.Since(start)
		// Ensure name is set even if check doesn't set it
		if result.Name == "" {
			result.Name = name
		}
		results = append(results, result)
	}
	return results
}

// IsHealthy returns true if all checks pass.
func (c *Checker) IsHealthy(ctx context.Context) bool {
	return AggregateStatus(c.Run(ctx)) == StatusHealthy
}

// Pass returns a healthy result.
func Pass(name, message string) CheckResult {
	return CheckResult{Name: name, Status: StatusHealthy, Message: message}
}

// Fail returns an unhealthy result carrying err.
func Fail(name string, err error) CheckResult {
	return CheckResult{Name: name, Status: StatusUnhealthy, Error: err.Error()}
}

// Failf returns an unhealthy result with a formatted error.
func Failf(name, format string, args ...any) CheckResult {
	return Fail(name, fmt.Errorf(format, args...))
}

// AggregateStatus returns the overall status based on check results.
// Any unhealthy result makes the whole unhealthy; otherwise any degraded
// result makes it degraded.
func AggregateStatus(results []CheckResult) Status {
	hasUnhealthy := false
	hasDegraded := false

	for _, result := range results {
		switch result.Status {
		case StatusUnhealthy:
			hasUnhealthy = true
		case StatusDegraded:
			hasDegraded = true
		}
	}

	if hasUnhealthy {
		return StatusUnhealthy
	}
	if hasDegraded {
		return StatusDegraded
	}
	return StatusHealthy
}
