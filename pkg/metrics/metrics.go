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

// Package metrics provides Prometheus instrumentation for go-ethcrypto
// operations: operation counts and latencies labelled by the random source
// in use, error counters by failure kind, and process gauges.
package metrics

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace is the Prometheus namespace for all go-ethcrypto metrics
	Namespace = "ethcrypto"

	// Label names
	LabelOperation = "operation"
	LabelSource    = "source"
	LabelStatus    = "status"
	LabelErrorType = "error_type"

	// Status values
	StatusSuccess = "success"
	StatusError   = "error"

	// Operation names
	OpCreateIdentity   = "create_identity"
	OpCreatePrivateKey = "create_private_key"
	OpPublicKey        = "public_key"
	OpHash             = "keccak256"
	OpSign             = "sign"
	OpRecover          = "recover"
	OpVerify           = "verify"
	OpEncrypt          = "encrypt"
	OpDecrypt          = "decrypt"
	OpCompress         = "compress"
	OpDecompress       = "decompress"
)

var (
	// OperationsTotal counts operations by type, random source and status.
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "operations_total",
			Help:      "Total number of crypto operations by type, random source, and status",
		},
		[]string{LabelOperation, LabelSource, LabelStatus},
	)

	// OperationDuration tracks operation latency in seconds. Buckets start
	// well below a millisecond since most operations are a single scalar
	// multiplication.
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of crypto operations in seconds",
			Buckets:   []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01, .05, .1, .5, 1},
		},
		[]string{LabelOperation, LabelSource},
	)

	// ErrorsTotal counts failures by operation and error type
	// (e.g. "invalid_private_key", "mac_mismatch").
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "errors_total",
			Help:      "Total number of errors by operation and error type",
		},
		[]string{LabelOperation, LabelErrorType},
	)

	// Goroutines is the goroutine count at the last CollectOnce.
	Goroutines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "goroutines",
			Help:      "Current number of goroutines",
		},
	)

	// MemoryAllocBytes is the heap allocation at the last CollectOnce.
	MemoryAllocBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "memory_alloc_bytes",
			Help:      "Current bytes of allocated heap objects",
		},
	)

	enabled atomic.Bool
)

func init() {
	enabled.Store(true)
}

// RecordOperation records an operation with its duration in seconds.
//
// Example:
//
//	start := time.Now()
//	sig, err := signing.Sign(key, hash)
//	status := metrics.StatusSuccess
//	if err != nil {
//	    status = metrics.StatusError
//	}
//	metrics.RecordOperation(metrics.OpSign, "software", status, time.Since(start).Seconds())
func RecordOperation(operation, source, status string, duration float64) {
	if !enabled.Load() {
		return
	}
	OperationsTotal.WithLabelValues(operation, source, status).Inc()
	OperationDuration.WithLabelValues(operation, source).Observe(duration)
}

// RecordError records a failure of the given type.
func RecordError(operation, errorType string) {
	if !enabled.Load() {
		return
	}
	ErrorsTotal.WithLabelValues(operation, errorType).Inc()
}

// CollectOnce refreshes the process gauges.
func CollectOnce() {
	if !enabled.Load() {
		return
	}
	Goroutines.Set(float64(runtime.NumGoroutine()))

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	MemoryAllocBytes.Set(float64(mem.Alloc))
}

// WriteTextfile refreshes the process gauges and writes every registered
// metric to path in the Prometheus text format, for the node exporter
// textfile collector.
func WriteTextfile(path string) error {
	CollectOnce()
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("metrics: write %s: %w", path, err)
	}
	return nil
}

// Enable enables metrics collection.
func Enable() {
	enabled.Store(true)
}

// Disable disables metrics collection.
func Disable() {
	enabled.Store(false)
}

// IsEnabled returns whether metrics collection is currently enabled.
func IsEnabled() bool {
	return enabled.Load()
}
