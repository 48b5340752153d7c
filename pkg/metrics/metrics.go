// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-certregistry.
//
// go-certregistry is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package metrics provides Prometheus instrumentation for registry
// operations. It exposes operation counters, latency histograms, and HTTP
// request metrics for monitoring registry health and performance.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace is the Prometheus namespace for all registry metrics
	Namespace = "certregistry"

	// Label names
	LabelOperation  = "operation"
	LabelStatus     = "status"
	LabelMethod     = "method"
	LabelPath       = "path"
	LabelStatusCode = "status_code"

	// Status values
	StatusSuccess = "success"
	StatusError   = "error"

	// Operation names
	OpInitialize     = "initialize"
	OpIssue          = "issue"
	OpBatchIssue     = "batch_issue"
	OpUpdateStatus   = "update_status"
	OpUpdateMetadata = "update_metadata"
	OpRevoke         = "revoke"
	OpVerify         = "verify"
	OpGet            = "get"
	OpList           = "list"
	OpGrantRole      = "grant_role"
	OpRevokeRole     = "revoke_role"
	OpAddAuthority   = "add_authority"
	OpUpdateAuth     = "update_authority"
)

var (
	// OperationsTotal tracks the total number of registry operations by
	// type and status. Use RecordOperation to increment with labels.
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "operations_total",
			Help:      "Total number of registry operations by type and status",
		},
		[]string{LabelOperation, LabelStatus},
	)

	// OperationDuration tracks the duration of registry operations in
	// seconds.
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of registry operations in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{LabelOperation},
	)

	// CertificatesIssued counts issued certificates.
	CertificatesIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "certificates_issued_total",
			Help:      "Total number of certificates issued",
		},
	)

	// BatchItemsFailed counts per-item batch issuance failures.
	BatchItemsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "batch_items_failed_total",
			Help:      "Total number of failed items across batch issuances",
		},
	)

	// HTTPRequestsTotal tracks HTTP requests by method, path and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{LabelMethod, LabelPath, LabelStatusCode},
	)

	// HTTPRequestDuration tracks HTTP request latency in seconds.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)
)

// RecordOperation increments the operation counter with the given labels.
func RecordOperation(operation string, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	OperationsTotal.WithLabelValues(operation, status).Inc()
}

// ObserveOperation records the duration of an operation started at the
// given time.
func ObserveOperation(operation string, start time.Time) {
	OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
