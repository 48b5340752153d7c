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

package registry

import "errors"

// Registry lifecycle errors
var (
	// ErrAlreadyInitialized is returned when Initialize is called and an
	// administrator is already recorded.
	ErrAlreadyInitialized = errors.New("registry: already initialized")

	// ErrNotInitialized is returned when an operation requires an
	// initialized registry and no administrator is recorded.
	ErrNotInitialized = errors.New("registry: not initialized")
)

// Certificate errors
var (
	// ErrCertificateAlreadyExists is returned when issuing with an occupied
	// certificate id.
	ErrCertificateAlreadyExists = errors.New("registry: certificate already exists")

	// ErrCertificateNotFound is returned when no record exists for a
	// certificate id.
	ErrCertificateNotFound = errors.New("registry: certificate not found")

	// ErrCertificateExpired is returned when an operation requires an
	// unexpired certificate.
	ErrCertificateExpired = errors.New("registry: certificate expired")

	// ErrCertificateRevoked is returned when an operation requires a
	// non-revoked certificate.
	ErrCertificateRevoked = errors.New("registry: certificate revoked")

	// ErrCertificateSuspended is returned when an operation requires a
	// non-suspended certificate.
	ErrCertificateSuspended = errors.New("registry: certificate suspended")
)

// Authority errors
var (
	// ErrAuthorityAlreadyExists is returned when adding an authority whose
	// subject is already registered.
	ErrAuthorityAlreadyExists = errors.New("registry: authority already exists")

	// ErrAuthorityNotFound is returned when no authority is registered for
	// a subject.
	ErrAuthorityNotFound = errors.New("registry: authority not found")

	// ErrAuthorityInactive is returned when an operation requires an active
	// authority.
	ErrAuthorityInactive = errors.New("registry: authority inactive")
)

// Validation errors
var (
	// ErrInvalidSignature is returned when a signature fails validation or
	// has the wrong length.
	ErrInvalidSignature = errors.New("registry: invalid signature")

	// ErrInvalidMetadata is returned for empty metadata and for batch
	// issuance input arrays of mismatched lengths.
	ErrInvalidMetadata = errors.New("registry: invalid metadata")

	// ErrInvalidParameter is returned when a request parameter is malformed.
	ErrInvalidParameter = errors.New("registry: invalid parameter")

	// ErrBatchOperationFailed is reserved for a future hard-fail batch mode.
	// The current batch contract reports per-item failures instead.
	ErrBatchOperationFailed = errors.New("registry: batch operation failed")
)
