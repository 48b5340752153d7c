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

import (
	"time"
)

// IsCertificateExpired reports whether the record is past its expiration
// date at the given instant. Zero expiration means never expires.
func IsCertificateExpired(record *CertificateRecord, now time.Time) bool {
	return record.Expired(now)
}

// IsCertificateValid reports whether the record is active and unexpired at
// the given instant.
//
// Expiry is evaluated lazily against the clock: a record whose expiration
// date has passed is invalid here even while its stored status field still
// reads Active, until an explicit status update is applied. Verification
// reflects real time; the status field reflects the last explicit
// transition.
func IsCertificateValid(record *CertificateRecord, now time.Time) bool {
	return record.ValidAt(now)
}

// NewVerificationResult assembles the composite verification verdict for a
// record (or its absence). The hash, signature, status, and expiry checks
// are independent of one another.
func NewVerificationResult(
	record *CertificateRecord,
	expectedHash string,
	signatureValid bool,
	now time.Time) *VerificationResult {

	if record == nil {
		return &VerificationResult{}
	}

	return &VerificationResult{
		Exists:         true,
		IsValid:        IsCertificateValid(record, now),
		HashValid:      record.MetadataHash == expectedHash,
		SignatureValid: signatureValid,
		Status:         record.Status,
		Owner:          record.Owner,
		Issuer:         record.Issuer,
	}
}
