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

// Package registry implements the certificate registry core: issuance,
// status transitions, versioned metadata updates, batch issuance with
// per-item failure reporting, and verification verdict assembly.
//
// Every mutating operation takes the authenticated caller as an explicit
// parameter and passes an access-control gate before touching storage.
// Read operations (Get, Verify, ListCertificatesByOwner) are publicly
// callable.
package registry

import (
	"time"
)

// SignatureSize is the required length in bytes of a certificate signature.
const SignatureSize = 64

// VerificationKeySize is the required length in bytes of an authority
// verification key.
const VerificationKeySize = 32

// CertificateType classifies a certificate.
type CertificateType string

const (
	// TypeStandard is a standard certificate.
	TypeStandard CertificateType = "standard"
	// TypeProfessional is a professional qualification.
	TypeProfessional CertificateType = "professional"
	// TypeAcademic is an academic degree.
	TypeAcademic CertificateType = "academic"
	// TypeTechnical is a technical certification.
	TypeTechnical CertificateType = "technical"
	// TypeMembership is a membership certificate.
	TypeMembership CertificateType = "membership"
	// TypeCustom is a custom certificate type.
	TypeCustom CertificateType = "custom"
)

// Valid reports whether the certificate type is a known value.
func (t CertificateType) Valid() bool {
	switch t {
	case TypeStandard, TypeProfessional, TypeAcademic, TypeTechnical, TypeMembership, TypeCustom:
		return true
	}
	return false
}

// CertificateStatus is the lifecycle state of a certificate record.
//
// Expiry is a computed property, not an eagerly-transitioned status: a record
// can be past its expiration date while its stored status still reads Active,
// until an explicit status update is applied.
type CertificateStatus string

const (
	// StatusActive indicates the certificate is active and valid.
	StatusActive CertificateStatus = "active"
	// StatusRevoked indicates the certificate has been revoked.
	StatusRevoked CertificateStatus = "revoked"
	// StatusExpired indicates the certificate has been marked expired.
	StatusExpired CertificateStatus = "expired"
	// StatusSuspended indicates the certificate is temporarily suspended.
	StatusSuspended CertificateStatus = "suspended"
)

// Valid reports whether the status is a known value.
func (s CertificateStatus) Valid() bool {
	switch s {
	case StatusActive, StatusRevoked, StatusExpired, StatusSuspended:
		return true
	}
	return false
}

// CertificationAuthority describes an authority on whose behalf
// certificates are issued.
type CertificationAuthority struct {
	// Name is the authority's display name.
	Name string `json:"name"`

	// Subject is the authority's principal identifier.
	Subject string `json:"subject"`

	// VerificationKey is the authority's 32-byte public verification key.
	VerificationKey []byte `json:"verification_key"`

	// Active indicates whether the authority may currently issue.
	Active bool `json:"active"`
}

// CertificateMetadata holds the descriptive fields of a certificate.
type CertificateMetadata struct {
	// Title is the certificate title.
	Title string `json:"title"`

	// Description is the certificate description text.
	Description string `json:"description"`

	// IssueDate is the Unix timestamp at which the certificate was issued.
	IssueDate int64 `json:"issue_date"`

	// ExpirationDate is the Unix timestamp after which the certificate is
	// expired. Zero means the certificate never expires.
	ExpirationDate int64 `json:"expiration_date"`

	// Type classifies the certificate.
	Type CertificateType `json:"type"`

	// CustomFields holds additional free-form fields.
	CustomFields map[string]string `json:"custom_fields,omitempty"`
}

// CertificateRecord is the stored unit of a certification event.
//
// A record is created only by issuance, mutated only by status and metadata
// updates, and never deleted: a terminal status transition is the only
// removal semantics, so records persist for audit.
type CertificateRecord struct {
	// Owner is the principal the certificate was issued to.
	Owner string `json:"owner"`

	// Issuer is the authenticated principal that issued the certificate.
	// It is recorded from the caller, never taken from request input.
	Issuer string `json:"issuer"`

	// MetadataHash is the hex-rendered digest of the certificate metadata.
	MetadataHash string `json:"metadata_hash"`

	// Metadata is the full certificate metadata.
	Metadata CertificateMetadata `json:"metadata"`

	// Status is the lifecycle state last applied by an explicit transition.
	Status CertificateStatus `json:"status"`

	// Signature is the 64-byte digital signature over the metadata.
	Signature []byte `json:"signature"`

	// Version starts at 1 and increments by exactly 1 on every metadata
	// update. Status-only updates never change it.
	Version int `json:"version"`

	// RevocationReason is set when the status transitions to Revoked.
	// It may be the empty string, but the pointer is non-nil iff a
	// revocation supplied it.
	RevocationReason *string `json:"revocation_reason,omitempty"`

	// LastUpdated is the Unix timestamp of the last mutation.
	LastUpdated int64 `json:"last_updated"`
}

// Expired reports whether the record is past its expiration date at the
// given instant. A zero expiration date means the certificate never expires.
func (c *CertificateRecord) Expired(now time.Time) bool {
	if c.Metadata.ExpirationDate == 0 {
		return false
	}
	return now.Unix() > c.Metadata.ExpirationDate
}

// ValidAt reports whether the record is active and unexpired at the given
// instant. The stored status field is not consulted for expiry; expiry is
// always evaluated against the clock.
func (c *CertificateRecord) ValidAt(now time.Time) bool {
	if c.Status != StatusActive {
		return false
	}
	return !c.Expired(now)
}

// VerificationResult is the composite verdict of verifying a certificate.
// The four boolean fields are independent: a caller can present a correct
// hash against a revoked certificate and sees HashValid true with IsValid
// false.
type VerificationResult struct {
	// Exists indicates whether a record was found for the certificate id.
	Exists bool `json:"exists"`

	// IsValid indicates the record is active and unexpired.
	IsValid bool `json:"is_valid"`

	// HashValid indicates the stored metadata hash equals the expected hash.
	HashValid bool `json:"hash_valid"`

	// SignatureValid is the result of the cryptographic signature check.
	SignatureValid bool `json:"signature_valid"`

	// Status echoes the record's stored status, when the record exists.
	Status CertificateStatus `json:"status,omitempty"`

	// Owner echoes the record's owner, when the record exists.
	Owner string `json:"owner,omitempty"`

	// Issuer echoes the record's issuer, when the record exists.
	Issuer string `json:"issuer,omitempty"`
}
