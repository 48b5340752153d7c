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

package rest

import (
	"github.com/jeremyhahn/go-certregistry/pkg/registry"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// InitializeRequest represents a registry initialization request.
type InitializeRequest struct {
	Authority string `json:"authority"`
}

// IssueCertificateRequest represents a certificate issuance request.
// Signature is base64-encoded in transit.
type IssueCertificateRequest struct {
	CertID         string `json:"cert_id"`
	Owner          string `json:"owner"`
	Metadata       string `json:"metadata"`
	Signature      []byte `json:"signature"`
	Type           string `json:"type"`
	ExpirationDate int64  `json:"expiration_date,omitempty"`
}

// BatchIssueRequest represents a batch issuance request. The slices are
// parallel and must have equal lengths.
type BatchIssueRequest struct {
	CertIDs         []string `json:"cert_ids"`
	Owners          []string `json:"owners"`
	Metadatas       []string `json:"metadatas"`
	Signatures      [][]byte `json:"signatures"`
	Types           []string `json:"types"`
	ExpirationDates []int64  `json:"expiration_dates"`
}

// BatchIssueResponse reports the outcome of a batch issuance. Failed holds
// the ids of items that could not be issued; an empty list means every item
// succeeded.
type BatchIssueResponse struct {
	Requested int      `json:"requested"`
	Issued    int      `json:"issued"`
	Failed    []string `json:"failed"`
}

// CertificateResponse represents a certificate record.
type CertificateResponse struct {
	CertID      string                      `json:"cert_id"`
	Certificate *registry.CertificateRecord `json:"certificate"`
}

// UpdateStatusRequest represents a certificate status transition request.
// Reason is recorded only when the new status is revoked.
type UpdateStatusRequest struct {
	Status string  `json:"status"`
	Reason *string `json:"reason,omitempty"`
}

// UpdateMetadataRequest represents a certificate metadata update request.
type UpdateMetadataRequest struct {
	Metadata  string `json:"metadata"`
	Signature []byte `json:"signature"`
}

// RevokeCertificateRequest represents a certificate revocation request.
type RevokeCertificateRequest struct {
	Reason string `json:"reason"`
}

// VerifyCertificateRequest represents a verification request. Message,
// Signature and PublicKey are base64-encoded in transit; the signature
// check runs only when a public key is supplied.
type VerifyCertificateRequest struct {
	ExpectedHash string `json:"expected_hash,omitempty"`
	Message      []byte `json:"message,omitempty"`
	Signature    []byte `json:"signature,omitempty"`
	PublicKey    []byte `json:"public_key,omitempty"`
}

// ListCertificatesResponse represents the response for listing certificates.
type ListCertificatesResponse struct {
	CertIDs []string `json:"cert_ids"`
}

// AuthorityRequest represents a certification authority create or update
// request. VerificationKey is a base64-encoded Ed25519 public key.
type AuthorityRequest struct {
	Name            string `json:"name"`
	Subject         string `json:"subject"`
	VerificationKey []byte `json:"verification_key"`
	Active          bool   `json:"active"`
}

// RoleRequest represents a role grant or revoke request.
type RoleRequest struct {
	Subject string `json:"subject"`
	Role    string `json:"role"`
}

// RolesResponse represents the roles held by a subject.
type RolesResponse struct {
	Subject string   `json:"subject"`
	Roles   []string `json:"roles"`
}

// SchemaResponse represents the registry schema version.
type SchemaResponse struct {
	Version int `json:"version"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// SuccessResponse represents a generic success response.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
