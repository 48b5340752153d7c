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
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jeremyhahn/go-certregistry/pkg/accesscontrol"
	"github.com/jeremyhahn/go-certregistry/pkg/health"
	"github.com/jeremyhahn/go-certregistry/pkg/metrics"
	"github.com/jeremyhahn/go-certregistry/pkg/registry"
)

// HandlerContext holds dependencies for REST handlers.
type HandlerContext struct {
	// Registry is the certificate registry service
	Registry *registry.Registry
	// Version is the API version
	Version string
	// HealthChecker manages health check probes
	HealthChecker HealthChecker
}

// HealthChecker defines the interface for health checking.
type HealthChecker interface {
	Live(ctx context.Context) health.CheckResult
	Ready(ctx context.Context) []health.CheckResult
	Startup(ctx context.Context) health.CheckResult
}

// NewHandlerContext creates a new handler context.
func NewHandlerContext(reg *registry.Registry, version string) *HandlerContext {
	return &HandlerContext{
		Registry: reg,
		Version:  version,
	}
}

// SetHealthChecker sets the health checker for the handler context.
func (h *HandlerContext) SetHealthChecker(checker HealthChecker) {
	h.HealthChecker = checker
}

// HealthHandler handles GET /health requests.
func (h *HandlerContext) HealthHandler(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "healthy",
		Version: h.Version,
	}
	writeJSON(w, resp, http.StatusOK)
}

// requirePrincipal extracts the caller identity from the request context,
// writing a 401 response if none was resolved.
func requirePrincipal(w http.ResponseWriter, r *http.Request) (string, bool) {
	principal := GetPrincipal(r.Context())
	if principal == "" {
		writeErrorWithMessage(w, ErrMissingPrincipal,
			"A caller identity is required for this operation", http.StatusUnauthorized)
		return "", false
	}
	return principal, true
}

// InitializeHandler handles POST /api/v1/registry/init requests.
func (h *HandlerContext) InitializeHandler(w http.ResponseWriter, r *http.Request) {
	var req InitializeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, ErrInvalidRequest, http.StatusBadRequest)
		return
	}
	if req.Authority == "" {
		writeError(w, ErrMissingSubject, http.StatusBadRequest)
		return
	}

	start := time.Now()
	err := h.Registry.Initialize(r.Context(), req.Authority)
	metrics.RecordOperation(metrics.OpInitialize, err)
	metrics.ObserveOperation(metrics.OpInitialize, start)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, SuccessResponse{Success: true, Message: "registry initialized"}, http.StatusCreated)
}

// IssueCertificateHandler handles POST /api/v1/certificates requests.
func (h *HandlerContext) IssueCertificateHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req IssueCertificateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, ErrInvalidRequest, http.StatusBadRequest)
		return
	}
	if req.CertID == "" {
		writeError(w, ErrMissingCertID, http.StatusBadRequest)
		return
	}

	start := time.Now()
	record, err := h.Registry.IssueCertificate(r.Context(), principal,
		req.CertID, req.Owner, req.Metadata, req.Signature,
		registry.CertificateType(req.Type), req.ExpirationDate)
	metrics.RecordOperation(metrics.OpIssue, err)
	metrics.ObserveOperation(metrics.OpIssue, start)
	if err != nil {
		handleError(w, err)
		return
	}
	metrics.CertificatesIssued.Inc()

	writeJSON(w, CertificateResponse{CertID: req.CertID, Certificate: record}, http.StatusCreated)
}

// BatchIssueHandler handles POST /api/v1/certificates/batch requests.
//
// The batch is not transactional: items issued before or after a failing
// item remain issued, and the failing ids come back in the response.
func (h *HandlerContext) BatchIssueHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req BatchIssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, ErrInvalidRequest, http.StatusBadRequest)
		return
	}

	certTypes := make([]registry.CertificateType, len(req.Types))
	for i, t := range req.Types {
		certTypes[i] = registry.CertificateType(t)
	}

	start := time.Now()
	failed, err := h.Registry.BatchIssueCertificates(r.Context(), principal,
		req.CertIDs, req.Owners, req.Metadatas, req.Signatures,
		certTypes, req.ExpirationDates)
	metrics.RecordOperation(metrics.OpBatchIssue, err)
	metrics.ObserveOperation(metrics.OpBatchIssue, start)
	if err != nil {
		handleError(w, err)
		return
	}
	metrics.BatchItemsFailed.Add(float64(len(failed)))

	writeJSON(w, BatchIssueResponse{
		Requested: len(req.CertIDs),
		Issued:    len(req.CertIDs) - len(failed),
		Failed:    failed,
	}, http.StatusOK)
}

// GetCertificateHandler handles GET /api/v1/certificates/{id} requests.
func (h *HandlerContext) GetCertificateHandler(w http.ResponseWriter, r *http.Request) {
	certID := chi.URLParam(r, "id")
	if certID == "" {
		writeError(w, ErrMissingCertID, http.StatusBadRequest)
		return
	}

	record, err := h.Registry.GetCertificate(certID)
	metrics.RecordOperation(metrics.OpGet, err)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, CertificateResponse{CertID: certID, Certificate: record}, http.StatusOK)
}

// ListCertificatesHandler handles GET /api/v1/certificates requests.
//
// With an owner query parameter the listing is public and filtered to that
// owner. Without one the full registry listing is returned, which requires
// the caller to hold Admin.
func (h *HandlerContext) ListCertificatesHandler(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")

	var (
		ids []string
		err error
	)
	if owner != "" {
		ids, err = h.Registry.ListCertificatesByOwner(owner)
	} else {
		principal, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		ids, err = h.Registry.ListAllCertificates(r.Context(), principal)
	}
	metrics.RecordOperation(metrics.OpList, err)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, ListCertificatesResponse{CertIDs: ids}, http.StatusOK)
}

// UpdateStatusHandler handles PUT /api/v1/certificates/{id}/status requests.
func (h *HandlerContext) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	certID := chi.URLParam(r, "id")
	if certID == "" {
		writeError(w, ErrMissingCertID, http.StatusBadRequest)
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, ErrInvalidRequest, http.StatusBadRequest)
		return
	}

	start := time.Now()
	err := h.Registry.UpdateCertificateStatus(r.Context(), principal, certID,
		registry.CertificateStatus(req.Status), req.Reason)
	metrics.RecordOperation(metrics.OpUpdateStatus, err)
	metrics.ObserveOperation(metrics.OpUpdateStatus, start)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, SuccessResponse{Success: true}, http.StatusOK)
}

// UpdateMetadataHandler handles PUT /api/v1/certificates/{id}/metadata requests.
func (h *HandlerContext) UpdateMetadataHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	certID := chi.URLParam(r, "id")
	if certID == "" {
		writeError(w, ErrMissingCertID, http.StatusBadRequest)
		return
	}

	var req UpdateMetadataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, ErrInvalidRequest, http.StatusBadRequest)
		return
	}

	start := time.Now()
	err := h.Registry.UpdateCertificateMetadata(r.Context(), principal, certID,
		req.Metadata, req.Signature)
	metrics.RecordOperation(metrics.OpUpdateMetadata, err)
	metrics.ObserveOperation(metrics.OpUpdateMetadata, start)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, SuccessResponse{Success: true}, http.StatusOK)
}

// RevokeCertificateHandler handles POST /api/v1/certificates/{id}/revoke requests.
func (h *HandlerContext) RevokeCertificateHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	certID := chi.URLParam(r, "id")
	if certID == "" {
		writeError(w, ErrMissingCertID, http.StatusBadRequest)
		return
	}

	var req RevokeCertificateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, ErrInvalidRequest, http.StatusBadRequest)
		return
	}

	start := time.Now()
	err := h.Registry.RevokeCertificate(r.Context(), principal, certID, req.Reason)
	metrics.RecordOperation(metrics.OpRevoke, err)
	metrics.ObserveOperation(metrics.OpRevoke, start)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, SuccessResponse{Success: true}, http.StatusOK)
}

// VerifyCertificateHandler handles POST /api/v1/certificates/{id}/verify requests.
//
// Verification is a public read. A certificate that does not exist yields a
// 200 response with every verdict field false, not a 404.
func (h *HandlerContext) VerifyCertificateHandler(w http.ResponseWriter, r *http.Request) {
	certID := chi.URLParam(r, "id")
	if certID == "" {
		writeError(w, ErrMissingCertID, http.StatusBadRequest)
		return
	}

	var req VerifyCertificateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, ErrInvalidRequest, http.StatusBadRequest)
		return
	}

	start := time.Now()
	result, err := h.Registry.VerifyCertificate(certID, req.ExpectedHash,
		req.Message, req.Signature, req.PublicKey)
	metrics.RecordOperation(metrics.OpVerify, err)
	metrics.ObserveOperation(metrics.OpVerify, start)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, result, http.StatusOK)
}

// AddAuthorityHandler handles POST /api/v1/authorities requests.
func (h *HandlerContext) AddAuthorityHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req AuthorityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, ErrInvalidRequest, http.StatusBadRequest)
		return
	}

	err := h.Registry.AddAuthority(r.Context(), principal, &registry.CertificationAuthority{
		Name:            req.Name,
		Subject:         req.Subject,
		VerificationKey: req.VerificationKey,
		Active:          req.Active,
	})
	metrics.RecordOperation(metrics.OpAddAuthority, err)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, SuccessResponse{Success: true}, http.StatusCreated)
}

// UpdateAuthorityHandler handles PUT /api/v1/authorities/{subject} requests.
func (h *HandlerContext) UpdateAuthorityHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	subject := chi.URLParam(r, "subject")
	if subject == "" {
		writeError(w, ErrMissingSubject, http.StatusBadRequest)
		return
	}

	var req AuthorityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, ErrInvalidRequest, http.StatusBadRequest)
		return
	}

	err := h.Registry.UpdateAuthority(r.Context(), principal, &registry.CertificationAuthority{
		Name:            req.Name,
		Subject:         subject,
		VerificationKey: req.VerificationKey,
		Active:          req.Active,
	})
	metrics.RecordOperation(metrics.OpUpdateAuth, err)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, SuccessResponse{Success: true}, http.StatusOK)
}

// GetAuthorityHandler handles GET /api/v1/authorities/{subject} requests.
func (h *HandlerContext) GetAuthorityHandler(w http.ResponseWriter, r *http.Request) {
	subject := chi.URLParam(r, "subject")
	if subject == "" {
		writeError(w, ErrMissingSubject, http.StatusBadRequest)
		return
	}

	authority, err := h.Registry.GetAuthority(subject)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, authority, http.StatusOK)
}

// GrantRoleHandler handles POST /api/v1/roles/grant requests.
func (h *HandlerContext) GrantRoleHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req RoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, ErrInvalidRequest, http.StatusBadRequest)
		return
	}
	if req.Subject == "" {
		writeError(w, ErrMissingSubject, http.StatusBadRequest)
		return
	}

	err := h.Registry.Access().GrantRole(r.Context(), principal, req.Subject,
		accesscontrol.Role(req.Role))
	metrics.RecordOperation(metrics.OpGrantRole, err)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, SuccessResponse{Success: true}, http.StatusOK)
}

// RevokeRoleHandler handles POST /api/v1/roles/revoke requests.
func (h *HandlerContext) RevokeRoleHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req RoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, ErrInvalidRequest, http.StatusBadRequest)
		return
	}
	if req.Subject == "" {
		writeError(w, ErrMissingSubject, http.StatusBadRequest)
		return
	}

	err := h.Registry.Access().RevokeRole(r.Context(), principal, req.Subject,
		accesscontrol.Role(req.Role))
	metrics.RecordOperation(metrics.OpRevokeRole, err)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, SuccessResponse{Success: true}, http.StatusOK)
}

// GetRolesHandler handles GET /api/v1/roles/{subject} requests.
func (h *HandlerContext) GetRolesHandler(w http.ResponseWriter, r *http.Request) {
	subject := chi.URLParam(r, "subject")
	if subject == "" {
		writeError(w, ErrMissingSubject, http.StatusBadRequest)
		return
	}

	roles, err := h.Registry.Access().GetRoles(subject)
	if err != nil {
		handleError(w, err)
		return
	}

	names := make([]string, len(roles))
	for i, role := range roles {
		names[i] = string(role)
	}

	writeJSON(w, RolesResponse{Subject: subject, Roles: names}, http.StatusOK)
}

// GetSchemaHandler handles GET /api/v1/schema requests.
func (h *HandlerContext) GetSchemaHandler(w http.ResponseWriter, r *http.Request) {
	version, err := h.Registry.Store().SchemaVersion()
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, SchemaResponse{Version: version}, http.StatusOK)
}

// UpgradeSchemaHandler handles POST /api/v1/schema/upgrade requests.
func (h *HandlerContext) UpgradeSchemaHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	version, err := h.Registry.UpgradeSchema(r.Context(), principal)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, SchemaResponse{Version: version}, http.StatusOK)
}
