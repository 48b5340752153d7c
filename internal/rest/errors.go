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
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/jeremyhahn/go-certregistry/pkg/accesscontrol"
	"github.com/jeremyhahn/go-certregistry/pkg/registry"
	"github.com/jeremyhahn/go-certregistry/pkg/storage"
)

// Common errors
var (
	ErrInvalidRequest   = errors.New("invalid request")
	ErrMissingCertID    = errors.New("missing cert_id")
	ErrMissingSubject   = errors.New("missing subject")
	ErrMissingPrincipal = errors.New("missing caller principal")
	ErrInternalError    = errors.New("internal server error")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
)

// writeError writes an error response to the client.
func writeError(w http.ResponseWriter, err error, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := ErrorResponse{
		Error: err.Error(),
		Code:  statusCode,
	}

	if encErr := json.NewEncoder(w).Encode(resp); encErr != nil {
		log.Printf("Failed to encode error response: %v", encErr)
	}
}

// writeErrorWithMessage writes an error response with a custom message.
func writeErrorWithMessage(w http.ResponseWriter, err error, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := ErrorResponse{
		Error:   err.Error(),
		Message: message,
		Code:    statusCode,
	}

	if encErr := json.NewEncoder(w).Encode(resp); encErr != nil {
		log.Printf("Failed to encode error response: %v", encErr)
	}
}

// mapErrorToStatusCode maps registry and access-control errors to HTTP
// status codes.
func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, registry.ErrCertificateNotFound),
		errors.Is(err, registry.ErrAuthorityNotFound),
		errors.Is(err, accesscontrol.ErrRoleNotFound),
		errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, registry.ErrCertificateAlreadyExists),
		errors.Is(err, registry.ErrAuthorityAlreadyExists),
		errors.Is(err, registry.ErrAlreadyInitialized),
		errors.Is(err, registry.ErrNotInitialized),
		errors.Is(err, registry.ErrCertificateRevoked),
		errors.Is(err, accesscontrol.ErrRoleAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, registry.ErrInvalidParameter),
		errors.Is(err, registry.ErrInvalidMetadata),
		errors.Is(err, registry.ErrInvalidSignature),
		errors.Is(err, registry.ErrCertificateExpired),
		errors.Is(err, accesscontrol.ErrInvalidRole),
		errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ErrMissingCertID),
		errors.Is(err, ErrMissingSubject):
		return http.StatusBadRequest
	case errors.Is(err, accesscontrol.ErrUnauthorized),
		errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrMissingPrincipal):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// handleError is a convenience function that maps the error to a status code
// and writes the error response.
func handleError(w http.ResponseWriter, err error) {
	statusCode := mapErrorToStatusCode(err)
	writeError(w, err, statusCode)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON response: %v", err)
	}
}
