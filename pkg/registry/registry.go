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
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jeremyhahn/go-certregistry/pkg/accesscontrol"
	"github.com/jeremyhahn/go-certregistry/pkg/audit"
	"github.com/jeremyhahn/go-certregistry/pkg/logging"
	"github.com/jeremyhahn/go-certregistry/pkg/verification"
)

// schemaVersion is the current registry schema version, recorded at
// initialization.
const schemaVersion = 1

// Clock supplies the current time. Injected so ledger time is a
// collaborator rather than an ambient dependency.
type Clock func() time.Time

// Registry is the certificate registry service. Every mutating operation
// passes an access-control gate before reading or writing certificate
// state, then emits an event. Each operation is synchronous and runs to a
// terminal result.
type Registry struct {
	store    *Store
	access   *accesscontrol.AccessControl
	emitter  audit.Emitter
	verifier verification.SignatureVerifier
	clock    Clock
	logger   *logging.Logger
}

// Config provides configuration for creating a Registry.
type Config struct {
	// Store provides typed registry storage. Required.
	Store *Store

	// Access provides the authorization gates. Required.
	Access *accesscontrol.AccessControl

	// Emitter receives registry events. Optional, defaults to NopEmitter.
	Emitter audit.Emitter

	// Verifier checks certificate signatures during verification.
	// Optional, defaults to Ed25519.
	Verifier verification.SignatureVerifier

	// Clock supplies timestamps. Optional, defaults to time.Now.
	Clock Clock

	// Logger is the structured logger. Optional.
	Logger *logging.Logger
}

// New creates a Registry from the given configuration.
func New(cfg *Config) (*Registry, error) {
	if cfg == nil {
		return nil, fmt.Errorf("registry: config is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("registry: store is required")
	}
	if cfg.Access == nil {
		return nil, fmt.Errorf("registry: access control is required")
	}

	r := &Registry{
		store:    cfg.Store,
		access:   cfg.Access,
		emitter:  cfg.Emitter,
		verifier: cfg.Verifier,
		clock:    cfg.Clock,
		logger:   cfg.Logger,
	}
	if r.emitter == nil {
		r.emitter = audit.NopEmitter{}
	}
	if r.verifier == nil {
		r.verifier = verification.NewEd25519Verifier()
	}
	if r.clock == nil {
		r.clock = time.Now
	}
	if r.logger == nil {
		r.logger = logging.DefaultLogger()
	}
	return r, nil
}

// Initialize records the authority as administrator and grants it the Admin
// and Issuer roles. Fails with ErrAlreadyInitialized if an administrator is
// already recorded. This is the only entry point that can run before any
// role exists.
func (r *Registry) Initialize(ctx context.Context, authority string) error {
	if !validIdentifier(authority) {
		return ErrInvalidParameter
	}

	initialized, err := r.store.HasAdmin()
	if err != nil {
		return err
	}
	if initialized {
		return ErrAlreadyInitialized
	}

	if err := r.store.SetAdmin(authority); err != nil {
		return err
	}
	if err := r.store.SetSchemaVersion(schemaVersion); err != nil {
		return err
	}

	if err := r.access.GrantRole(ctx, authority, authority, accesscontrol.RoleAdmin); err != nil {
		return err
	}
	if err := r.access.GrantRole(ctx, authority, authority, accesscontrol.RoleIssuer); err != nil {
		return err
	}

	r.logger.Info("registry initialized", "admin", authority)
	return nil
}

// IssueCertificate creates a new certificate record. Requires the caller to
// hold Issuer (admin-overridable). The issuer recorded on the certificate is
// the authenticated caller, never an input parameter.
func (r *Registry) IssueCertificate(
	ctx context.Context,
	caller string,
	certID string,
	owner string,
	metadata string,
	signature []byte,
	certType CertificateType,
	expirationDate int64) (*CertificateRecord, error) {

	if err := r.access.RequireIssuer(ctx, caller); err != nil {
		return nil, err
	}

	return r.issue(ctx, caller, certID, owner, metadata, signature, certType, expirationDate)
}

// issue performs issuance without the authorization gate. Batch issuance
// runs many items under a single authorization, so the gate lives in the
// exported entry points.
func (r *Registry) issue(
	ctx context.Context,
	caller string,
	certID string,
	owner string,
	metadata string,
	signature []byte,
	certType CertificateType,
	expirationDate int64) (*CertificateRecord, error) {

	if !validIdentifier(certID) || owner == "" {
		return nil, ErrInvalidParameter
	}
	if err := ValidateMetadata(metadata); err != nil {
		return nil, err
	}
	if !certType.Valid() {
		return nil, ErrInvalidParameter
	}
	if len(signature) != SignatureSize {
		return nil, ErrInvalidSignature
	}
	if expirationDate < 0 {
		return nil, ErrInvalidParameter
	}

	exists, err := r.store.HasCertificate(certID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrCertificateAlreadyExists
	}

	now := r.clock().Unix()
	record := &CertificateRecord{
		Owner:        owner,
		Issuer:       caller,
		MetadataHash: HashMetadata(certID, metadata),
		Metadata: CertificateMetadata{
			Title:          certID,
			Description:    metadata,
			IssueDate:      now,
			ExpirationDate: expirationDate,
			Type:           certType,
		},
		Status:      StatusActive,
		Signature:   append([]byte(nil), signature...),
		Version:     1,
		LastUpdated: now,
	}

	if err := r.store.SetCertificate(certID, record); err != nil {
		return nil, err
	}

	r.emitter.Emit(ctx, &audit.Event{
		Type:      audit.EventCertIssued,
		Principal: caller,
		Resource:  certID,
		Fields: map[string]any{
			"owner":  owner,
			"issuer": caller,
			"type":   string(certType),
		},
	})

	r.logger.Debug("certificate issued", "cert_id", certID, "owner", owner, "issuer", caller)
	return record, nil
}

// BatchIssueCertificates issues many certificates under one authorization.
// The parallel input slices must have equal lengths or the whole batch fails
// with ErrInvalidMetadata. Items are attempted in input order; a per-item
// failure is collected rather than aborting the batch, so items issued
// before and after a failure remain issued. Returns the ids that failed
// (empty means full success). This is a deliberate partial-success
// contract, not a transaction.
func (r *Registry) BatchIssueCertificates(
	ctx context.Context,
	caller string,
	certIDs []string,
	owners []string,
	metadatas []string,
	signatures [][]byte,
	certTypes []CertificateType,
	expirationDates []int64) ([]string, error) {

	if err := r.access.RequireIssuer(ctx, caller); err != nil {
		return nil, err
	}

	count := len(certIDs)
	if len(owners) != count ||
		len(metadatas) != count ||
		len(signatures) != count ||
		len(certTypes) != count ||
		len(expirationDates) != count {
		return nil, ErrInvalidMetadata
	}

	failed := make([]string, 0)
	for i := 0; i < count; i++ {
		_, err := r.issue(ctx, caller, certIDs[i], owners[i], metadatas[i],
			signatures[i], certTypes[i], expirationDates[i])
		if err != nil {
			r.logger.Warn("batch item failed",
				"cert_id", certIDs[i], "error", err.Error())
			failed = append(failed, certIDs[i])
		}
	}
	return failed, nil
}

// UpdateCertificateStatus applies an explicit status transition. Requires
// Issuer (admin-overridable). The revocation reason is recorded only when
// the new status is Revoked; for any other target status the reason is
// ignored, not cleared.
func (r *Registry) UpdateCertificateStatus(
	ctx context.Context,
	caller string,
	certID string,
	status CertificateStatus,
	reason *string) error {

	if err := r.access.RequireIssuer(ctx, caller); err != nil {
		return err
	}
	if !status.Valid() {
		return ErrInvalidParameter
	}

	record, err := r.store.Certificate(certID)
	if err != nil {
		return err
	}

	oldStatus := record.Status
	record.Status = status
	if status == StatusRevoked {
		// The field is set at the triggering transition even when the
		// supplied reason is empty.
		text := ""
		if reason != nil {
			text = *reason
		}
		record.RevocationReason = &text
	}
	record.LastUpdated = r.clock().Unix()

	if err := r.store.SetCertificate(certID, record); err != nil {
		return err
	}

	r.emitter.Emit(ctx, &audit.Event{
		Type:      audit.EventCertStatusChanged,
		Principal: caller,
		Resource:  certID,
		Fields: map[string]any{
			"old_status": string(oldStatus),
			"new_status": string(status),
		},
	})
	return nil
}

// UpdateCertificateMetadata replaces the certificate's metadata text and
// signature, recomputes the hash, and increments the version by exactly 1.
// Requires Issuer (admin-overridable). Status is untouched by this path.
func (r *Registry) UpdateCertificateMetadata(
	ctx context.Context,
	caller string,
	certID string,
	metadata string,
	signature []byte) error {

	if err := r.access.RequireIssuer(ctx, caller); err != nil {
		return err
	}
	if err := ValidateMetadata(metadata); err != nil {
		return err
	}
	if len(signature) != SignatureSize {
		return ErrInvalidSignature
	}

	record, err := r.store.Certificate(certID)
	if err != nil {
		return err
	}

	record.Metadata.Description = metadata
	record.MetadataHash = HashMetadata(certID, metadata)
	record.Signature = append([]byte(nil), signature...)
	record.Version++
	record.LastUpdated = r.clock().Unix()

	return r.store.SetCertificate(certID, record)
}

// RevokeCertificate transitions a certificate to Revoked with the given
// reason. Requires Revoker (admin-overridable). Fails with
// ErrCertificateRevoked if the certificate is already revoked.
func (r *Registry) RevokeCertificate(
	ctx context.Context,
	caller string,
	certID string,
	reason string) error {

	if err := r.access.RequireRevoker(ctx, caller); err != nil {
		return err
	}

	record, err := r.store.Certificate(certID)
	if err != nil {
		return err
	}
	if record.Status == StatusRevoked {
		return ErrCertificateRevoked
	}

	record.Status = StatusRevoked
	text := reason
	record.RevocationReason = &text
	record.LastUpdated = r.clock().Unix()

	if err := r.store.SetCertificate(certID, record); err != nil {
		return err
	}

	r.emitter.Emit(ctx, &audit.Event{
		Type:      audit.EventCertRevoked,
		Principal: caller,
		Resource:  certID,
		Fields: map[string]any{
			"reason": reason,
		},
	})
	return nil
}

// GetCertificate returns the record for a certificate id. Public read.
func (r *Registry) GetCertificate(certID string) (*CertificateRecord, error) {
	return r.store.Certificate(certID)
}

// ListCertificatesByOwner returns the ids of all certificates whose owner
// matches exactly. Public read; ids come back in storage iteration order.
func (r *Registry) ListCertificatesByOwner(owner string) ([]string, error) {
	if owner == "" {
		return nil, ErrInvalidParameter
	}

	ids, err := r.store.CertificateIDs()
	if err != nil {
		return nil, err
	}

	owned := make([]string, 0)
	for _, id := range ids {
		record, err := r.store.Certificate(id)
		if err != nil {
			return nil, err
		}
		if record.Owner == owner {
			owned = append(owned, id)
		}
	}
	return owned, nil
}

// ListAllCertificates returns every certificate id. Requires Admin.
func (r *Registry) ListAllCertificates(ctx context.Context, caller string) ([]string, error) {
	if err := r.access.RequireAdmin(ctx, caller); err != nil {
		return nil, err
	}
	return r.store.CertificateIDs()
}

// AddAuthority registers a certification authority. Requires
// AuthorityManager (admin-overridable).
func (r *Registry) AddAuthority(
	ctx context.Context,
	caller string,
	authority *CertificationAuthority) error {

	if err := r.access.RequireAuthorityManager(ctx, caller); err != nil {
		return err
	}
	if authority == nil || authority.Subject == "" || authority.Name == "" {
		return ErrInvalidParameter
	}
	if len(authority.VerificationKey) != VerificationKeySize {
		return ErrInvalidParameter
	}

	exists, err := r.store.HasAuthority(authority.Subject)
	if err != nil {
		return err
	}
	if exists {
		return ErrAuthorityAlreadyExists
	}

	if err := r.store.SetAuthority(authority); err != nil {
		return err
	}

	r.emitter.Emit(ctx, &audit.Event{
		Type:      audit.EventAuthorityAdded,
		Principal: caller,
		Resource:  authority.Subject,
		Fields: map[string]any{
			"name": authority.Name,
		},
	})
	return nil
}

// UpdateAuthority replaces a registered certification authority. Requires
// AuthorityManager (admin-overridable). Fails with ErrAuthorityNotFound if
// the subject is not registered.
func (r *Registry) UpdateAuthority(
	ctx context.Context,
	caller string,
	authority *CertificationAuthority) error {

	if err := r.access.RequireAuthorityManager(ctx, caller); err != nil {
		return err
	}
	if authority == nil || authority.Subject == "" || authority.Name == "" {
		return ErrInvalidParameter
	}
	if len(authority.VerificationKey) != VerificationKeySize {
		return ErrInvalidParameter
	}

	exists, err := r.store.HasAuthority(authority.Subject)
	if err != nil {
		return err
	}
	if !exists {
		return ErrAuthorityNotFound
	}

	if err := r.store.SetAuthority(authority); err != nil {
		return err
	}

	r.emitter.Emit(ctx, &audit.Event{
		Type:      audit.EventAuthorityUpdated,
		Principal: caller,
		Resource:  authority.Subject,
		Fields: map[string]any{
			"name":   authority.Name,
			"active": authority.Active,
		},
	})
	return nil
}

// GetAuthority returns the certification authority registered for the
// subject. Public read.
func (r *Registry) GetAuthority(subject string) (*CertificationAuthority, error) {
	return r.store.Authority(subject)
}

// UpgradeSchema bumps the registry schema version. Requires Admin. Returns
// the new version.
func (r *Registry) UpgradeSchema(ctx context.Context, caller string) (int, error) {
	if err := r.access.RequireAdmin(ctx, caller); err != nil {
		return 0, err
	}

	old, err := r.store.SchemaVersion()
	if err != nil {
		return 0, err
	}

	next := old + 1
	if err := r.store.SetSchemaVersion(next); err != nil {
		return 0, err
	}

	r.emitter.Emit(ctx, &audit.Event{
		Type:      audit.EventSchemaUpgraded,
		Principal: caller,
		Resource:  "schema",
		Fields: map[string]any{
			"old_version": old,
			"new_version": next,
		},
	})
	return next, nil
}

// VerifyCertificate composes the verification verdict for a certificate:
// hash equality, signature validity, status validity, and expiry. Public
// read, never mutates state. An absent record yields a verdict with every
// boolean false and Exists false rather than an error.
//
// The signature check runs only when a public key is supplied; a malformed
// key or signature counts as an invalid signature, not an operation
// failure.
func (r *Registry) VerifyCertificate(
	certID string,
	expectedHash string,
	message []byte,
	signature []byte,
	publicKey []byte) (*VerificationResult, error) {

	if certID == "" {
		return nil, ErrInvalidParameter
	}

	record, err := r.store.Certificate(certID)
	if err != nil {
		if errors.Is(err, ErrCertificateNotFound) {
			return NewVerificationResult(nil, expectedHash, false, r.clock()), nil
		}
		return nil, err
	}

	signatureValid := false
	if len(publicKey) > 0 {
		ok, err := r.verifier.VerifySignature(message, signature, publicKey)
		if err != nil {
			r.logger.Debug("signature check rejected input",
				"cert_id", certID, "error", err.Error())
		}
		signatureValid = ok && err == nil
	}

	return NewVerificationResult(record, expectedHash, signatureValid, r.clock()), nil
}

// Access returns the registry's access control component.
func (r *Registry) Access() *accesscontrol.AccessControl {
	return r.access
}

// Store returns the registry's typed store.
func (r *Registry) Store() *Store {
	return r.store
}
