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

// Package accesscontrol provides role-based access control for the
// certificate registry.
//
// Roles are assigned per principal as a set. The Admin role subsumes every
// narrower role: a principal holding Admin passes any capability gate without
// holding the specific role. Authorization is always checked before any
// state mutation.
package accesscontrol

import (
	"context"
)

// Role is a named capability in the registry's role vocabulary.
type Role string

const (
	// RoleAdmin has full access, including role and authority management.
	// Admin implicitly satisfies every narrower role check.
	RoleAdmin Role = "admin"
	// RoleIssuer can issue certificates and update their status and metadata.
	RoleIssuer Role = "issuer"
	// RoleVerifier can run verification flows that require a capability.
	RoleVerifier Role = "verifier"
	// RoleRevoker can revoke certificates.
	RoleRevoker Role = "revoker"
	// RoleAuthorityManager can add and update certification authorities.
	RoleAuthorityManager Role = "authority_manager"
)

// Valid reports whether the role is part of the registry vocabulary.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleIssuer, RoleVerifier, RoleRevoker, RoleAuthorityManager:
		return true
	}
	return false
}

// RoleStore is the persistence interface for role assignments. It is a local
// interface so this package works with any compatible store without a direct
// dependency; *registry.Store satisfies it.
type RoleStore interface {
	// Admin returns the administrator principal.
	// Returns an error satisfying errors.Is(err, storage.ErrNotFound)
	// semantics of the implementing store when no admin is recorded.
	Admin() (string, error)

	// HasAdmin reports whether an administrator has been recorded.
	HasAdmin() (bool, error)

	// Roles returns the role set for a subject, empty if none.
	Roles(subject string) ([]Role, error)

	// SetRoles replaces the role set for a subject.
	SetRoles(subject string, roles []Role) error

	// DeleteRoles removes the subject's role entry entirely.
	DeleteRoles(subject string) error
}

// Authenticator proves that a caller is the principal it claims to be.
// Role possession is checked against stored state; authentication is a
// separate proof-of-identity step. Both must pass for a gated operation.
type Authenticator interface {
	// Authenticate verifies the caller's proof of identity for the given
	// subject. Returns ErrUnauthorized if the proof does not hold.
	Authenticate(ctx context.Context, subject string) error
}

// AuthenticatorFunc adapts a function to the Authenticator interface.
type AuthenticatorFunc func(ctx context.Context, subject string) error

// Authenticate calls f(ctx, subject).
func (f AuthenticatorFunc) Authenticate(ctx context.Context, subject string) error {
	return f(ctx, subject)
}

// EventSink receives role assignment changes. Notifications are
// fire-and-forget; implementations must not block.
type EventSink interface {
	// RoleGranted is called after a role has been persisted for a subject.
	RoleGranted(ctx context.Context, subject string, role Role, grantedBy string)

	// RoleRevoked is called after a role has been removed from a subject.
	RoleRevoked(ctx context.Context, subject string, role Role, revokedBy string)
}

// AccessControl evaluates and mutates role assignments.
// All methods are safe for concurrent use if the underlying store is.
type AccessControl struct {
	store RoleStore
	authn Authenticator
	sink  EventSink
}

// Option configures an AccessControl instance.
type Option func(*AccessControl)

// WithEventSink wires an event sink for role changes.
func WithEventSink(sink EventSink) Option {
	return func(ac *AccessControl) {
		ac.sink = sink
	}
}

// New creates an AccessControl over the given role store and authenticator.
func New(store RoleStore, authn Authenticator, opts ...Option) (*AccessControl, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if authn == nil {
		return nil, ErrAuthenticatorRequired
	}

	ac := &AccessControl{store: store, authn: authn}
	for _, opt := range opts {
		opt(ac)
	}
	return ac, nil
}

// HasRole reports whether the subject's role set contains the role.
// Read-only predicate, no authorization required.
func (ac *AccessControl) HasRole(subject string, role Role) (bool, error) {
	roles, err := ac.store.Roles(subject)
	if err != nil {
		return false, err
	}
	for _, r := range roles {
		if r == role {
			return true, nil
		}
	}
	return false, nil
}

// GetRoles returns the subject's role set, empty if the subject has no entry.
func (ac *AccessControl) GetRoles(subject string) ([]Role, error) {
	return ac.store.Roles(subject)
}

// GrantRole appends a role to the subject's set. Only the recorded
// administrator may grant roles, and must authenticate as itself.
// Granting an already-held role succeeds silently.
func (ac *AccessControl) GrantRole(ctx context.Context, caller, subject string, role Role) error {
	if !role.Valid() {
		return ErrInvalidRole
	}

	admin, err := ac.requireStoredAdmin(ctx, caller)
	if err != nil {
		return err
	}

	roles, err := ac.store.Roles(subject)
	if err != nil {
		return err
	}
	for _, r := range roles {
		if r == role {
			// Idempotent: already held, no write, no event.
			return nil
		}
	}

	if err := ac.store.SetRoles(subject, append(roles, role)); err != nil {
		return err
	}

	if ac.sink != nil {
		ac.sink.RoleGranted(ctx, subject, role, admin)
	}
	return nil
}

// RevokeRole removes a role from the subject's set. Only the recorded
// administrator may revoke roles. Revoking from a subject with no roles, or
// a role the subject does not hold, succeeds silently with no event. When
// the resulting set is empty the subject's entry is deleted entirely.
func (ac *AccessControl) RevokeRole(ctx context.Context, caller, subject string, role Role) error {
	admin, err := ac.requireStoredAdmin(ctx, caller)
	if err != nil {
		return err
	}

	roles, err := ac.store.Roles(subject)
	if err != nil {
		return err
	}
	if len(roles) == 0 {
		return nil
	}

	remaining := make([]Role, 0, len(roles))
	found := false
	for _, r := range roles {
		if r == role {
			found = true
			continue
		}
		remaining = append(remaining, r)
	}
	if !found {
		return nil
	}

	if len(remaining) == 0 {
		// No orphan empty sets.
		if err := ac.store.DeleteRoles(subject); err != nil {
			return err
		}
	} else {
		if err := ac.store.SetRoles(subject, remaining); err != nil {
			return err
		}
	}

	if ac.sink != nil {
		ac.sink.RoleRevoked(ctx, subject, role, admin)
	}
	return nil
}

// RequireRole fails with ErrUnauthorized unless the caller holds the role,
// then additionally requires the caller to authenticate as itself. The two
// checks are independent and both must pass.
func (ac *AccessControl) RequireRole(ctx context.Context, caller string, role Role) error {
	held, err := ac.HasRole(caller, role)
	if err != nil {
		return err
	}
	if !held {
		return ErrUnauthorized
	}
	return ac.authn.Authenticate(ctx, caller)
}

// RequireAdmin requires the caller to hold the Admin role and authenticate.
func (ac *AccessControl) RequireAdmin(ctx context.Context, caller string) error {
	return ac.RequireRole(ctx, caller, RoleAdmin)
}

// RequireIssuer requires the caller to hold Issuer, or Admin.
func (ac *AccessControl) RequireIssuer(ctx context.Context, caller string) error {
	return ac.requireWithAdminOverride(ctx, caller, RoleIssuer)
}

// RequireRevoker requires the caller to hold Revoker, or Admin.
func (ac *AccessControl) RequireRevoker(ctx context.Context, caller string) error {
	return ac.requireWithAdminOverride(ctx, caller, RoleRevoker)
}

// RequireAuthorityManager requires the caller to hold AuthorityManager,
// or Admin.
func (ac *AccessControl) RequireAuthorityManager(ctx context.Context, caller string) error {
	return ac.requireWithAdminOverride(ctx, caller, RoleAuthorityManager)
}

// requireWithAdminOverride implements the admin-implies-all rule: a caller
// holding Admin passes any narrower gate after authenticating. A single
// superuser role must never be locked out of a capability-gated path.
func (ac *AccessControl) requireWithAdminOverride(ctx context.Context, caller string, role Role) error {
	isAdmin, err := ac.HasRole(caller, RoleAdmin)
	if err != nil {
		return err
	}
	if isAdmin {
		return ac.authn.Authenticate(ctx, caller)
	}
	return ac.RequireRole(ctx, caller, role)
}

// requireStoredAdmin verifies the caller is the recorded administrator and
// authenticates it. Returns the admin subject for event attribution.
func (ac *AccessControl) requireStoredAdmin(ctx context.Context, caller string) (string, error) {
	has, err := ac.store.HasAdmin()
	if err != nil {
		return "", err
	}
	if !has {
		return "", ErrUnauthorized
	}

	admin, err := ac.store.Admin()
	if err != nil {
		return "", err
	}
	if caller != admin {
		return "", ErrUnauthorized
	}

	if err := ac.authn.Authenticate(ctx, caller); err != nil {
		return "", err
	}
	return admin, nil
}
