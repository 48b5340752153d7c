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

package accesscontrol

import "errors"

var (
	// ErrUnauthorized is returned when the authorization gate fails.
	// It is checked before any storage mutation.
	ErrUnauthorized = errors.New("accesscontrol: unauthorized")

	// ErrInvalidRole is returned when a role is outside the vocabulary.
	ErrInvalidRole = errors.New("accesscontrol: invalid role")

	// ErrRoleAlreadyExists is returned when creating a role definition that
	// already exists.
	ErrRoleAlreadyExists = errors.New("accesscontrol: role already exists")

	// ErrRoleNotFound is returned when a role definition does not exist.
	ErrRoleNotFound = errors.New("accesscontrol: role not found")

	// ErrStoreRequired is returned when a role store is required but nil.
	ErrStoreRequired = errors.New("accesscontrol: role store is required")

	// ErrAuthenticatorRequired is returned when an authenticator is
	// required but nil.
	ErrAuthenticatorRequired = errors.New("accesscontrol: authenticator is required")
)
