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

// Package audit provides the registry's event sink: fire-and-forget
// notifications of issuance, status changes, role assignment changes,
// authority changes, and schema upgrades.
//
// The core only produces events and never queries the sink back; no
// delivery guarantee is assumed.
package audit

import (
	"context"
	"time"
)

// EventType categorizes a registry event.
type EventType string

const (
	// EventCertIssued is emitted when a certificate is issued.
	EventCertIssued EventType = "cert.issued"

	// EventCertStatusChanged is emitted when a certificate's status is
	// explicitly transitioned.
	EventCertStatusChanged EventType = "cert.status_changed"

	// EventCertRevoked is emitted when a certificate is revoked through
	// the dedicated revocation path.
	EventCertRevoked EventType = "cert.revoked"

	// EventAuthorityAdded is emitted when a certification authority is
	// registered.
	EventAuthorityAdded EventType = "authority.added"

	// EventAuthorityUpdated is emitted when a certification authority is
	// updated.
	EventAuthorityUpdated EventType = "authority.updated"

	// EventRoleGranted is emitted when a role is granted to a principal.
	EventRoleGranted EventType = "role.granted"

	// EventRoleRevoked is emitted when a role is revoked from a principal.
	EventRoleRevoked EventType = "role.revoked"

	// EventSchemaUpgraded is emitted when the registry schema version is
	// bumped.
	EventSchemaUpgraded EventType = "system.schema_upgraded"
)

// Event is a single registry notification.
type Event struct {
	// ID is a unique identifier for this event.
	ID string `json:"id"`

	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// Type categorizes the event.
	Type EventType `json:"type"`

	// Principal is the authenticated caller that triggered the event.
	Principal string `json:"principal"`

	// Resource identifies what was affected (certificate id, subject, ...).
	Resource string `json:"resource"`

	// Fields carries event-specific values (old/new status, role, reason).
	Fields map[string]any `json:"fields,omitempty"`
}

// Emitter publishes registry events. Publication is fire-and-forget:
// implementations must not block and the caller ignores delivery outcome.
type Emitter interface {
	Emit(ctx context.Context, event *Event)
}

// NopEmitter discards all events.
type NopEmitter struct{}

// Emit discards the event.
func (NopEmitter) Emit(ctx context.Context, event *Event) {}
