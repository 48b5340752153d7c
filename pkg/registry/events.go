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

	"github.com/jeremyhahn/go-certregistry/pkg/accesscontrol"
	"github.com/jeremyhahn/go-certregistry/pkg/audit"
)

// roleEventSink forwards role assignment changes from access control to the
// registry's event emitter.
type roleEventSink struct {
	emitter audit.Emitter
}

// NewRoleEventSink bridges accesscontrol role changes onto an audit emitter.
func NewRoleEventSink(emitter audit.Emitter) accesscontrol.EventSink {
	if emitter == nil {
		emitter = audit.NopEmitter{}
	}
	return &roleEventSink{emitter: emitter}
}

// RoleGranted emits a role.granted event naming the subject, the role, and
// the administrator that acted.
func (s *roleEventSink) RoleGranted(ctx context.Context, subject string, role accesscontrol.Role, grantedBy string) {
	s.emitter.Emit(ctx, &audit.Event{
		Type:      audit.EventRoleGranted,
		Principal: grantedBy,
		Resource:  subject,
		Fields: map[string]any{
			"role": string(role),
		},
	})
}

// RoleRevoked emits a role.revoked event.
func (s *roleEventSink) RoleRevoked(ctx context.Context, subject string, role accesscontrol.Role, revokedBy string) {
	s.emitter.Emit(ctx, &audit.Event{
		Type:      audit.EventRoleRevoked,
		Principal: revokedBy,
		Resource:  subject,
		Fields: map[string]any{
			"role": string(role),
		},
	})
}
