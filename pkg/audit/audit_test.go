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

package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryEmitter(t *testing.T) {
	ctx := context.Background()

	t.Run("records events in order", func(t *testing.T) {
		emitter := NewMemoryEmitter()

		emitter.Emit(ctx, &Event{Type: EventCertIssued, Resource: "cert-1"})
		emitter.Emit(ctx, &Event{Type: EventCertRevoked, Resource: "cert-1"})

		events := emitter.Events()
		require.Len(t, events, 2)
		assert.Equal(t, EventCertIssued, events[0].Type)
		assert.Equal(t, EventCertRevoked, events[1].Type)
	})

	t.Run("assigns id and timestamp when unset", func(t *testing.T) {
		emitter := NewMemoryEmitter()
		emitter.Emit(ctx, &Event{Type: EventCertIssued})

		event := emitter.Events()[0]
		assert.NotEmpty(t, event.ID)
		assert.False(t, event.Timestamp.IsZero())
	})

	t.Run("preserves a caller-supplied id", func(t *testing.T) {
		emitter := NewMemoryEmitter()
		emitter.Emit(ctx, &Event{ID: "fixed-id", Type: EventCertIssued})

		assert.Equal(t, "fixed-id", emitter.Events()[0].ID)
	})

	t.Run("filters by type", func(t *testing.T) {
		emitter := NewMemoryEmitter()
		emitter.Emit(ctx, &Event{Type: EventRoleGranted, Resource: "bob"})
		emitter.Emit(ctx, &Event{Type: EventCertIssued, Resource: "cert-1"})
		emitter.Emit(ctx, &Event{Type: EventRoleGranted, Resource: "carol"})

		granted := emitter.EventsByType(EventRoleGranted)
		require.Len(t, granted, 2)
		assert.Equal(t, "bob", granted[0].Resource)
		assert.Equal(t, "carol", granted[1].Resource)

		assert.Empty(t, emitter.EventsByType(EventSchemaUpgraded))
	})

	t.Run("ignores nil events", func(t *testing.T) {
		emitter := NewMemoryEmitter()
		emitter.Emit(ctx, nil)
		assert.Empty(t, emitter.Events())
	})

	t.Run("reset discards everything", func(t *testing.T) {
		emitter := NewMemoryEmitter()
		emitter.Emit(ctx, &Event{Type: EventCertIssued})

		emitter.Reset()
		assert.Empty(t, emitter.Events())
	})
}

func TestNopEmitter(t *testing.T) {
	// Must accept anything without panicking.
	NopEmitter{}.Emit(context.Background(), nil)
	NopEmitter{}.Emit(context.Background(), &Event{Type: EventCertIssued})
}
