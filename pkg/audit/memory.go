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
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryEmitter records events in memory. Thread-safe; suitable for
// development and tests. Events are lost on process restart.
type MemoryEmitter struct {
	mu     sync.RWMutex
	events []*Event
}

// NewMemoryEmitter creates a new in-memory event emitter.
func NewMemoryEmitter() *MemoryEmitter {
	return &MemoryEmitter{
		events: make([]*Event, 0, 64),
	}
}

// Emit records the event, assigning an ID and timestamp if unset.
func (m *MemoryEmitter) Emit(ctx context.Context, event *Event) {
	if event == nil {
		return
	}

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	m.mu.Lock()
	m.events = append(m.events, event)
	m.mu.Unlock()
}

// Events returns a copy of all recorded events in emission order.
func (m *MemoryEmitter) Events() []*Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Event, len(m.events))
	copy(out, m.events)
	return out
}

// EventsByType returns recorded events of the given type, in emission order.
func (m *MemoryEmitter) EventsByType(eventType EventType) []*Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Event
	for _, e := range m.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// Reset discards all recorded events.
func (m *MemoryEmitter) Reset() {
	m.mu.Lock()
	m.events = m.events[:0]
	m.mu.Unlock()
}
