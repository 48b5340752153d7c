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
	"time"

	"github.com/google/uuid"

	"github.com/jeremyhahn/go-certregistry/pkg/logging"
)

// LoggerEmitter writes events to a structured logger.
type LoggerEmitter struct {
	logger *logging.Logger
}

// NewLoggerEmitter creates an emitter that logs each event.
func NewLoggerEmitter(logger *logging.Logger) *LoggerEmitter {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &LoggerEmitter{logger: logger}
}

// Emit logs the event at info level.
func (l *LoggerEmitter) Emit(ctx context.Context, event *Event) {
	if event == nil {
		return
	}

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	args := []any{
		"event_id", event.ID,
		"event_type", string(event.Type),
		"principal", event.Principal,
		"resource", event.Resource,
	}
	for k, v := range event.Fields {
		args = append(args, k, v)
	}

	l.logger.Info("registry event", args...)
}
