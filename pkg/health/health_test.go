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

package health

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthyCheck(name string) CheckFunc {
	return func(ctx context.Context) CheckResult {
		return CheckResult{Name: name, Status: StatusHealthy}
	}
}

func unhealthyCheck(name string) CheckFunc {
	return func(ctx context.Context) CheckResult {
		return CheckResult{Name: name, Status: StatusUnhealthy, Error: "down"}
	}
}

func TestChecker_Live(t *testing.T) {
	checker := NewChecker()
	result := checker.Live(context.Background())
	assert.Equal(t, StatusHealthy, result.Status)
}

func TestChecker_Ready(t *testing.T) {
	ctx := context.Background()

	t.Run("no checks reports healthy default", func(t *testing.T) {
		checker := NewChecker()

		results := checker.Ready(ctx)
		require.Len(t, results, 1)
		assert.Equal(t, StatusHealthy, results[0].Status)
		assert.Equal(t, "default", results[0].Name)
	})

	t.Run("runs every registered check", func(t *testing.T) {
		checker := NewChecker()
		checker.RegisterCheck("storage", healthyCheck("storage"))
		checker.RegisterCheck("broker", unhealthyCheck("broker"))

		results := checker.Ready(ctx)
		assert.Len(t, results, 2)
		assert.Equal(t, StatusUnhealthy, AggregateStatus(results))
	})

	t.Run("unregistered checks stop running", func(t *testing.T) {
		checker := NewChecker()
		checker.RegisterCheck("storage", unhealthyCheck("storage"))
		checker.UnregisterCheck("storage")

		results := checker.Ready(ctx)
		assert.Equal(t, StatusHealthy, AggregateStatus(results))
	})

	t.Run("fills in the registered name when the result omits it", func(t *testing.T) {
		checker := NewChecker()
		checker.RegisterCheck("storage", func(ctx context.Context) CheckResult {
			return CheckResult{Status: StatusHealthy}
		})

		results := checker.Ready(ctx)
		require.Len(t, results, 1)
		assert.Equal(t, "storage", results[0].Name)
	})
}

func TestChecker_Startup(t *testing.T) {
	ctx := context.Background()
	checker := NewChecker()

	result := checker.Startup(ctx)
	assert.Equal(t, StatusUnhealthy, result.Status)

	checker.MarkStarted()
	result = checker.Startup(ctx)
	assert.Equal(t, StatusHealthy, result.Status)

	checker.MarkNotStarted()
	result = checker.Startup(ctx)
	assert.Equal(t, StatusUnhealthy, result.Status)
}

func TestAggregateStatus(t *testing.T) {
	assert.Equal(t, StatusHealthy, AggregateStatus(nil))

	assert.Equal(t, StatusHealthy, AggregateStatus([]CheckResult{
		{Status: StatusHealthy},
		{Status: StatusHealthy},
	}))

	assert.Equal(t, StatusDegraded, AggregateStatus([]CheckResult{
		{Status: StatusHealthy},
		{Status: StatusDegraded},
	}))

	assert.Equal(t, StatusUnhealthy, AggregateStatus([]CheckResult{
		{Status: StatusDegraded},
		{Status: StatusUnhealthy},
		{Status: StatusHealthy},
	}))
}
