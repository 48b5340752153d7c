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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashMetadata(t *testing.T) {
	t.Run("is deterministic", func(t *testing.T) {
		assert.Equal(t,
			HashMetadata("cert-1", "metadata"),
			HashMetadata("cert-1", "metadata"))
	})

	t.Run("renders as hex sha-256", func(t *testing.T) {
		assert.Len(t, HashMetadata("cert-1", "metadata"), 64)
	})

	t.Run("binds the certificate id into the digest", func(t *testing.T) {
		assert.NotEqual(t,
			HashMetadata("cert-1", "metadata"),
			HashMetadata("cert-2", "metadata"))
	})

	t.Run("id and metadata boundaries do not collide", func(t *testing.T) {
		assert.NotEqual(t,
			HashMetadata("ab", "c"),
			HashMetadata("a", "bc"))
	})
}

func TestValidateMetadata(t *testing.T) {
	assert.NoError(t, ValidateMetadata("text"))
	assert.ErrorIs(t, ValidateMetadata(""), ErrInvalidMetadata)
}
