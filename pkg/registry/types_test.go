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
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCertificateType_Valid(t *testing.T) {
	for _, typ := range []CertificateType{
		TypeStandard, TypeProfessional, TypeAcademic,
		TypeTechnical, TypeMembership, TypeCustom,
	} {
		assert.True(t, typ.Valid(), typ)
	}
	assert.False(t, CertificateType("diploma").Valid())
	assert.False(t, CertificateType("").Valid())
}

func TestCertificateStatus_Valid(t *testing.T) {
	for _, status := range []CertificateStatus{
		StatusActive, StatusRevoked, StatusExpired, StatusSuspended,
	} {
		assert.True(t, status.Valid(), status)
	}
	assert.False(t, CertificateStatus("frozen").Valid())
	assert.False(t, CertificateStatus("").Valid())
}

func TestCertificateRecord_Expired(t *testing.T) {
	now := time.Unix(1700000000, 0)

	t.Run("zero expiration never expires", func(t *testing.T) {
		record := &CertificateRecord{}
		assert.False(t, record.Expired(now))
		assert.False(t, record.Expired(now.Add(100*365*24*time.Hour)))
	})

	t.Run("expires strictly after the expiration instant", func(t *testing.T) {
		record := &CertificateRecord{
			Metadata: CertificateMetadata{ExpirationDate: now.Unix()},
		}
		assert.False(t, record.Expired(now))
		assert.True(t, record.Expired(now.Add(time.Second)))
	})
}

func TestCertificateRecord_ValidAt(t *testing.T) {
	now := time.Unix(1700000000, 0)

	t.Run("active and unexpired", func(t *testing.T) {
		record := &CertificateRecord{Status: StatusActive}
		assert.True(t, record.ValidAt(now))
	})

	t.Run("non-active statuses are invalid regardless of expiry", func(t *testing.T) {
		for _, status := range []CertificateStatus{StatusRevoked, StatusExpired, StatusSuspended} {
			record := &CertificateRecord{Status: status}
			assert.False(t, record.ValidAt(now), status)
		}
	})

	t.Run("stored status is not consulted for expiry", func(t *testing.T) {
		record := &CertificateRecord{
			Status:   StatusActive,
			Metadata: CertificateMetadata{ExpirationDate: now.Add(-time.Hour).Unix()},
		}
		assert.False(t, record.ValidAt(now))
	})
}

func TestNewVerificationResult(t *testing.T) {
	now := time.Unix(1700000000, 0)

	t.Run("nil record yields an empty verdict", func(t *testing.T) {
		result := NewVerificationResult(nil, "anything", true, now)
		assert.False(t, result.Exists)
		assert.False(t, result.IsValid)
		assert.False(t, result.HashValid)
		assert.False(t, result.SignatureValid)
	})

	t.Run("assembles independent fields", func(t *testing.T) {
		record := &CertificateRecord{
			Owner:        "bob",
			Issuer:       "alice",
			MetadataHash: "expected",
			Status:       StatusRevoked,
		}

		result := NewVerificationResult(record, "expected", true, now)
		assert.True(t, result.Exists)
		assert.True(t, result.HashValid)
		assert.True(t, result.SignatureValid)
		assert.False(t, result.IsValid)
		assert.Equal(t, StatusRevoked, result.Status)
		assert.Equal(t, "bob", result.Owner)
		assert.Equal(t, "alice", result.Issuer)
	})
}
