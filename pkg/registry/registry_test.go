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
	"bytes"
	"context"
	"crypto/ed25519"
	"testing"
	"time"

	"github.com/jeremyhahn/go-certregistry/pkg/accesscontrol"
	"github.com/jeremyhahn/go-certregistry/pkg/audit"
	"github.com/jeremyhahn/go-certregistry/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAdmin = "alice"

// testEnv bundles a registry with its collaborators so tests can inspect
// events and move the clock.
type testEnv struct {
	reg     *Registry
	store   *Store
	emitter *audit.MemoryEmitter
	now     time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	backend, err := storage.NewMemoryBackend()
	require.NoError(t, err)

	store, err := NewStore(backend)
	require.NoError(t, err)

	emitter := audit.NewMemoryEmitter()

	authn := accesscontrol.AuthenticatorFunc(func(ctx context.Context, subject string) error {
		return nil
	})
	access, err := accesscontrol.New(store, authn,
		accesscontrol.WithEventSink(NewRoleEventSink(emitter)))
	require.NoError(t, err)

	env := &testEnv{
		store:   store,
		emitter: emitter,
		now:     time.Unix(1700000000, 0),
	}

	env.reg, err = New(&Config{
		Store:   store,
		Access:  access,
		Emitter: emitter,
		Clock:   func() time.Time { return env.now },
	})
	require.NoError(t, err)

	return env
}

// newInitializedEnv returns an env whose registry is initialized with
// testAdmin as administrator.
func newInitializedEnv(t *testing.T) *testEnv {
	t.Helper()
	env := newTestEnv(t)
	require.NoError(t, env.reg.Initialize(context.Background(), testAdmin))
	env.emitter.Reset()
	return env
}

func (e *testEnv) advance(d time.Duration) {
	e.now = e.now.Add(d)
}

func validSignature() []byte {
	return bytes.Repeat([]byte{0x5a}, SignatureSize)
}

func (e *testEnv) issue(t *testing.T, certID, owner string) *CertificateRecord {
	t.Helper()
	record, err := e.reg.IssueCertificate(context.Background(), testAdmin,
		certID, owner, "metadata for "+certID, validSignature(), TypeStandard, 0)
	require.NoError(t, err)
	return record
}

func TestNew(t *testing.T) {
	t.Run("requires config", func(t *testing.T) {
		_, err := New(nil)
		assert.Error(t, err)
	})

	t.Run("requires store and access", func(t *testing.T) {
		_, err := New(&Config{})
		assert.Error(t, err)
	})
}

func TestInitialize(t *testing.T) {
	ctx := context.Background()

	t.Run("records the administrator exactly once", func(t *testing.T) {
		env := newTestEnv(t)

		require.NoError(t, env.reg.Initialize(ctx, testAdmin))

		admin, err := env.store.Admin()
		require.NoError(t, err)
		assert.Equal(t, testAdmin, admin)

		err = env.reg.Initialize(ctx, "bob")
		assert.ErrorIs(t, err, ErrAlreadyInitialized)

		// The second attempt must not overwrite the administrator.
		admin, err = env.store.Admin()
		require.NoError(t, err)
		assert.Equal(t, testAdmin, admin)
	})

	t.Run("grants admin and issuer roles", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.reg.Initialize(ctx, testAdmin))

		for _, role := range []accesscontrol.Role{accesscontrol.RoleAdmin, accesscontrol.RoleIssuer} {
			held, err := env.reg.Access().HasRole(testAdmin, role)
			require.NoError(t, err)
			assert.True(t, held, role)
		}
	})

	t.Run("records the schema version", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.reg.Initialize(ctx, testAdmin))

		version, err := env.store.SchemaVersion()
		require.NoError(t, err)
		assert.Equal(t, 1, version)
	})

	t.Run("rejects empty authority", func(t *testing.T) {
		env := newTestEnv(t)
		assert.ErrorIs(t, env.reg.Initialize(ctx, ""), ErrInvalidParameter)
	})
}

func TestIssueCertificate(t *testing.T) {
	ctx := context.Background()

	t.Run("issues with version 1 and caller as issuer", func(t *testing.T) {
		env := newInitializedEnv(t)

		record, err := env.reg.IssueCertificate(ctx, testAdmin, "cert-1", "bob",
			"Go certification", validSignature(), TypeProfessional, 0)
		require.NoError(t, err)

		assert.Equal(t, "bob", record.Owner)
		assert.Equal(t, testAdmin, record.Issuer)
		assert.Equal(t, StatusActive, record.Status)
		assert.Equal(t, 1, record.Version)
		assert.Equal(t, TypeProfessional, record.Metadata.Type)
		assert.Equal(t, HashMetadata("cert-1", "Go certification"), record.MetadataHash)
		assert.Equal(t, env.now.Unix(), record.Metadata.IssueDate)
		assert.Nil(t, record.RevocationReason)
	})

	t.Run("duplicate id fails", func(t *testing.T) {
		env := newInitializedEnv(t)
		env.issue(t, "cert-1", "bob")

		_, err := env.reg.IssueCertificate(ctx, testAdmin, "cert-1", "carol",
			"other", validSignature(), TypeStandard, 0)
		assert.ErrorIs(t, err, ErrCertificateAlreadyExists)

		// The original record is untouched.
		record, err := env.reg.GetCertificate("cert-1")
		require.NoError(t, err)
		assert.Equal(t, "bob", record.Owner)
	})

	t.Run("requires the issuer role", func(t *testing.T) {
		env := newInitializedEnv(t)

		_, err := env.reg.IssueCertificate(ctx, "mallory", "cert-1", "bob",
			"meta", validSignature(), TypeStandard, 0)
		assert.ErrorIs(t, err, accesscontrol.ErrUnauthorized)

		_, err = env.reg.GetCertificate("cert-1")
		assert.ErrorIs(t, err, ErrCertificateNotFound)
	})

	t.Run("admin passes the issuer gate without holding issuer", func(t *testing.T) {
		env := newInitializedEnv(t)
		require.NoError(t, env.reg.Access().GrantRole(ctx, testAdmin, "root", accesscontrol.RoleAdmin))

		_, err := env.reg.IssueCertificate(ctx, "root", "cert-1", "bob",
			"meta", validSignature(), TypeStandard, 0)
		assert.NoError(t, err)
	})

	t.Run("validates inputs", func(t *testing.T) {
		env := newInitializedEnv(t)

		_, err := env.reg.IssueCertificate(ctx, testAdmin, "", "bob", "m", validSignature(), TypeStandard, 0)
		assert.ErrorIs(t, err, ErrInvalidParameter)

		_, err = env.reg.IssueCertificate(ctx, testAdmin, "c", "", "m", validSignature(), TypeStandard, 0)
		assert.ErrorIs(t, err, ErrInvalidParameter)

		_, err = env.reg.IssueCertificate(ctx, testAdmin, "c", "bob", "", validSignature(), TypeStandard, 0)
		assert.ErrorIs(t, err, ErrInvalidMetadata)

		_, err = env.reg.IssueCertificate(ctx, testAdmin, "c", "bob", "m", []byte("short"), TypeStandard, 0)
		assert.ErrorIs(t, err, ErrInvalidSignature)

		_, err = env.reg.IssueCertificate(ctx, testAdmin, "c", "bob", "m", validSignature(), CertificateType("bogus"), 0)
		assert.ErrorIs(t, err, ErrInvalidParameter)

		_, err = env.reg.IssueCertificate(ctx, testAdmin, "c", "bob", "m", validSignature(), TypeStandard, -1)
		assert.ErrorIs(t, err, ErrInvalidParameter)

		for _, id := range []string{"..", "a/b", `a\b`, "../roles/" + testAdmin} {
			_, err = env.reg.IssueCertificate(ctx, testAdmin, id, "bob", "m", validSignature(), TypeStandard, 0)
			assert.ErrorIs(t, err, ErrInvalidParameter, id)
		}
	})

	t.Run("emits an issuance event", func(t *testing.T) {
		env := newInitializedEnv(t)
		env.issue(t, "cert-1", "bob")

		events := env.emitter.EventsByType(audit.EventCertIssued)
		require.Len(t, events, 1)
		assert.Equal(t, testAdmin, events[0].Principal)
		assert.Equal(t, "cert-1", events[0].Resource)
	})
}

// A certificate id must never address a key outside the certificate
// keyspace, even on the file backend where keys map to paths.
func TestIssueCertificate_KeyspaceIsolation(t *testing.T) {
	ctx := context.Background()

	backend, err := storage.NewFileBackend(t.TempDir())
	require.NoError(t, err)

	store, err := NewStore(backend)
	require.NoError(t, err)

	emitter := audit.NewMemoryEmitter()
	authn := accesscontrol.AuthenticatorFunc(func(ctx context.Context, subject string) error {
		return nil
	})
	access, err := accesscontrol.New(store, authn,
		accesscontrol.WithEventSink(NewRoleEventSink(emitter)))
	require.NoError(t, err)

	reg, err := New(&Config{Store: store, Access: access, Emitter: emitter})
	require.NoError(t, err)
	require.NoError(t, reg.Initialize(ctx, testAdmin))

	_, err = reg.IssueCertificate(ctx, testAdmin, "../roles/"+testAdmin, "bob",
		"metadata", validSignature(), TypeStandard, 0)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	// The administrator's role set is untouched and still parses.
	roles, err := store.Roles(testAdmin)
	require.NoError(t, err)
	assert.Contains(t, roles, accesscontrol.RoleAdmin)

	ids, err := store.CertificateIDs()
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestBatchIssueCertificates(t *testing.T) {
	ctx := context.Background()

	sigs := func(n int) [][]byte {
		out := make([][]byte, n)
		for i := range out {
			out[i] = validSignature()
		}
		return out
	}
	types := func(n int) []CertificateType {
		out := make([]CertificateType, n)
		for i := range out {
			out[i] = TypeStandard
		}
		return out
	}

	t.Run("issues every item on success", func(t *testing.T) {
		env := newInitializedEnv(t)

		failed, err := env.reg.BatchIssueCertificates(ctx, testAdmin,
			[]string{"b-1", "b-2", "b-3"},
			[]string{"bob", "carol", "dave"},
			[]string{"m1", "m2", "m3"},
			sigs(3), types(3), []int64{0, 0, 0})
		require.NoError(t, err)
		assert.Empty(t, failed)

		for _, id := range []string{"b-1", "b-2", "b-3"} {
			_, err := env.reg.GetCertificate(id)
			assert.NoError(t, err, id)
		}
	})

	t.Run("mismatched lengths fail the whole batch", func(t *testing.T) {
		env := newInitializedEnv(t)

		_, err := env.reg.BatchIssueCertificates(ctx, testAdmin,
			[]string{"b-1", "b-2"},
			[]string{"bob"},
			[]string{"m1", "m2"},
			sigs(2), types(2), []int64{0, 0})
		assert.ErrorIs(t, err, ErrInvalidMetadata)

		_, err = env.reg.GetCertificate("b-1")
		assert.ErrorIs(t, err, ErrCertificateNotFound)
	})

	t.Run("a failing item does not abort the rest", func(t *testing.T) {
		env := newInitializedEnv(t)
		env.issue(t, "b-2", "someone")

		failed, err := env.reg.BatchIssueCertificates(ctx, testAdmin,
			[]string{"b-1", "b-2", "b-3"},
			[]string{"bob", "carol", "dave"},
			[]string{"m1", "m2", "m3"},
			sigs(3), types(3), []int64{0, 0, 0})
		require.NoError(t, err)
		assert.Equal(t, []string{"b-2"}, failed)

		// Items before and after the failure remain issued.
		_, err = env.reg.GetCertificate("b-1")
		assert.NoError(t, err)
		_, err = env.reg.GetCertificate("b-3")
		assert.NoError(t, err)
	})

	t.Run("authorization is checked once for the batch", func(t *testing.T) {
		env := newInitializedEnv(t)

		_, err := env.reg.BatchIssueCertificates(ctx, "mallory",
			[]string{"b-1"}, []string{"bob"}, []string{"m1"},
			sigs(1), types(1), []int64{0})
		assert.ErrorIs(t, err, accesscontrol.ErrUnauthorized)
	})
}

func TestUpdateCertificateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("applies a transition without changing the version", func(t *testing.T) {
		env := newInitializedEnv(t)
		env.issue(t, "cert-1", "bob")

		require.NoError(t, env.reg.UpdateCertificateStatus(ctx, testAdmin, "cert-1", StatusSuspended, nil))

		record, err := env.reg.GetCertificate("cert-1")
		require.NoError(t, err)
		assert.Equal(t, StatusSuspended, record.Status)
		assert.Equal(t, 1, record.Version)
		assert.Nil(t, record.RevocationReason)
	})

	t.Run("records the reason only on revocation", func(t *testing.T) {
		env := newInitializedEnv(t)
		env.issue(t, "cert-1", "bob")

		reason := "policy violation"
		require.NoError(t, env.reg.UpdateCertificateStatus(ctx, testAdmin, "cert-1", StatusRevoked, &reason))

		record, err := env.reg.GetCertificate("cert-1")
		require.NoError(t, err)
		require.NotNil(t, record.RevocationReason)
		assert.Equal(t, reason, *record.RevocationReason)
	})

	t.Run("nil reason on revocation still sets the field", func(t *testing.T) {
		env := newInitializedEnv(t)
		env.issue(t, "cert-1", "bob")

		require.NoError(t, env.reg.UpdateCertificateStatus(ctx, testAdmin, "cert-1", StatusRevoked, nil))

		record, err := env.reg.GetCertificate("cert-1")
		require.NoError(t, err)
		require.NotNil(t, record.RevocationReason)
		assert.Equal(t, "", *record.RevocationReason)
	})

	t.Run("reason is ignored for non-revoked targets", func(t *testing.T) {
		env := newInitializedEnv(t)
		env.issue(t, "cert-1", "bob")

		reason := "should not be recorded"
		require.NoError(t, env.reg.UpdateCertificateStatus(ctx, testAdmin, "cert-1", StatusSuspended, &reason))

		record, err := env.reg.GetCertificate("cert-1")
		require.NoError(t, err)
		assert.Nil(t, record.RevocationReason)
	})

	t.Run("an earlier reason survives later transitions", func(t *testing.T) {
		env := newInitializedEnv(t)
		env.issue(t, "cert-1", "bob")

		reason := "compromised"
		require.NoError(t, env.reg.UpdateCertificateStatus(ctx, testAdmin, "cert-1", StatusRevoked, &reason))
		require.NoError(t, env.reg.UpdateCertificateStatus(ctx, testAdmin, "cert-1", StatusActive, nil))

		record, err := env.reg.GetCertificate("cert-1")
		require.NoError(t, err)
		require.NotNil(t, record.RevocationReason)
		assert.Equal(t, reason, *record.RevocationReason)
	})

	t.Run("rejects invalid status", func(t *testing.T) {
		env := newInitializedEnv(t)
		env.issue(t, "cert-1", "bob")

		err := env.reg.UpdateCertificateStatus(ctx, testAdmin, "cert-1", CertificateStatus("bogus"), nil)
		assert.ErrorIs(t, err, ErrInvalidParameter)
	})

	t.Run("missing certificate fails", func(t *testing.T) {
		env := newInitializedEnv(t)

		err := env.reg.UpdateCertificateStatus(ctx, testAdmin, "missing", StatusRevoked, nil)
		assert.ErrorIs(t, err, ErrCertificateNotFound)
	})

	t.Run("requires the issuer role", func(t *testing.T) {
		env := newInitializedEnv(t)
		env.issue(t, "cert-1", "bob")

		err := env.reg.UpdateCertificateStatus(ctx, "mallory", "cert-1", StatusRevoked, nil)
		assert.ErrorIs(t, err, accesscontrol.ErrUnauthorized)
	})

	t.Run("emits a status change event", func(t *testing.T) {
		env := newInitializedEnv(t)
		env.issue(t, "cert-1", "bob")
		env.emitter.Reset()

		require.NoError(t, env.reg.UpdateCertificateStatus(ctx, testAdmin, "cert-1", StatusSuspended, nil))

		events := env.emitter.EventsByType(audit.EventCertStatusChanged)
		require.Len(t, events, 1)
		assert.Equal(t, "active", events[0].Fields["old_status"])
		assert.Equal(t, "suspended", events[0].Fields["new_status"])
	})
}

func TestUpdateCertificateMetadata(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces metadata and increments the version", func(t *testing.T) {
		env := newInitializedEnv(t)
		env.issue(t, "cert-1", "bob")

		newSig := bytes.Repeat([]byte{0x7f}, SignatureSize)
		require.NoError(t, env.reg.UpdateCertificateMetadata(ctx, testAdmin, "cert-1", "updated text", newSig))

		record, err := env.reg.GetCertificate("cert-1")
		require.NoError(t, err)
		assert.Equal(t, "updated text", record.Metadata.Description)
		assert.Equal(t, HashMetadata("cert-1", "updated text"), record.MetadataHash)
		assert.Equal(t, newSig, record.Signature)
		assert.Equal(t, 2, record.Version)
		assert.Equal(t, StatusActive, record.Status)
	})

	t.Run("version increments by exactly one per update", func(t *testing.T) {
		env := newInitializedEnv(t)
		env.issue(t, "cert-1", "bob")

		for i := 0; i < 5; i++ {
			require.NoError(t, env.reg.UpdateCertificateMetadata(ctx, testAdmin, "cert-1",
				"revision", validSignature()))
		}

		record, err := env.reg.GetCertificate("cert-1")
		require.NoError(t, err)
		assert.Equal(t, 6, record.Version)
	})

	t.Run("rejects empty metadata", func(t *testing.T) {
		env := newInitializedEnv(t)
		env.issue(t, "cert-1", "bob")

		err := env.reg.UpdateCertificateMetadata(ctx, testAdmin, "cert-1", "", validSignature())
		assert.ErrorIs(t, err, ErrInvalidMetadata)
	})

	t.Run("rejects wrong signature length", func(t *testing.T) {
		env := newInitializedEnv(t)
		env.issue(t, "cert-1", "bob")

		err := env.reg.UpdateCertificateMetadata(ctx, testAdmin, "cert-1", "text", []byte("short"))
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("emits no event", func(t *testing.T) {
		env := newInitializedEnv(t)
		env.issue(t, "cert-1", "bob")
		env.emitter.Reset()

		require.NoError(t, env.reg.UpdateCertificateMetadata(ctx, testAdmin, "cert-1", "text", validSignature()))
		assert.Empty(t, env.emitter.Events())
	})
}

func TestRevokeCertificate(t *testing.T) {
	ctx := context.Background()

	t.Run("revoker revokes with a reason", func(t *testing.T) {
		env := newInitializedEnv(t)
		env.issue(t, "cert-1", "bob")
		require.NoError(t, env.reg.Access().GrantRole(ctx, testAdmin, "rev", accesscontrol.RoleRevoker))

		require.NoError(t, env.reg.RevokeCertificate(ctx, "rev", "cert-1", "key compromise"))

		record, err := env.reg.GetCertificate("cert-1")
		require.NoError(t, err)
		assert.Equal(t, StatusRevoked, record.Status)
		require.NotNil(t, record.RevocationReason)
		assert.Equal(t, "key compromise", *record.RevocationReason)
	})

	t.Run("already revoked fails", func(t *testing.T) {
		env := newInitializedEnv(t)
		env.issue(t, "cert-1", "bob")

		require.NoError(t, env.reg.RevokeCertificate(ctx, testAdmin, "cert-1", "first"))
		err := env.reg.RevokeCertificate(ctx, testAdmin, "cert-1", "second")
		assert.ErrorIs(t, err, ErrCertificateRevoked)

		// The original reason is preserved.
		record, err := env.reg.GetCertificate("cert-1")
		require.NoError(t, err)
		assert.Equal(t, "first", *record.RevocationReason)
	})

	t.Run("requires the revoker role", func(t *testing.T) {
		env := newInitializedEnv(t)
		env.issue(t, "cert-1", "bob")
		require.NoError(t, env.reg.Access().GrantRole(ctx, testAdmin, "issuer-only", accesscontrol.RoleIssuer))

		err := env.reg.RevokeCertificate(ctx, "issuer-only", "cert-1", "nope")
		assert.ErrorIs(t, err, accesscontrol.ErrUnauthorized)
	})

	t.Run("emits a revocation event", func(t *testing.T) {
		env := newInitializedEnv(t)
		env.issue(t, "cert-1", "bob")
		env.emitter.Reset()

		require.NoError(t, env.reg.RevokeCertificate(ctx, testAdmin, "cert-1", "fraud"))

		events := env.emitter.EventsByType(audit.EventCertRevoked)
		require.Len(t, events, 1)
		assert.Equal(t, "fraud", events[0].Fields["reason"])
	})
}

func TestListCertificates(t *testing.T) {
	ctx := context.Background()

	t.Run("lists by owner", func(t *testing.T) {
		env := newInitializedEnv(t)
		env.issue(t, "cert-1", "bob")
		env.issue(t, "cert-2", "carol")
		env.issue(t, "cert-3", "bob")

		ids, err := env.reg.ListCertificatesByOwner("bob")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"cert-1", "cert-3"}, ids)

		ids, err = env.reg.ListCertificatesByOwner("nobody")
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("rejects empty owner", func(t *testing.T) {
		env := newInitializedEnv(t)
		_, err := env.reg.ListCertificatesByOwner("")
		assert.ErrorIs(t, err, ErrInvalidParameter)
	})

	t.Run("full listing requires admin", func(t *testing.T) {
		env := newInitializedEnv(t)
		env.issue(t, "cert-1", "bob")
		env.issue(t, "cert-2", "carol")

		ids, err := env.reg.ListAllCertificates(ctx, testAdmin)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"cert-1", "cert-2"}, ids)

		_, err = env.reg.ListAllCertificates(ctx, "mallory")
		assert.ErrorIs(t, err, accesscontrol.ErrUnauthorized)
	})
}

func TestAuthorities(t *testing.T) {
	ctx := context.Background()

	key := func() []byte { return bytes.Repeat([]byte{0x11}, VerificationKeySize) }

	t.Run("add and get", func(t *testing.T) {
		env := newInitializedEnv(t)

		err := env.reg.AddAuthority(ctx, testAdmin, &CertificationAuthority{
			Name:            "Example CA",
			Subject:         "ca-1",
			VerificationKey: key(),
			Active:          true,
		})
		require.NoError(t, err)

		authority, err := env.reg.GetAuthority("ca-1")
		require.NoError(t, err)
		assert.Equal(t, "Example CA", authority.Name)
		assert.True(t, authority.Active)
	})

	t.Run("duplicate subject fails", func(t *testing.T) {
		env := newInitializedEnv(t)
		require.NoError(t, env.reg.AddAuthority(ctx, testAdmin, &CertificationAuthority{
			Name: "CA", Subject: "ca-1", VerificationKey: key(), Active: true,
		}))

		err := env.reg.AddAuthority(ctx, testAdmin, &CertificationAuthority{
			Name: "CA again", Subject: "ca-1", VerificationKey: key(), Active: true,
		})
		assert.ErrorIs(t, err, ErrAuthorityAlreadyExists)
	})

	t.Run("update replaces an existing authority", func(t *testing.T) {
		env := newInitializedEnv(t)
		require.NoError(t, env.reg.AddAuthority(ctx, testAdmin, &CertificationAuthority{
			Name: "CA", Subject: "ca-1", VerificationKey: key(), Active: true,
		}))

		require.NoError(t, env.reg.UpdateAuthority(ctx, testAdmin, &CertificationAuthority{
			Name: "CA", Subject: "ca-1", VerificationKey: key(), Active: false,
		}))

		authority, err := env.reg.GetAuthority("ca-1")
		require.NoError(t, err)
		assert.False(t, authority.Active)
	})

	t.Run("update of an unknown subject fails", func(t *testing.T) {
		env := newInitializedEnv(t)

		err := env.reg.UpdateAuthority(ctx, testAdmin, &CertificationAuthority{
			Name: "CA", Subject: "missing", VerificationKey: key(), Active: true,
		})
		assert.ErrorIs(t, err, ErrAuthorityNotFound)
	})

	t.Run("rejects wrong key size", func(t *testing.T) {
		env := newInitializedEnv(t)

		err := env.reg.AddAuthority(ctx, testAdmin, &CertificationAuthority{
			Name: "CA", Subject: "ca-1", VerificationKey: []byte("short"), Active: true,
		})
		assert.ErrorIs(t, err, ErrInvalidParameter)
	})

	t.Run("requires the authority manager role", func(t *testing.T) {
		env := newInitializedEnv(t)
		require.NoError(t, env.reg.Access().GrantRole(ctx, testAdmin, "mgr", accesscontrol.RoleAuthorityManager))

		err := env.reg.AddAuthority(ctx, "mgr", &CertificationAuthority{
			Name: "CA", Subject: "ca-1", VerificationKey: key(), Active: true,
		})
		assert.NoError(t, err)

		err = env.reg.AddAuthority(ctx, "mallory", &CertificationAuthority{
			Name: "CA", Subject: "ca-2", VerificationKey: key(), Active: true,
		})
		assert.ErrorIs(t, err, accesscontrol.ErrUnauthorized)
	})
}

func TestUpgradeSchema(t *testing.T) {
	ctx := context.Background()

	t.Run("bumps the version", func(t *testing.T) {
		env := newInitializedEnv(t)

		version, err := env.reg.UpgradeSchema(ctx, testAdmin)
		require.NoError(t, err)
		assert.Equal(t, 2, version)

		stored, err := env.store.SchemaVersion()
		require.NoError(t, err)
		assert.Equal(t, 2, stored)
	})

	t.Run("requires admin", func(t *testing.T) {
		env := newInitializedEnv(t)

		_, err := env.reg.UpgradeSchema(ctx, "mallory")
		assert.ErrorIs(t, err, accesscontrol.ErrUnauthorized)
	})
}

func TestVerifyCertificate(t *testing.T) {
	t.Run("missing certificate yields an all-false verdict", func(t *testing.T) {
		env := newInitializedEnv(t)

		result, err := env.reg.VerifyCertificate("missing", "hash", nil, nil, nil)
		require.NoError(t, err)
		assert.False(t, result.Exists)
		assert.False(t, result.IsValid)
		assert.False(t, result.HashValid)
		assert.False(t, result.SignatureValid)
	})

	t.Run("verdict fields are independent", func(t *testing.T) {
		env := newInitializedEnv(t)
		env.issue(t, "cert-1", "bob")
		require.NoError(t, env.reg.RevokeCertificate(context.Background(), testAdmin, "cert-1", "fraud"))

		// Correct hash against a revoked certificate: HashValid true,
		// IsValid false.
		hash := HashMetadata("cert-1", "metadata for cert-1")
		result, err := env.reg.VerifyCertificate("cert-1", hash, nil, nil, nil)
		require.NoError(t, err)
		assert.True(t, result.Exists)
		assert.True(t, result.HashValid)
		assert.False(t, result.IsValid)
		assert.False(t, result.SignatureValid)
		assert.Equal(t, StatusRevoked, result.Status)
		assert.Equal(t, "bob", result.Owner)
		assert.Equal(t, testAdmin, result.Issuer)
	})

	t.Run("wrong hash fails only the hash check", func(t *testing.T) {
		env := newInitializedEnv(t)
		env.issue(t, "cert-1", "bob")

		result, err := env.reg.VerifyCertificate("cert-1", "wrong", nil, nil, nil)
		require.NoError(t, err)
		assert.True(t, result.Exists)
		assert.True(t, result.IsValid)
		assert.False(t, result.HashValid)
	})

	t.Run("checks an ed25519 signature when a key is supplied", func(t *testing.T) {
		env := newInitializedEnv(t)
		env.issue(t, "cert-1", "bob")

		pub, priv, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)

		message := []byte("signed payload")
		signature := ed25519.Sign(priv, message)

		result, err := env.reg.VerifyCertificate("cert-1", "", message, signature, pub)
		require.NoError(t, err)
		assert.True(t, result.SignatureValid)

		result, err = env.reg.VerifyCertificate("cert-1", "", []byte("tampered"), signature, pub)
		require.NoError(t, err)
		assert.False(t, result.SignatureValid)
	})

	t.Run("malformed key counts as invalid signature, not an error", func(t *testing.T) {
		env := newInitializedEnv(t)
		env.issue(t, "cert-1", "bob")

		result, err := env.reg.VerifyCertificate("cert-1", "", []byte("m"), validSignature(), []byte("bad key"))
		require.NoError(t, err)
		assert.False(t, result.SignatureValid)
	})

	t.Run("rejects empty certificate id", func(t *testing.T) {
		env := newInitializedEnv(t)

		_, err := env.reg.VerifyCertificate("", "", nil, nil, nil)
		assert.ErrorIs(t, err, ErrInvalidParameter)
	})
}

func TestExpiryIsLazy(t *testing.T) {
	ctx := context.Background()
	env := newInitializedEnv(t)

	expiry := env.now.Add(time.Hour).Unix()
	_, err := env.reg.IssueCertificate(ctx, testAdmin, "cert-1", "bob",
		"expiring", validSignature(), TypeStandard, expiry)
	require.NoError(t, err)

	// Before expiry the certificate verifies as valid.
	result, err := env.reg.VerifyCertificate("cert-1", "", nil, nil, nil)
	require.NoError(t, err)
	assert.True(t, result.IsValid)

	// Past expiry verification flips without any state change, while the
	// stored status still reads Active.
	env.advance(2 * time.Hour)

	result, err = env.reg.VerifyCertificate("cert-1", "", nil, nil, nil)
	require.NoError(t, err)
	assert.False(t, result.IsValid)
	assert.Equal(t, StatusActive, result.Status)

	record, err := env.reg.GetCertificate("cert-1")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, record.Status)

	// An explicit transition records the expiry in stored state.
	require.NoError(t, env.reg.UpdateCertificateStatus(ctx, testAdmin, "cert-1", StatusExpired, nil))
	record, err = env.reg.GetCertificate("cert-1")
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, record.Status)
}

func TestEndToEndLifecycle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	// Initialize and delegate.
	require.NoError(t, env.reg.Initialize(ctx, testAdmin))
	require.NoError(t, env.reg.Access().GrantRole(ctx, testAdmin, "issuer-1", accesscontrol.RoleIssuer))
	require.NoError(t, env.reg.Access().GrantRole(ctx, testAdmin, "revoker-1", accesscontrol.RoleRevoker))

	// Issue as the delegated issuer.
	record, err := env.reg.IssueCertificate(ctx, "issuer-1", "cert-1", "bob",
		"Cloud architecture", validSignature(), TypeTechnical, 0)
	require.NoError(t, err)
	assert.Equal(t, "issuer-1", record.Issuer)

	// Metadata revision.
	require.NoError(t, env.reg.UpdateCertificateMetadata(ctx, "issuer-1", "cert-1",
		"Cloud architecture, revised", validSignature()))

	// Revoke as the delegated revoker.
	require.NoError(t, env.reg.RevokeCertificate(ctx, "revoker-1", "cert-1", "superseded"))

	// The delegated issuer loses its role and can no longer issue.
	require.NoError(t, env.reg.Access().RevokeRole(ctx, testAdmin, "issuer-1", accesscontrol.RoleIssuer))
	_, err = env.reg.IssueCertificate(ctx, "issuer-1", "cert-2", "bob",
		"meta", validSignature(), TypeStandard, 0)
	assert.ErrorIs(t, err, accesscontrol.ErrUnauthorized)

	// Final state.
	record, err = env.reg.GetCertificate("cert-1")
	require.NoError(t, err)
	assert.Equal(t, StatusRevoked, record.Status)
	assert.Equal(t, 2, record.Version)
	require.NotNil(t, record.RevocationReason)
	assert.Equal(t, "superseded", *record.RevocationReason)

	// Event trail covers the full lifecycle.
	assert.Len(t, env.emitter.EventsByType(audit.EventRoleGranted), 4)
	assert.Len(t, env.emitter.EventsByType(audit.EventCertIssued), 1)
	assert.Len(t, env.emitter.EventsByType(audit.EventCertRevoked), 1)
	assert.Len(t, env.emitter.EventsByType(audit.EventRoleRevoked), 1)
}
