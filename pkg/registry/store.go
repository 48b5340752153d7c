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
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jeremyhahn/go-certregistry/pkg/accesscontrol"
	"github.com/jeremyhahn/go-certregistry/pkg/storage"
)

const (
	// Storage keys
	adminKey        = "admin"
	versionKey      = "version"
	certificatePath = "certificates/"
	authorityPath   = "authorities/"
	rolesPath       = "roles/"
)

// Store provides typed accessors over a storage.Backend for the registry
// keyspace. No registry component touches raw storage except through Store.
//
// Store satisfies accesscontrol.RoleStore.
type Store struct {
	backend storage.Backend
}

// NewStore creates a Store over the given backend.
func NewStore(backend storage.Backend) (*Store, error) {
	if backend == nil {
		return nil, fmt.Errorf("registry: backend cannot be nil")
	}
	return &Store{backend: backend}, nil
}

// validIdentifier reports whether an id or subject is safe to compose into
// a storage key. Separators and dot segments would address a different
// keyspace than the one the accessor owns.
func validIdentifier(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	return !strings.ContainsAny(id, "/\\")
}

// HasAdmin reports whether an administrator has been recorded.
func (s *Store) HasAdmin() (bool, error) {
	return s.backend.Exists(adminKey)
}

// Admin returns the administrator principal.
func (s *Store) Admin() (string, error) {
	data, err := s.backend.Get(adminKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrNotInitialized
		}
		return "", err
	}
	return string(data), nil
}

// SetAdmin records the administrator principal.
func (s *Store) SetAdmin(subject string) error {
	if subject == "" {
		return ErrInvalidParameter
	}
	return s.backend.Put(adminKey, []byte(subject), storage.DefaultOptions())
}

// HasCertificate reports whether a record exists for the certificate id.
func (s *Store) HasCertificate(certID string) (bool, error) {
	if !validIdentifier(certID) {
		return false, ErrInvalidParameter
	}
	return s.backend.Exists(certificatePath + certID)
}

// Certificate returns the record for the certificate id.
// Returns ErrCertificateNotFound if no record exists.
func (s *Store) Certificate(certID string) (*CertificateRecord, error) {
	if !validIdentifier(certID) {
		return nil, ErrInvalidParameter
	}

	data, err := s.backend.Get(certificatePath + certID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrCertificateNotFound
		}
		return nil, err
	}

	var record CertificateRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("registry: corrupt certificate record %q: %w", certID, err)
	}
	return &record, nil
}

// SetCertificate persists the record under the certificate id.
func (s *Store) SetCertificate(certID string, record *CertificateRecord) error {
	if !validIdentifier(certID) || record == nil {
		return ErrInvalidParameter
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("registry: failed to encode certificate %q: %w", certID, err)
	}
	return s.backend.Put(certificatePath+certID, data, storage.DefaultOptions())
}

// CertificateIDs returns all certificate ids, in storage iteration order.
// Callers must not rely on ordering.
func (s *Store) CertificateIDs() ([]string, error) {
	keys, err := s.backend.List(certificatePath)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		ids = append(ids, strings.TrimPrefix(key, certificatePath))
	}
	return ids, nil
}

// HasAuthority reports whether an authority is registered for the subject.
func (s *Store) HasAuthority(subject string) (bool, error) {
	if !validIdentifier(subject) {
		return false, ErrInvalidParameter
	}
	return s.backend.Exists(authorityPath + subject)
}

// Authority returns the certification authority registered for the subject.
// Returns ErrAuthorityNotFound if no authority exists.
func (s *Store) Authority(subject string) (*CertificationAuthority, error) {
	if !validIdentifier(subject) {
		return nil, ErrInvalidParameter
	}

	data, err := s.backend.Get(authorityPath + subject)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrAuthorityNotFound
		}
		return nil, err
	}

	var authority CertificationAuthority
	if err := json.Unmarshal(data, &authority); err != nil {
		return nil, fmt.Errorf("registry: corrupt authority record %q: %w", subject, err)
	}
	return &authority, nil
}

// SetAuthority persists the certification authority under its subject.
func (s *Store) SetAuthority(authority *CertificationAuthority) error {
	if authority == nil || !validIdentifier(authority.Subject) {
		return ErrInvalidParameter
	}

	data, err := json.Marshal(authority)
	if err != nil {
		return fmt.Errorf("registry: failed to encode authority %q: %w", authority.Subject, err)
	}
	return s.backend.Put(authorityPath+authority.Subject, data, storage.DefaultOptions())
}

// Roles returns the role set for a subject, empty if the subject has no
// entry.
func (s *Store) Roles(subject string) ([]accesscontrol.Role, error) {
	if !validIdentifier(subject) {
		return nil, ErrInvalidParameter
	}

	data, err := s.backend.Get(rolesPath + subject)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []accesscontrol.Role{}, nil
		}
		return nil, err
	}

	var roles []accesscontrol.Role
	if err := json.Unmarshal(data, &roles); err != nil {
		return nil, fmt.Errorf("registry: corrupt role set %q: %w", subject, err)
	}
	return roles, nil
}

// SetRoles replaces the role set for a subject.
func (s *Store) SetRoles(subject string, roles []accesscontrol.Role) error {
	if !validIdentifier(subject) {
		return ErrInvalidParameter
	}

	data, err := json.Marshal(roles)
	if err != nil {
		return fmt.Errorf("registry: failed to encode role set %q: %w", subject, err)
	}
	return s.backend.Put(rolesPath+subject, data, storage.DefaultOptions())
}

// DeleteRoles removes the subject's role entry entirely.
func (s *Store) DeleteRoles(subject string) error {
	if !validIdentifier(subject) {
		return ErrInvalidParameter
	}

	err := s.backend.Delete(rolesPath + subject)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	return err
}

// SchemaVersion returns the registry schema version, zero if unset.
func (s *Store) SchemaVersion() (int, error) {
	data, err := s.backend.Get(versionKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}

	version, err := strconv.Atoi(string(data))
	if err != nil {
		return 0, fmt.Errorf("registry: corrupt schema version: %w", err)
	}
	return version, nil
}

// SetSchemaVersion records the registry schema version.
func (s *Store) SetSchemaVersion(version int) error {
	return s.backend.Put(versionKey, []byte(strconv.Itoa(version)), storage.DefaultOptions())
}

// Close releases the underlying backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// Store satisfies accesscontrol.RoleStore.
var _ accesscontrol.RoleStore = (*Store)(nil)
