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
	"crypto/sha256"
	"encoding/hex"
)

// HashMetadata computes the hex-rendered SHA-256 digest over the certificate
// id and its metadata text. The id is bound into the digest so identical
// metadata under different ids yields different hashes.
func HashMetadata(certID, metadata string) string {
	h := sha256.New()
	h.Write([]byte(certID))
	h.Write([]byte{0})
	h.Write([]byte(metadata))
	return hex.EncodeToString(h.Sum(nil))
}

// ValidateMetadata rejects empty metadata text.
func ValidateMetadata(metadata string) error {
	if metadata == "" {
		return ErrInvalidMetadata
	}
	return nil
}
