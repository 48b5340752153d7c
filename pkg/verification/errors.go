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

package verification

import "errors"

var (
	// ErrInvalidPublicKey is returned when a public key has the wrong size.
	ErrInvalidPublicKey = errors.New("verification: invalid public key")

	// ErrInvalidSignatureLength is returned when a signature has the wrong
	// size.
	ErrInvalidSignatureLength = errors.New("verification: invalid signature length")
)
