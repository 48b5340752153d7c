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

// Package verification provides signature verification for certificate
// records. The registry core never implements the cryptographic primitive;
// it invokes a SignatureVerifier and propagates the boolean verdict.
package verification

import (
	"crypto/ed25519"
)

// SignatureVerifier checks a digital signature over a message against a
// public key. Implementations report the outcome as a boolean rather than
// aborting the calling operation, so verification verdicts stay composable.
type SignatureVerifier interface {
	// VerifySignature returns true iff signature is a valid signature of
	// message under publicKey. Returns an error only for malformed inputs,
	// never for a signature that merely fails to verify.
	VerifySignature(message, signature, publicKey []byte) (bool, error)
}

// Ed25519Verifier verifies Ed25519 signatures.
type Ed25519Verifier struct{}

// NewEd25519Verifier creates a SignatureVerifier for Ed25519 signatures.
func NewEd25519Verifier() *Ed25519Verifier {
	return &Ed25519Verifier{}
}

// VerifySignature verifies an Ed25519 signature.
func (v *Ed25519Verifier) VerifySignature(message, signature, publicKey []byte) (bool, error) {
	if len(publicKey) != ed25519.PublicKeySize {
		return false, ErrInvalidPublicKey
	}
	if len(signature) != ed25519.SignatureSize {
		return false, ErrInvalidSignatureLength
	}

	return ed25519.Verify(ed25519.PublicKey(publicKey), message, signature), nil
}

// SignatureVerifierFunc adapts a function to the SignatureVerifier
// interface. Useful for stubbing the primitive in tests.
type SignatureVerifierFunc func(message, signature, publicKey []byte) (bool, error)

// VerifySignature calls f(message, signature, publicKey).
func (f SignatureVerifierFunc) VerifySignature(message, signature, publicKey []byte) (bool, error) {
	return f(message, signature, publicKey)
}
