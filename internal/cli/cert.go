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

package cli

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jeremyhahn/go-certregistry/pkg/registry"
	"github.com/spf13/cobra"
)

var (
	certIssueOwner    string
	certIssueMetadata string
	certIssueSig      string
	certIssueType     string
	certIssueExpires  int64

	certStatusValue  string
	certStatusReason string

	certMetadataValue string
	certMetadataSig   string

	certRevokeReason string

	certVerifyHash   string
	certVerifyMsg    string
	certVerifySig    string
	certVerifyPubKey string

	certListOwner string
)

// certCmd represents the certificate command
var certCmd = &cobra.Command{
	Use:   "cert",
	Short: "Manage registry certificates",
	Long:  `Issue, inspect, verify, and drive lifecycle transitions for certificates`,
}

// certIssueCmd issues a certificate
var certIssueCmd = &cobra.Command{
	Use:   "issue <cert-id>",
	Short: "Issue a certificate",
	Long:  `Issue a new certificate. The caller supplied with --as must hold the Issuer role.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		certID := args[0]
		cfg := getConfig()
		printer := NewPrinter(cfg.OutputFormat, os.Stdout)

		caller, err := cfg.RequireCaller()
		if err != nil {
			handleError(err)
			return
		}

		signature, err := base64.StdEncoding.DecodeString(certIssueSig)
		if err != nil {
			handleError(fmt.Errorf("failed to decode signature: %w", err))
			return
		}

		reg, err := cfg.CreateRegistry()
		if err != nil {
			handleError(err)
			return
		}
		defer reg.Store().Close()

		printVerbose("Issuing certificate %s for owner %s as %s", certID, certIssueOwner, caller)

		record, err := reg.IssueCertificate(cmd.Context(), caller, certID,
			certIssueOwner, certIssueMetadata, signature,
			registry.CertificateType(certIssueType), certIssueExpires)
		if err != nil {
			handleError(fmt.Errorf("failed to issue certificate: %w", err))
			return
		}

		if err := printer.PrintCertificate(certID, record); err != nil {
			handleError(err)
		}
	},
}

// batchFile is the JSON shape accepted by cert batch-issue. The slices are
// parallel and must have equal lengths.
type batchFile struct {
	CertIDs         []string `json:"cert_ids"`
	Owners          []string `json:"owners"`
	Metadatas       []string `json:"metadatas"`
	Signatures      []string `json:"signatures"` // base64
	Types           []string `json:"types"`
	ExpirationDates []int64  `json:"expiration_dates"`
}

// certBatchIssueCmd issues certificates in bulk from a JSON file
var certBatchIssueCmd = &cobra.Command{
	Use:   "batch-issue <file>",
	Short: "Issue certificates in bulk",
	Long: `Issue certificates described by a JSON file of parallel arrays.
The batch is not transactional: items that fail are reported while the
rest remain issued.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := getConfig()
		printer := NewPrinter(cfg.OutputFormat, os.Stdout)

		caller, err := cfg.RequireCaller()
		if err != nil {
			handleError(err)
			return
		}

		// #nosec G304 - Batch file path from CLI argument
		data, err := os.ReadFile(args[0])
		if err != nil {
			handleError(fmt.Errorf("failed to read batch file: %w", err))
			return
		}

		var batch batchFile
		if err := json.Unmarshal(data, &batch); err != nil {
			handleError(fmt.Errorf("failed to parse batch file: %w", err))
			return
		}

		signatures := make([][]byte, len(batch.Signatures))
		for i, s := range batch.Signatures {
			signatures[i], err = base64.StdEncoding.DecodeString(s)
			if err != nil {
				handleError(fmt.Errorf("failed to decode signature %d: %w", i, err))
				return
			}
		}
		certTypes := make([]registry.CertificateType, len(batch.Types))
		for i, t := range batch.Types {
			certTypes[i] = registry.CertificateType(t)
		}

		reg, err := cfg.CreateRegistry()
		if err != nil {
			handleError(err)
			return
		}
		defer reg.Store().Close()

		failed, err := reg.BatchIssueCertificates(cmd.Context(), caller,
			batch.CertIDs, batch.Owners, batch.Metadatas, signatures,
			certTypes, batch.ExpirationDates)
		if err != nil {
			handleError(fmt.Errorf("batch issuance failed: %w", err))
			return
		}

		issued := len(batch.CertIDs) - len(failed)
		if len(failed) == 0 {
			if err := printer.PrintSuccess(fmt.Sprintf("Issued %d certificates", issued)); err != nil {
				handleError(err)
			}
			return
		}

		fmt.Fprintf(os.Stderr, "Issued %d of %d certificates; failed ids:\n", issued, len(batch.CertIDs))
		for _, id := range failed {
			fmt.Fprintf(os.Stderr, "  - %s\n", id)
		}
		os.Exit(1)
	},
}

// certGetCmd retrieves a certificate
var certGetCmd = &cobra.Command{
	Use:   "get <cert-id>",
	Short: "Get a certificate",
	Long:  `Retrieve a certificate record from the registry`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		certID := args[0]
		cfg := getConfig()
		printer := NewPrinter(cfg.OutputFormat, os.Stdout)

		reg, err := cfg.CreateRegistry()
		if err != nil {
			handleError(err)
			return
		}
		defer reg.Store().Close()

		record, err := reg.GetCertificate(certID)
		if err != nil {
			handleError(fmt.Errorf("failed to get certificate: %w", err))
			return
		}

		if err := printer.PrintCertificate(certID, record); err != nil {
			handleError(err)
		}
	},
}

// certListCmd lists certificates
var certListCmd = &cobra.Command{
	Use:   "list",
	Short: "List certificates",
	Long: `List certificate ids. With --owner the listing is public and
filtered to that owner; without it the full listing requires the caller
to hold Admin.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := getConfig()
		printer := NewPrinter(cfg.OutputFormat, os.Stdout)

		reg, err := cfg.CreateRegistry()
		if err != nil {
			handleError(err)
			return
		}
		defer reg.Store().Close()

		var ids []string
		if certListOwner != "" {
			ids, err = reg.ListCertificatesByOwner(certListOwner)
		} else {
			var caller string
			caller, err = cfg.RequireCaller()
			if err != nil {
				handleError(err)
				return
			}
			ids, err = reg.ListAllCertificates(cmd.Context(), caller)
		}
		if err != nil {
			handleError(fmt.Errorf("failed to list certificates: %w", err))
			return
		}

		if err := printer.PrintCertIDs(ids); err != nil {
			handleError(err)
		}
	},
}

// certStatusCmd applies a status transition
var certStatusCmd = &cobra.Command{
	Use:   "status <cert-id>",
	Short: "Update certificate status",
	Long: `Apply an explicit status transition (active, revoked, expired,
suspended). The revocation reason is recorded only when the new status
is revoked.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		certID := args[0]
		cfg := getConfig()
		printer := NewPrinter(cfg.OutputFormat, os.Stdout)

		caller, err := cfg.RequireCaller()
		if err != nil {
			handleError(err)
			return
		}

		reg, err := cfg.CreateRegistry()
		if err != nil {
			handleError(err)
			return
		}
		defer reg.Store().Close()

		var reason *string
		if cmd.Flags().Changed("reason") {
			reason = &certStatusReason
		}

		err = reg.UpdateCertificateStatus(cmd.Context(), caller, certID,
			registry.CertificateStatus(certStatusValue), reason)
		if err != nil {
			handleError(fmt.Errorf("failed to update status: %w", err))
			return
		}

		if err := printer.PrintSuccess(fmt.Sprintf("Certificate %s is now %s", certID, certStatusValue)); err != nil {
			handleError(err)
		}
	},
}

// certMetadataCmd updates certificate metadata
var certMetadataCmd = &cobra.Command{
	Use:   "metadata <cert-id>",
	Short: "Update certificate metadata",
	Long:  `Replace the certificate metadata and signature; the version increments by one.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		certID := args[0]
		cfg := getConfig()
		printer := NewPrinter(cfg.OutputFormat, os.Stdout)

		caller, err := cfg.RequireCaller()
		if err != nil {
			handleError(err)
			return
		}

		signature, err := base64.StdEncoding.DecodeString(certMetadataSig)
		if err != nil {
			handleError(fmt.Errorf("failed to decode signature: %w", err))
			return
		}

		reg, err := cfg.CreateRegistry()
		if err != nil {
			handleError(err)
			return
		}
		defer reg.Store().Close()

		err = reg.UpdateCertificateMetadata(cmd.Context(), caller, certID,
			certMetadataValue, signature)
		if err != nil {
			handleError(fmt.Errorf("failed to update metadata: %w", err))
			return
		}

		if err := printer.PrintSuccess(fmt.Sprintf("Updated metadata for %s", certID)); err != nil {
			handleError(err)
		}
	},
}

// certRevokeCmd revokes a certificate
var certRevokeCmd = &cobra.Command{
	Use:   "revoke <cert-id>",
	Short: "Revoke a certificate",
	Long:  `Revoke a certificate. The caller supplied with --as must hold the Revoker role.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		certID := args[0]
		cfg := getConfig()
		printer := NewPrinter(cfg.OutputFormat, os.Stdout)

		caller, err := cfg.RequireCaller()
		if err != nil {
			handleError(err)
			return
		}

		reg, err := cfg.CreateRegistry()
		if err != nil {
			handleError(err)
			return
		}
		defer reg.Store().Close()

		if err := reg.RevokeCertificate(cmd.Context(), caller, certID, certRevokeReason); err != nil {
			handleError(fmt.Errorf("failed to revoke certificate: %w", err))
			return
		}

		if err := printer.PrintSuccess(fmt.Sprintf("Revoked certificate %s", certID)); err != nil {
			handleError(err)
		}
	},
}

// certVerifyCmd verifies a certificate
var certVerifyCmd = &cobra.Command{
	Use:   "verify <cert-id>",
	Short: "Verify a certificate",
	Long: `Compose the verification verdict for a certificate: existence,
validity, metadata hash equality, and signature validity. The signature
check runs only when a public key is supplied.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		certID := args[0]
		cfg := getConfig()
		printer := NewPrinter(cfg.OutputFormat, os.Stdout)

		decode := func(name, value string) []byte {
			if value == "" {
				return nil
			}
			raw, err := base64.StdEncoding.DecodeString(value)
			if err != nil {
				handleError(fmt.Errorf("failed to decode %s: %w", name, err))
				return nil
			}
			return raw
		}

		message := decode("message", certVerifyMsg)
		signature := decode("signature", certVerifySig)
		publicKey := decode("public-key", certVerifyPubKey)

		reg, err := cfg.CreateRegistry()
		if err != nil {
			handleError(err)
			return
		}
		defer reg.Store().Close()

		result, err := reg.VerifyCertificate(certID, certVerifyHash, message, signature, publicKey)
		if err != nil {
			handleError(fmt.Errorf("failed to verify certificate: %w", err))
			return
		}

		if err := printer.PrintVerification(certID, result); err != nil {
			handleError(err)
		}
	},
}

func init() {
	certIssueCmd.Flags().StringVar(&certIssueOwner, "owner", "", "certificate owner (required)")
	certIssueCmd.Flags().StringVar(&certIssueMetadata, "metadata", "", "certificate metadata (required)")
	certIssueCmd.Flags().StringVar(&certIssueSig, "signature", "", "base64 Ed25519 signature (required)")
	certIssueCmd.Flags().StringVar(&certIssueType, "type", "standard",
		"certificate type (standard, professional, academic, technical, membership, custom)")
	certIssueCmd.Flags().Int64Var(&certIssueExpires, "expires", 0, "expiration date as unix seconds (0 = never)")
	_ = certIssueCmd.MarkFlagRequired("owner")
	_ = certIssueCmd.MarkFlagRequired("metadata")
	_ = certIssueCmd.MarkFlagRequired("signature")

	certListCmd.Flags().StringVar(&certListOwner, "owner", "", "filter certificates by owner")

	certStatusCmd.Flags().StringVar(&certStatusValue, "status", "", "new status (required)")
	certStatusCmd.Flags().StringVar(&certStatusReason, "reason", "", "revocation reason (recorded only for revoked)")
	_ = certStatusCmd.MarkFlagRequired("status")

	certMetadataCmd.Flags().StringVar(&certMetadataValue, "metadata", "", "replacement metadata (required)")
	certMetadataCmd.Flags().StringVar(&certMetadataSig, "signature", "", "base64 Ed25519 signature (required)")
	_ = certMetadataCmd.MarkFlagRequired("metadata")
	_ = certMetadataCmd.MarkFlagRequired("signature")

	certRevokeCmd.Flags().StringVar(&certRevokeReason, "reason", "", "revocation reason")

	certVerifyCmd.Flags().StringVar(&certVerifyHash, "hash", "", "expected metadata hash")
	certVerifyCmd.Flags().StringVar(&certVerifyMsg, "message", "", "base64 signed message")
	certVerifyCmd.Flags().StringVar(&certVerifySig, "signature", "", "base64 signature")
	certVerifyCmd.Flags().StringVar(&certVerifyPubKey, "public-key", "", "base64 Ed25519 public key")

	certCmd.AddCommand(certIssueCmd)
	certCmd.AddCommand(certBatchIssueCmd)
	certCmd.AddCommand(certGetCmd)
	certCmd.AddCommand(certListCmd)
	certCmd.AddCommand(certStatusCmd)
	certCmd.AddCommand(certMetadataCmd)
	certCmd.AddCommand(certRevokeCmd)
	certCmd.AddCommand(certVerifyCmd)
}
