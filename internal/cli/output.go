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
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jeremyhahn/go-certregistry/pkg/registry"
)

// OutputFormat defines the output format type
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
)

// Printer handles formatted output
type Printer struct {
	format OutputFormat
	writer io.Writer
}

// NewPrinter creates a new Printer
func NewPrinter(format string, writer io.Writer) *Printer {
	return &Printer{
		format: OutputFormat(format),
		writer: writer,
	}
}

// PrintSuccess prints a success message
func (p *Printer) PrintSuccess(message string) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"success": true,
			"message": message,
		})
	case OutputFormatText:
		fmt.Fprintln(p.writer, message)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintError prints an error message
func (p *Printer) PrintError(err error) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
	default:
		fmt.Fprintf(p.writer, "Error: %v\n", err)
		return nil
	}
}

// PrintCertificate prints a certificate record
func (p *Printer) PrintCertificate(certID string, record *registry.CertificateRecord) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"cert_id":     certID,
			"certificate": record,
		})
	case OutputFormatText:
		fmt.Fprintf(p.writer, "Certificate: %s\n", certID)
		fmt.Fprintf(p.writer, "  Owner:         %s\n", record.Owner)
		fmt.Fprintf(p.writer, "  Issuer:        %s\n", record.Issuer)
		fmt.Fprintf(p.writer, "  Status:        %s\n", record.Status)
		fmt.Fprintf(p.writer, "  Type:          %s\n", record.Metadata.Type)
		fmt.Fprintf(p.writer, "  Version:       %d\n", record.Version)
		fmt.Fprintf(p.writer, "  Metadata Hash: %s\n", record.MetadataHash)
		fmt.Fprintf(p.writer, "  Issued:        %s\n", formatUnix(record.Metadata.IssueDate))
		if record.Metadata.ExpirationDate == 0 {
			fmt.Fprintf(p.writer, "  Expires:       never\n")
		} else {
			fmt.Fprintf(p.writer, "  Expires:       %s\n", formatUnix(record.Metadata.ExpirationDate))
		}
		if record.RevocationReason != nil {
			fmt.Fprintf(p.writer, "  Revocation:    %s\n", *record.RevocationReason)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintCertIDs prints a list of certificate ids
func (p *Printer) PrintCertIDs(ids []string) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"cert_ids": ids,
		})
	case OutputFormatText:
		if len(ids) == 0 {
			fmt.Fprintln(p.writer, "No certificates found")
			return nil
		}
		fmt.Fprintln(p.writer, "Certificates:")
		for _, id := range ids {
			fmt.Fprintf(p.writer, "  - %s\n", id)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintVerification prints a verification verdict
func (p *Printer) PrintVerification(certID string, result *registry.VerificationResult) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"cert_id": certID,
			"result":  result,
		})
	case OutputFormatText:
		fmt.Fprintf(p.writer, "Verification: %s\n", certID)
		fmt.Fprintf(p.writer, "  Exists:          %t\n", result.Exists)
		fmt.Fprintf(p.writer, "  Valid:           %t\n", result.IsValid)
		fmt.Fprintf(p.writer, "  Hash Valid:      %t\n", result.HashValid)
		fmt.Fprintf(p.writer, "  Signature Valid: %t\n", result.SignatureValid)
		if result.Exists {
			fmt.Fprintf(p.writer, "  Status:          %s\n", result.Status)
			fmt.Fprintf(p.writer, "  Owner:           %s\n", result.Owner)
			fmt.Fprintf(p.writer, "  Issuer:          %s\n", result.Issuer)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintRoles prints the roles held by a subject
func (p *Printer) PrintRoles(subject string, roles []string) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"subject": subject,
			"roles":   roles,
		})
	case OutputFormatText:
		if len(roles) == 0 {
			fmt.Fprintf(p.writer, "No roles assigned to %s\n", subject)
			return nil
		}
		fmt.Fprintf(p.writer, "Roles for %s:\n", subject)
		for _, role := range roles {
			fmt.Fprintf(p.writer, "  - %s\n", role)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintAuthority prints a certification authority
func (p *Printer) PrintAuthority(authority *registry.CertificationAuthority) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(authority)
	case OutputFormatText:
		fmt.Fprintf(p.writer, "Authority: %s\n", authority.Subject)
		fmt.Fprintf(p.writer, "  Name:   %s\n", authority.Name)
		fmt.Fprintf(p.writer, "  Active: %t\n", authority.Active)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// printJSON marshals data as indented JSON
func (p *Printer) printJSON(data interface{}) error {
	encoder := json.NewEncoder(p.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// formatUnix renders a unix timestamp for text output
func formatUnix(ts int64) string {
	return time.Unix(ts, 0).UTC().Format(time.RFC3339)
}
