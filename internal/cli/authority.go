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
	"fmt"
	"os"

	"github.com/jeremyhahn/go-certregistry/pkg/registry"
	"github.com/spf13/cobra"
)

var (
	authorityName   string
	authorityKey    string
	authorityActive bool
)

// authorityCmd represents the authority command
var authorityCmd = &cobra.Command{
	Use:   "authority",
	Short: "Manage certification authorities",
	Long:  `Register, update, and inspect certification authorities`,
}

// authorityAddCmd registers a certification authority
var authorityAddCmd = &cobra.Command{
	Use:   "add <subject>",
	Short: "Register a certification authority",
	Long: `Register a certification authority. The caller supplied with --as
must hold the AuthorityManager role.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runAuthorityUpsert(cmd, args[0], false)
	},
}

// authorityUpdateCmd updates a certification authority
var authorityUpdateCmd = &cobra.Command{
	Use:   "update <subject>",
	Short: "Update a certification authority",
	Long:  `Replace a registered certification authority`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runAuthorityUpsert(cmd, args[0], true)
	},
}

// authorityGetCmd shows a certification authority
var authorityGetCmd = &cobra.Command{
	Use:   "get <subject>",
	Short: "Get a certification authority",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		subject := args[0]
		cfg := getConfig()
		printer := NewPrinter(cfg.OutputFormat, os.Stdout)

		reg, err := cfg.CreateRegistry()
		if err != nil {
			handleError(err)
			return
		}
		defer reg.Store().Close()

		authority, err := reg.GetAuthority(subject)
		if err != nil {
			handleError(fmt.Errorf("failed to get authority: %w", err))
			return
		}

		if err := printer.PrintAuthority(authority); err != nil {
			handleError(err)
		}
	},
}

// runAuthorityUpsert runs the shared add/update path.
func runAuthorityUpsert(cmd *cobra.Command, subject string, update bool) {
	cfg := getConfig()
	printer := NewPrinter(cfg.OutputFormat, os.Stdout)

	caller, err := cfg.RequireCaller()
	if err != nil {
		handleError(err)
		return
	}

	key, err := base64.StdEncoding.DecodeString(authorityKey)
	if err != nil {
		handleError(fmt.Errorf("failed to decode verification key: %w", err))
		return
	}

	reg, err := cfg.CreateRegistry()
	if err != nil {
		handleError(err)
		return
	}
	defer reg.Store().Close()

	authority := &registry.CertificationAuthority{
		Name:            authorityName,
		Subject:         subject,
		VerificationKey: key,
		Active:          authorityActive,
	}

	if update {
		err = reg.UpdateAuthority(cmd.Context(), caller, authority)
	} else {
		err = reg.AddAuthority(cmd.Context(), caller, authority)
	}
	if err != nil {
		handleError(fmt.Errorf("failed to save authority: %w", err))
		return
	}

	if err := printer.PrintSuccess(fmt.Sprintf("Saved authority %s", subject)); err != nil {
		handleError(err)
	}
}

func init() {
	for _, cmd := range []*cobra.Command{authorityAddCmd, authorityUpdateCmd} {
		cmd.Flags().StringVar(&authorityName, "name", "", "authority display name (required)")
		cmd.Flags().StringVar(&authorityKey, "key", "", "base64 Ed25519 verification key (required)")
		cmd.Flags().BoolVar(&authorityActive, "active", true, "whether the authority is active")
		_ = cmd.MarkFlagRequired("name")
		_ = cmd.MarkFlagRequired("key")
	}

	authorityCmd.AddCommand(authorityAddCmd)
	authorityCmd.AddCommand(authorityUpdateCmd)
	authorityCmd.AddCommand(authorityGetCmd)
}
