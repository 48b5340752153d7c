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
	"fmt"
	"os"

	"github.com/jeremyhahn/go-certregistry/pkg/accesscontrol"
	"github.com/spf13/cobra"
)

// initCmd initializes the registry
var initCmd = &cobra.Command{
	Use:   "init <authority>",
	Short: "Initialize the registry",
	Long: `Initialize the registry with the given subject as administrator.
The administrator receives the Admin and Issuer roles. Initialization
can happen exactly once per registry.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		authority := args[0]
		cfg := getConfig()
		printer := NewPrinter(cfg.OutputFormat, os.Stdout)

		reg, err := cfg.CreateRegistry()
		if err != nil {
			handleError(err)
			return
		}
		defer reg.Store().Close()

		if err := reg.Initialize(cmd.Context(), authority); err != nil {
			handleError(fmt.Errorf("failed to initialize registry: %w", err))
			return
		}

		if err := printer.PrintSuccess(fmt.Sprintf("Registry initialized with administrator %s", authority)); err != nil {
			handleError(err)
		}
	},
}

// roleCmd represents the role command
var roleCmd = &cobra.Command{
	Use:   "role",
	Short: "Manage role assignments",
	Long:  `Grant, revoke, and inspect role assignments`,
}

// roleGrantCmd grants a role to a subject
var roleGrantCmd = &cobra.Command{
	Use:   "grant <subject> <role>",
	Short: "Grant a role",
	Long: `Grant a role to a subject. Only the registry administrator can
grant roles. Granting a role the subject already holds is a no-op.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		subject, role := args[0], args[1]
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

		err = reg.Access().GrantRole(cmd.Context(), caller, subject, accesscontrol.Role(role))
		if err != nil {
			handleError(fmt.Errorf("failed to grant role: %w", err))
			return
		}

		if err := printer.PrintSuccess(fmt.Sprintf("Granted %s to %s", role, subject)); err != nil {
			handleError(err)
		}
	},
}

// roleRevokeCmd revokes a role from a subject
var roleRevokeCmd = &cobra.Command{
	Use:   "revoke <subject> <role>",
	Short: "Revoke a role",
	Long:  `Revoke a role from a subject. Revoking a role the subject does not hold is a no-op.`,
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		subject, role := args[0], args[1]
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

		err = reg.Access().RevokeRole(cmd.Context(), caller, subject, accesscontrol.Role(role))
		if err != nil {
			handleError(fmt.Errorf("failed to revoke role: %w", err))
			return
		}

		if err := printer.PrintSuccess(fmt.Sprintf("Revoked %s from %s", role, subject)); err != nil {
			handleError(err)
		}
	},
}

// roleListCmd lists the roles held by a subject
var roleListCmd = &cobra.Command{
	Use:   "list <subject>",
	Short: "List roles",
	Long:  `List the roles held by a subject`,
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

		roles, err := reg.Access().GetRoles(subject)
		if err != nil {
			handleError(fmt.Errorf("failed to list roles: %w", err))
			return
		}

		names := make([]string, len(roles))
		for i, role := range roles {
			names[i] = string(role)
		}

		if err := printer.PrintRoles(subject, names); err != nil {
			handleError(err)
		}
	},
}

// schemaCmd represents the schema command
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Manage the registry schema version",
}

// schemaShowCmd shows the schema version
var schemaShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the schema version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := getConfig()
		printer := NewPrinter(cfg.OutputFormat, os.Stdout)

		reg, err := cfg.CreateRegistry()
		if err != nil {
			handleError(err)
			return
		}
		defer reg.Store().Close()

		version, err := reg.Store().SchemaVersion()
		if err != nil {
			handleError(fmt.Errorf("failed to read schema version: %w", err))
			return
		}

		if err := printer.PrintSuccess(fmt.Sprintf("Schema version: %d", version)); err != nil {
			handleError(err)
		}
	},
}

// schemaUpgradeCmd bumps the schema version
var schemaUpgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Upgrade the schema version",
	Long:  `Bump the registry schema version. Requires the Admin role.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
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

		version, err := reg.UpgradeSchema(cmd.Context(), caller)
		if err != nil {
			handleError(fmt.Errorf("failed to upgrade schema: %w", err))
			return
		}

		if err := printer.PrintSuccess(fmt.Sprintf("Schema upgraded to version %d", version)); err != nil {
			handleError(err)
		}
	},
}

func init() {
	roleCmd.AddCommand(roleGrantCmd)
	roleCmd.AddCommand(roleRevokeCmd)
	roleCmd.AddCommand(roleListCmd)

	schemaCmd.AddCommand(schemaShowCmd)
	schemaCmd.AddCommand(schemaUpgradeCmd)
}
