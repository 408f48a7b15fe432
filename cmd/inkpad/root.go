// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/inkpad/inkpad/internal/config"
)

// NewRootCmd creates the root command for the inkpad CLI.
func NewRootCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "inkpad",
		Short: "Inkpad - editor plugin runtime",
		Long: `Inkpad hosts editor plugins: it installs the built-in plugins and
Lua script plugins, drives their lifecycle and exposes the commands,
renderers, themes and toolbar items they register.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (default: XDG_CONFIG_HOME/inkpad/config.yaml)")
	config.BindFlags(cmd.PersistentFlags())

	load := func(c *cobra.Command) (*config.Config, error) {
		return config.Load(configFile, c.Flags())
	}

	cmd.AddCommand(NewRunCmd(load))
	cmd.AddCommand(NewPluginsCmd(load))
	cmd.AddCommand(NewSchemaCmd())
	cmd.AddCommand(NewValidateCmd())

	return cmd
}

// configLoader resolves the effective configuration for a subcommand.
type configLoader func(*cobra.Command) (*config.Config, error)
