// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

package main

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/inkpad/inkpad/internal/eventbus"
	"github.com/inkpad/inkpad/internal/plugin"
	luaplugin "github.com/inkpad/inkpad/internal/plugin/lua"
)

// NewValidateCmd creates the validate subcommand.
func NewValidateCmd() *cobra.Command {
	var activate bool

	cmd := &cobra.Command{
		Use:   "validate <dir>",
		Short: "Validate a script plugin directory",
		Long: `Validate a script plugin: check plugin.yaml against the manifest schema
and compile its Lua entry. With --activate, also install it into an empty
runtime, run its activation and deactivation hooks and report any failure.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			script, err := luaplugin.NewLoader(luaplugin.WithLogger(logger)).Load(args[0])
			if err != nil {
				return err
			}
			m := script.Manifest()

			if activate {
				if err := tryActivate(cmd.Context(), script, logger); err != nil {
					return err
				}
			}

			cmd.Printf("ok: %s %s (%s)\n", m.ID, m.Version, args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&activate, "activate", false, "also run the plugin's activation and deactivation hooks")
	return cmd
}

// tryActivate installs p into a private manager and returns the joined
// plugin errors announced while activating and deactivating it.
func tryActivate(ctx context.Context, p plugin.Plugin, logger *slog.Logger) error {
	bus := eventbus.New(eventbus.WithLogger(logger))
	var errs []error
	bus.On(eventbus.PluginError, func(_ context.Context, ev eventbus.Event) {
		if payload, ok := ev.Payload.(eventbus.PluginErrorPayload); ok {
			errs = append(errs, payload.Err)
		}
	})

	m := plugin.NewManager(bus, plugin.WithLogger(logger), plugin.WithHostVersion(hostVersion()))
	if err := m.Install(ctx, p); err != nil {
		return err
	}
	if err := m.Shutdown(ctx); err != nil {
		return err
	}
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return oops.With("plugin", p.Manifest().ID).Wrap(errors.Join(errs...))
	}
}
