// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

// NewPluginsCmd creates the plugins command group.
func NewPluginsCmd(load configLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "Inspect installed plugins",
	}
	cmd.AddCommand(newPluginsListCmd(load))
	return cmd
}

func newPluginsListCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List plugins with their state and registered capabilities",
		Long: `Install every plugin as "run" would, print one line per plugin, then
shut the runtime down again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return oops.Wrapf(err, "invalid configuration")
			}
			logger := newLogger(cmd, cfg)

			ctx := cmd.Context()
			rt := newRuntime(cfg, logger)
			if err := rt.start(ctx, cfg, logger); err != nil {
				return err
			}
			defer func() {
				if err := rt.manager.Shutdown(context.WithoutCancel(ctx)); err != nil {
					logger.Warn("plugin shutdown interrupted", "error", err)
				}
			}()

			return printPlugins(cmd.OutOrStdout(), rt)
		},
	}
}

func printPlugins(out io.Writer, rt *runtime) error {
	m := rt.manager
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tVERSION\tSOURCE\tSTATE\tCOMMANDS\tRENDERERS\tTHEMES\tTOOLBAR")
	for _, info := range m.Plugins() {
		id := info.Manifest.ID
		state := "inactive"
		if info.Active {
			state = "active"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			id,
			info.Manifest.Name,
			info.Manifest.Version,
			rt.sources[id],
			state,
			len(m.Commands().OwnedBy(id)),
			len(m.Renderers().OwnedBy(id)),
			len(m.Themes().OwnedBy(id)),
			len(m.Toolbar().OwnedBy(id)),
		)
	}
	return w.Flush()
}
