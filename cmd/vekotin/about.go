package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oukeidos/vekotin/internal/registry"
	"github.com/oukeidos/vekotin/internal/version"
)

const projectURL = "https://github.com/oukeidos/vekotin"

func newAboutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "about",
		Short: "Describe the widget host and its build",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s hosts HTML desktop widgets on Windows.\n", version.AppName)
			fmt.Fprintf(out, "Version %s (commit %s, built %s)\n", version.Version, version.Commit, version.BuildDate)
			fmt.Fprintf(out, "Each widget folder needs a %s; bridges: %s\n",
				registry.ManifestFileName, strings.Join(registry.KnownBridges, ", "))
			fmt.Fprintln(out, projectURL)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}
