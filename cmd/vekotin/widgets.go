package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oukeidos/vekotin/internal/examples"
	"github.com/oukeidos/vekotin/internal/registry"
)

func newWidgetsCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "widgets",
		Short: "List and install widget bundles",
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.AddCommand(newWidgetsListCmd(opts), newWidgetsSeedCmd(opts))
	return cmd
}

type widgetView struct {
	ID       string            `json:"id" yaml:"id"`
	Name     string            `json:"name" yaml:"name"`
	Path     string            `json:"path" yaml:"path"`
	Active   bool              `json:"active" yaml:"active"`
	Manifest registry.Manifest `json:"manifest" yaml:"manifest"`
}

func newWidgetsListCmd(opts *globalOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List widgets found in the widget folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, formatTable, formatJSON, formatYAML); err != nil {
				return err
			}
			store, err := openStore(opts)
			if err != nil {
				return err
			}
			reg := registry.New(store.WidgetRoot())
			items, err := reg.Refresh()
			if err != nil {
				return err
			}

			views := make([]widgetView, 0, len(items))
			for _, it := range items {
				ws, _ := store.WidgetSettings(it.ID())
				views = append(views, widgetView{
					ID:       it.ID(),
					Name:     it.Name,
					Path:     it.Path,
					Active:   ws.Active,
					Manifest: it.Manifest,
				})
			}

			out := cmd.OutOrStdout()
			switch format {
			case formatJSON:
				return writeJSON(out, views)
			case formatYAML:
				return writeYAML(out, views)
			}
			if len(views) == 0 {
				fmt.Fprintf(out, "No widgets in %s\n", reg.Root())
				return nil
			}
			rows := make([][]string, 0, len(views))
			for _, v := range views {
				active := "no"
				if v.Active {
					active = "yes"
				}
				rows = append(rows, []string{
					v.ID,
					v.Name,
					fmt.Sprintf("%dx%d", v.Manifest.Width, v.Manifest.Height),
					active,
					strings.Join(v.Manifest.Bridges, ","),
				})
			}
			return writeTable(out, []string{"ID", "NAME", "SIZE", "ACTIVE", "BRIDGES"}, rows)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.Flags().StringVarP(&format, "format", "o", formatTable, "Output format: table, json or yaml")
	return cmd
}

func newWidgetsSeedCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Install the example widgets into the widget folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(opts)
			if err != nil {
				return err
			}
			installed, err := examples.Install(store.WidgetRoot())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(installed) == 0 {
				fmt.Fprintln(out, "Example widgets already installed.")
				return nil
			}
			for _, name := range installed {
				fmt.Fprintf(out, "Installed %s\n", name)
			}
			return nil
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}
