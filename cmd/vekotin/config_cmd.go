package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tidwall/gjson"

	"github.com/oukeidos/vekotin/internal/apperrors"
	"github.com/oukeidos/vekotin/internal/config"
	"github.com/oukeidos/vekotin/internal/files"
	"github.com/oukeidos/vekotin/internal/widget"
)

func newConfigCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and edit widget settings",
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.AddCommand(
		newConfigShowCmd(opts),
		newConfigPathCmd(opts),
		newConfigGetCmd(opts),
		newConfigSetCmd(opts),
		newConfigRootCmd(opts),
	)
	return cmd
}

func newConfigShowCmd(opts *globalOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the configuration document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, formatJSON, formatYAML); err != nil {
				return err
			}
			store, err := openStore(opts)
			if err != nil {
				return err
			}
			if format == formatYAML {
				return writeYAML(cmd.OutOrStdout(), store.Snapshot())
			}
			return writeJSON(cmd.OutOrStdout(), store.Snapshot())
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.Flags().StringVarP(&format, "format", "o", formatJSON, "Output format: json or yaml")
	return cmd
}

func newConfigPathCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file and widget folder paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "config:  %s\nwidgets: %s\n", store.Path(), store.WidgetRoot())
			return nil
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

func newConfigGetCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <path>",
		Short: "Query the saved document with a path such as Widgets.clock.WindowX",
		Long: "Query the saved document with a gjson path. Escape dots inside widget ids\n" +
			"with a backslash, e.g. Widgets.my\\.widget.Active.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(opts)
			if err != nil {
				return err
			}
			data, err := files.ReadLimited(store.Path(), files.MaxDocumentSize)
			if err != nil {
				return apperrors.IO("Failed to read configuration file", err)
			}
			if !gjson.ValidBytes(data) {
				return apperrors.Parse("Configuration file is malformed", nil)
			}
			res := gjson.GetBytes(data, args[0])
			if !res.Exists() {
				return apperrors.InvalidArgument(fmt.Sprintf("no value at %q", args[0]))
			}
			out := res.String()
			if res.IsObject() || res.IsArray() {
				out = res.Raw
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

// flagValue exposes a config.Flag as a command-line flag accepting true,
// false or unset. A bare --name means true.
type flagValue struct {
	target *config.Flag
}

func (v flagValue) String() string {
	if v.target == nil {
		return config.FlagUnset.String()
	}
	return v.target.String()
}

func (v flagValue) Set(s string) error {
	f, err := config.ParseFlag(s)
	if err != nil {
		return err
	}
	*v.target = f
	return nil
}

func (v flagValue) Type() string { return "true|false|unset" }

var _ pflag.Value = flagValue{}

type configSetOptions struct {
	active bool
	x, y   int
	flags  map[widget.FlagName]*config.Flag
}

func newConfigSetCmd(opts *globalOptions) *cobra.Command {
	setOpts := configSetOptions{flags: make(map[widget.FlagName]*config.Flag)}
	cmd := &cobra.Command{
		Use:   "set <widget-id>",
		Short: "Change the stored settings of a widget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd, opts, &setOpts, args[0])
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)

	flagSet := cmd.Flags()
	flagSet.BoolVar(&setOpts.active, "active", false, "Open the widget on the next start")
	flagSet.IntVar(&setOpts.x, "x", 0, "Window X position")
	flagSet.IntVar(&setOpts.y, "y", 0, "Window Y position")
	for _, name := range widget.FlagNames {
		f := new(config.Flag)
		setOpts.flags[name] = f
		flagSet.Var(flagValue{target: f}, string(name), name.Label()+" (true, false or unset)")
		flagSet.Lookup(string(name)).NoOptDefVal = "true"
	}
	return cmd
}

func runConfigSet(cmd *cobra.Command, opts *globalOptions, setOpts *configSetOptions, id string) error {
	flagSet := cmd.Flags()
	changed := flagSet.Changed("active") || flagSet.Changed("x") || flagSet.Changed("y")
	for _, name := range widget.FlagNames {
		changed = changed || flagSet.Changed(string(name))
	}
	if !changed {
		return apperrors.InvalidArgument("nothing to change; pass at least one setting flag")
	}
	store, err := openStore(opts)
	if err != nil {
		return err
	}

	ws, ok := store.WidgetSettings(id)
	if !ok {
		ws = config.WidgetSettings{WindowX: widget.DefaultPosition, WindowY: widget.DefaultPosition}
	}
	if flagSet.Changed("active") {
		ws.Active = setOpts.active
	}
	if flagSet.Changed("x") {
		ws.WindowX = setOpts.x
	}
	if flagSet.Changed("y") {
		ws.WindowY = setOpts.y
	}
	for _, name := range widget.FlagNames {
		if flagSet.Changed(string(name)) {
			name.Set(&ws, *setOpts.flags[name])
		}
	}

	if err := store.SetWidgetSettings(id, ws); err != nil {
		return err
	}
	if err := store.Save(); err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), ws)
}

func newConfigRootCmd(opts *globalOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "root <path>",
		Short: "Set the widget folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := filepath.Abs(args[0])
			if err != nil {
				return apperrors.InvalidArgument(fmt.Sprintf("invalid widget folder %q", args[0]))
			}
			if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
				ok, err := newConfirmer().Confirm(fmt.Sprintf("Widget folder %s does not exist. Use it anyway?", root), yes)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
			}
			store, err := openStore(opts)
			if err != nil {
				return err
			}
			if err := store.SetWidgetRoot(root); err != nil {
				return err
			}
			if err := store.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Widget folder set to %s\n", store.WidgetRoot())
			return nil
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask before using a folder that does not exist")
	return cmd
}
