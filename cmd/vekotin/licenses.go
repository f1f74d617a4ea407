package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oukeidos/vekotin/internal/licenses"
)

func newLicensesCmd() *cobra.Command {
	var notices bool
	cmd := &cobra.Command{
		Use:   "licenses",
		Short: "Show the license and third-party notices",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := licenses.LicenseText()
			if notices {
				text = licenses.NoticesText()
			}
			if text == "" {
				return fmt.Errorf("embedded license text is empty")
			}
			_, err := cmd.OutOrStdout().Write([]byte(text))
			return err
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.Flags().BoolVar(&notices, "notices", false, "Print third-party license notices")
	return cmd
}
