package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sgrm/scheduler/internal/delivery/export"
	"github.com/sgrm/scheduler/internal/schedule"
)

func newManifestCmd() *cobra.Command {
	var (
		day    string
		ids    string
		output string
	)
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Render the manifest PDF of a day",
		Long: "Render the manifest PDF of a day. Without --ids every delivery of the day " +
			"is included; otherwise only the listed identifiers are.",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			target, err := resolveDay(day, e.loc)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()

			all, err := e.service.List(ctx)
			if err != nil {
				return err
			}
			visible := schedule.ForDay(all, target, e.loc)
			sel := schedule.NewSelection()
			if ids == "" {
				sel.SetAll(visible, true)
			} else {
				sel = schedule.DecodeSelection(ids)
			}
			rows := schedule.ForReport(visible, sel, e.loc)

			pdf, err := e.exporter.Manifest(ctx, target, rows)
			if err != nil {
				return err
			}
			if output == "" {
				output = export.ManifestFileName(target)
			}
			if err := os.WriteFile(output, pdf, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d entregas)\n", output, len(rows))
			return nil
		},
	}
	cmd.Flags().StringVarP(&day, "day", "d", "", "manifest day (YYYY-MM-DD), defaults to today")
	cmd.Flags().StringVar(&ids, "ids", "", "comma separated delivery identifiers")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, defaults to the manifest file name")
	return cmd
}
