package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sgrm/scheduler/internal/delivery"
	"github.com/sgrm/scheduler/internal/platform/locale"
	"github.com/sgrm/scheduler/internal/schedule"
)

func newListCmd() *cobra.Command {
	var day string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the deliveries scheduled for a day",
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
			return printSchedule(cmd.OutOrStdout(), target, schedule.ForDay(all, target, e.loc), e.loc)
		},
	}
	cmd.Flags().StringVarP(&day, "day", "d", "", "day to list (YYYY-MM-DD), defaults to today")
	return cmd
}

func printSchedule(w io.Writer, day string, ds []delivery.Delivery, loc *time.Location) error {
	if len(ds) == 0 {
		_, err := fmt.Fprintf(w, "Nenhuma entrega agendada para %s.\n", locale.Date(day))
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tHORA\tORIGEM\tDESTINO\tITEM\tQTD\tRESPONSÁVEL\tTELEFONE")
	for _, d := range ds {
		clock := d.RequestedAt.Clock()
		if at, ok := d.RequestedAt.Parse(loc); ok {
			clock = locale.Clock(at)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s %s\t%s\t%s\n",
			d.Key(),
			clock,
			d.SourceLocation,
			d.DestinationLocation,
			d.ItemName,
			locale.Quantity(float64(d.ItemQuantity)),
			d.ItemUnit,
			dash(d.ResponsibleName),
			dash(d.ResponsiblePhone),
		)
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
