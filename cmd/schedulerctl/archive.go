package main

import (
	"fmt"
	"os"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/sgrm/scheduler/internal/delivery/export"
	"github.com/sgrm/scheduler/internal/platform/cache"
	"github.com/sgrm/scheduler/jobs"
)

func newArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Manifest archive commands",
	}
	cmd.AddCommand(newArchiveRunCmd(), newArchiveEnqueueCmd(), newArchiveGetCmd())
	return cmd
}

func newArchiveRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [day...]",
		Short: "Render and archive manifests now, defaults to today and tomorrow",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()

			rdb, err := cache.New(ctx, cache.Options{Addr: e.cfg.RedisAddr, Password: e.cfg.RedisPassword, DB: e.cfg.RedisDB})
			if err != nil {
				return err
			}
			defer rdb.Close()

			job := jobs.NewManifestArchiveJob(e.service, e.exporter, export.NewArchive(rdb, e.cfg.ManifestArchiveTTL), e.loc, e.logger, nil)
			days, err := job.Run(ctx, args)
			if err != nil {
				return err
			}
			for _, day := range days {
				fmt.Fprintln(cmd.OutOrStdout(), export.ArchiveKey(day))
			}
			return nil
		},
	}
}

func newArchiveEnqueueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enqueue [day...]",
		Short: "Queue a manifest archive task for the worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			client := jobs.NewClient(asynq.RedisClientOpt{Addr: e.cfg.RedisAddr, Password: e.cfg.RedisPassword, DB: e.cfg.RedisDB})
			defer client.Close()

			info, err := client.EnqueueManifestArchive(cmd.Context(), jobs.ManifestArchivePayload{Days: args})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "enqueued %s on %s\n", info.ID, info.Queue)
			return nil
		},
	}
}

func newArchiveGetCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "get <day>",
		Short: "Write an archived manifest to disk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			day, err := resolveDay(args[0], e.loc)
			if err != nil {
				return err
			}
			rdb, err := cache.New(cmd.Context(), cache.Options{Addr: e.cfg.RedisAddr, Password: e.cfg.RedisPassword, DB: e.cfg.RedisDB})
			if err != nil {
				return err
			}
			defer rdb.Close()

			pdf, err := export.NewArchive(rdb, e.cfg.ManifestArchiveTTL).Load(cmd.Context(), day)
			if err != nil {
				return err
			}
			if output == "" {
				output = export.ManifestFileName(day)
			}
			if err := os.WriteFile(output, pdf, 0o644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, defaults to the manifest file name")
	return cmd
}
