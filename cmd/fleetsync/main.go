package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fleetsync/internal/app"
	"fleetsync/internal/config"
	"fleetsync/internal/logging"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fleetsync",
		Short: "Telematics CSV ingestion service",
		Long: `fleetsync ingests fleet-tracking CSV exports into Postgres,
deduplicating client and vehicle entities and tolerating malformed fields,
mixed encodings and partial record failures.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(resetCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup(ctx context.Context) (*app.App, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New()
	if err != nil {
		return nil, nil, err
	}
	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return application, logger, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the ingestion HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, logger, err := setup(ctx)
			if err != nil {
				return err
			}
			defer application.Close()
			defer logger.Sync()

			if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("server stopped with error", zap.Error(err))
				return err
			}
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate [file...]",
		Short: "Bulk-ingest CSV files, smallest first",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			application, logger, err := setup(ctx)
			if err != nil {
				return err
			}
			defer application.Close()
			defer logger.Sync()

			results, err := application.Ingest().MigrateFiles(ctx, args)
			for _, res := range results {
				if res.Error != "" {
					fmt.Printf("%-40s FAILED: %s\n", res.Filename, res.Error)
					continue
				}
				fmt.Printf("%-40s processed=%d failed=%d vehicles=%d clients=%d\n",
					res.Filename, res.RecordsProcessed, res.RecordsFailed,
					res.UniqueVehicles, res.UniqueClients)
			}
			return err
		},
	}
}

func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent ingestion runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			application, logger, err := setup(ctx)
			if err != nil {
				return err
			}
			defer application.Close()
			defer logger.Sync()

			runs, err := application.History().List(ctx, limit)
			if err != nil {
				return err
			}
			for _, h := range runs {
				fmt.Printf("%s  %-30s %-10s processed=%d failed=%d\n",
					h.UploadTimestamp.Format(time.RFC3339), h.Filename,
					h.Status, h.RecordsProcessed, h.RecordsFailed)
				if h.ErrorMessage != "" {
					fmt.Printf("    error: %s\n", h.ErrorMessage)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 10, "Maximum runs to show")
	return cmd
}

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show fleet-wide statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			application, logger, err := setup(ctx)
			if err != nil {
				return err
			}
			defer application.Close()
			defer logger.Sync()

			s, err := application.Records().FleetSummary(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("Vehicles:       %d\n", s.TotalVehicles)
			fmt.Printf("Clients:        %d\n", s.TotalClients)
			fmt.Printf("Records:        %d\n", s.TotalRecords)
			if s.DateRangeStart != nil && s.DateRangeEnd != nil {
				fmt.Printf("Date range:     %s .. %s\n",
					s.DateRangeStart.Format("2006-01-02"), s.DateRangeEnd.Format("2006-01-02"))
			}
			fmt.Printf("Avg speed:      %.1f km/h\n", s.AvgSpeedKMH)
			fmt.Printf("Max speed:      %.1f km/h\n", s.MaxSpeedKMH)
			fmt.Printf("Total distance: %.1f km\n", s.TotalDistance)
			fmt.Printf("GPS coverage:   %.1f%%\n", s.GPSCoveragePct)
			return nil
		},
	}
}

func resetCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all telematics records and processing history",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to delete data without --yes")
			}
			ctx := cmd.Context()
			application, logger, err := setup(ctx)
			if err != nil {
				return err
			}
			defer application.Close()
			defer logger.Sync()

			records, err := application.Records().DeleteAll(ctx)
			if err != nil {
				return err
			}
			history, err := application.History().DeleteAll(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("deleted %d records, %d history rows\n", records, history)
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return cmd
}
