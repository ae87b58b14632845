package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"geoimages/internal/app"
	"geoimages/internal/config"
	"geoimages/internal/domain/photo"
	"geoimages/internal/pkg/logging"
)

var (
	workers int
	outFile string

	minLat, minLon, maxLat, maxLon string
	latRef, lonRef                 string
)

var rootCmd = &cobra.Command{
	Use:          "geoctl",
	Short:        "Manage the geotagged image index",
	Long:         `Command line access to the image index: bulk import of JPEG folders, bounding-box queries and schema migration.`,
	SilenceUsage: true,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the index schema",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

var importCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Ingest every JPEG below a directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Write a zip of the images inside a bounding box",
	Args:  cobra.NoArgs,
	RunE:  runQuery,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <signature>...",
	Short: "Delete images and their index records",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDelete,
}

func init() {
	importCmd.Flags().IntVarP(&workers, "workers", "w", 0, "Number of worker goroutines (default IMPORT_WORKERS)")

	queryCmd.Flags().StringVar(&minLat, "min-lat", "", "Minimum latitude as D-M-S")
	queryCmd.Flags().StringVar(&minLon, "min-lon", "", "Minimum longitude as D-M-S")
	queryCmd.Flags().StringVar(&maxLat, "max-lat", "", "Maximum latitude as D-M-S")
	queryCmd.Flags().StringVar(&maxLon, "max-lon", "", "Maximum longitude as D-M-S")
	queryCmd.Flags().StringVar(&latRef, "lat-ref", "N", "Latitude reference")
	queryCmd.Flags().StringVar(&lonRef, "lon-ref", "E", "Longitude reference")
	queryCmd.Flags().StringVarP(&outFile, "out", "o", photo.ArchiveDir+".zip", "Output archive path")
	for _, f := range []string{"min-lat", "min-lon", "max-lat", "max-lon"} {
		_ = queryCmd.MarkFlagRequired(f)
	}

	rootCmd.AddCommand(migrateCmd, importCmd, queryCmd, deleteCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, logging.New(cfg.IsProdLike()))
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	n := workers
	if n <= 0 {
		n = a.Config.ImportWorkers
	}

	summary, err := app.ImportDir(cmd.Context(), a.Service, args[0], n, a.Logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "created %d, already indexed %d, failed %d\n", summary.Created, summary.Existing, len(summary.Failed))

	failed := make([]string, 0, len(summary.Failed))
	for path := range summary.Failed {
		failed = append(failed, path)
	}
	sort.Strings(failed)
	for _, path := range failed {
		fmt.Fprintf(out, "  %s: %v\n", path, summary.Failed[path])
	}
	return nil
}

func runQuery(cmd *cobra.Command, _ []string) error {
	box, err := photo.ParseBoundingBox(minLat, minLon, maxLat, maxLon, latRef, lonRef)
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	data, n, err := a.Service.Archive(cmd.Context(), box)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outFile, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d images to %s\n", n, outFile)
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	for _, sig := range args {
		if err := a.Service.Delete(cmd.Context(), sig); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "File %s deleted!\n", sig)
	}
	return nil
}
