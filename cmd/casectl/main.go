// Command casectl works on the case records offline: listing, CSV transfer,
// bulk status changes and deletions, and the storage migration. It reads the
// same configuration as the server and must not run while the server is
// writing the same files.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/JustJay7/barangay-case-dashboard/internal/cache"
	"github.com/JustJay7/barangay-case-dashboard/internal/config"
	"github.com/JustJay7/barangay-case-dashboard/internal/database"
	"github.com/JustJay7/barangay-case-dashboard/internal/metrics"
	"github.com/JustJay7/barangay-case-dashboard/internal/service"
	"github.com/JustJay7/barangay-case-dashboard/internal/storage"
	"github.com/JustJay7/barangay-case-dashboard/pkg/logger"
	"github.com/spf13/cobra"
)

// app carries what every subcommand needs once the root has opened storage.
type app struct {
	verbose bool

	cfg  *config.Config
	log  *logger.Logger
	repo *storage.Repository
	svc  *service.Service
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "casectl",
		Short: "Manage barangay case records from the command line",
		Long: `casectl reads and changes the case records used by the case tracker server.

It selects storage the same way the server does: the cases file when file
storage is enabled and usable, the fallback database otherwise.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(
		newListCmd(a),
		newImportCmd(a),
		newExportCmd(a),
		newStatusCmd(a),
		newDeleteCmd(a),
		newMigrateCmd(a),
		newSummaryCmd(a),
	)
	return root
}

func (a *app) open(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	level := "warn"
	if a.verbose {
		level = "debug"
	}
	log, err := logger.NewLogger(level, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Initialize(cfg.FallbackDBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	m := metrics.New()
	repo, err := storage.Open(ctx, cfg, db, log, m)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = log
	a.repo = repo
	a.svc = service.NewService(repo, db, cache.NewCache(cfg.CacheSize, cfg.CacheTTL), m, log)
	return nil
}

// load runs the one-shot migration and reads the case set.
func (a *app) load(ctx context.Context) error {
	if _, err := a.repo.Init(ctx); err != nil {
		return fmt.Errorf("failed to load cases: %w", err)
	}
	return nil
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
