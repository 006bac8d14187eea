// Command catalogctl runs catalog maintenance tasks against the same
// database as the HTTP server: report imports, migrations and PIN hashing.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/M0hammed2o/midlands-price-checker-backend/internal/config"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/infra"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "catalogctl",
		Short:        "Price checker catalog maintenance",
		SilenceUsage: true,
	}
	root.AddCommand(newImportCmd(), newMigrateCmd(), newHashPINCmd())
	return root
}

// openDatabase loads config from the environment and opens (and migrates)
// the configured database.
func openDatabase() (*gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return infra.NewDatabase(infra.DatabaseOptions{
		Driver:        cfg.DBDriver,
		DSN:           cfg.DatabaseURL,
		BusyTimeoutMS: cfg.BusyTimeoutMS,
	})
}
