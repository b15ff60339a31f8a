// cmd/claims-orchestrator/migrate.go
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dental-claims/internal/common/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the embedded database schema migrations",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	zapLog, err := newZapLogger(cfg)
	if err != nil {
		return fmt.Errorf("logger init failed: %w", err)
	}
	defer zapLog.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := openDB(ctx, cfg, zapLog)
	if err != nil {
		return err
	}
	defer db.Close()

	migrations, err := database.Migrations()
	if err != nil {
		return err
	}

	applied, err := database.Migrate(ctx, db, migrations)
	if err != nil {
		zapLog.Error("migration failed", zap.Error(err), zap.Strings("applied", applied))
		return err
	}

	zapLog.Info("all migrations applied successfully",
		zap.Strings("applied", applied),
		zap.Int("known", len(migrations)),
	)
	return nil
}
