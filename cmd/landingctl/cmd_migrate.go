package main

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	leadStore "landing/internal/lead/store"
	"landing/internal/platform/config"
	"landing/internal/platform/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply lead store migrations for LEAD_STORE=postgres or sqlite",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	switch cfg.Leads.Store {
	case config.LeadStorePostgres:
		db, err := postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			return err
		}
		defer func(db *sql.DB) { _ = db.Close() }(db)
		if err := leadStore.Migrate(ctx, db, leadStore.DialectPostgres); err != nil {
			return err
		}
	case config.LeadStoreSQLite:
		// OpenSQLite migrates on open.
		s, err := leadStore.OpenSQLite(ctx, cfg.Leads.SQLitePath)
		if err != nil {
			return err
		}
		_ = s.Close()
	default:
		return fmt.Errorf("LEAD_STORE=%s has no schema to migrate", cfg.Leads.Store)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "migrated %s lead store\n", cfg.Leads.Store)
	return nil
}
