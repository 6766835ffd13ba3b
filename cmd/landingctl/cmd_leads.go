package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"landing/internal/lead/models"
	leadStore "landing/internal/lead/store"
	"landing/internal/platform/config"
	"landing/internal/platform/postgres"
)

var leadsLimit int

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "List the most recent leads from the configured lead store",
	RunE:  runLeads,
}

func init() {
	leadsCmd.Flags().IntVarP(&leadsLimit, "limit", "n", 20, "how many leads to show (0 for all)")
}

type leadLister interface {
	List(ctx context.Context, limit int) ([]*models.Lead, error)
}

func runLeads(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	var lister leadLister
	switch cfg.Leads.Store {
	case config.LeadStoreFile:
		lister = leadStore.NewFile(cfg.Leads.File)
	case config.LeadStoreSQLite:
		s, err := leadStore.OpenSQLite(ctx, cfg.Leads.SQLitePath)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()
		lister = s
	case config.LeadStorePostgres:
		db, err := postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		lister = leadStore.NewPostgres(db)
	default:
		return fmt.Errorf("LEAD_STORE=%s is not persistent", cfg.Leads.Store)
	}

	leads, err := lister.List(ctx, leadsLimit)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CREATED\tPHONE\tEMAIL\tID")
	for _, l := range leads {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", l.CreatedAt.Format(time.RFC3339), l.Phone, l.Email, l.ID)
	}
	return tw.Flush()
}
