package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"landing/internal/platform/mongo"
	"landing/internal/project/seed"
	projectService "landing/internal/project/service"
	projectStore "landing/internal/project/store"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert projects from a YAML seed file into MongoDB (idempotent)",
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "configs/projects.seed.yaml", "seed file")
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	file, err := seed.LoadFile(seedFile)
	if err != nil {
		return err
	}
	client, err := mongo.New(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	if client == nil {
		return errors.New("MONGO_URI is required to seed projects")
	}
	defer func() { _ = client.Close(ctx) }()

	store := projectStore.NewMongo(client.Collection(cfg.Mongo.Collection))
	if err := store.EnsureIndexes(ctx); err != nil {
		return err
	}
	res, err := seed.Apply(ctx, projectService.New(store), file)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created %d, skipped %d\n", res.Created, res.Skipped)
	return nil
}
