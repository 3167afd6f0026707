package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sagarc03/switchyard/config"
	"github.com/sagarc03/switchyard/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database tables",
	Long: `Create the users, books and refresh token tables if they are missing
and validate their schema.`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	dbCfg := cfg.Database
	dbCfg.AutoMigrate = true

	db, err := database.Open(ctx, dbCfg)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	defer func() { _ = db.Close() }()

	slog.Info("database migration complete",
		"type", dbCfg.Type,
		"users", dbCfg.Tables.Users,
		"books", dbCfg.Tables.Books,
		"refresh_tokens", dbCfg.Tables.RefreshTokens,
	)
	return nil
}
