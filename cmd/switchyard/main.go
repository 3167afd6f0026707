package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/switchyard/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "switchyard",
	Short:   "Routing and middleware dispatch server",
	Long: `Switchyard serves an ordered registry of routes, prefix-scoped
middleware and error handlers over HTTP, together with demo services for
tokens, file uploads and a small user and book catalog.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFiles, _ := cmd.Flags().GetStringSlice("config")

		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return err
		}

		setupLogging(cfg)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSlice("config", nil, "config file paths, merged left to right (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("db-type", "", "database type: sqlite, postgres (default: sqlite, env: SWITCHYARD_DATABASE_TYPE)")
	rootCmd.PersistentFlags().String("db-dsn", "", "database connection string (default: switchyard.db, env: SWITCHYARD_DATABASE_DSN)")
	rootCmd.PersistentFlags().String("storage-path", "", "upload directory (default: ./uploads, env: SWITCHYARD_STORAGE_PATH)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (env: SWITCHYARD_LOG_LEVEL)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
