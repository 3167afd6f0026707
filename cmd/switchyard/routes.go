package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sagarc03/switchyard/auth"
	"github.com/sagarc03/switchyard/config"
	switchyardhttp "github.com/sagarc03/switchyard/http"
	"github.com/sagarc03/switchyard/server"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Print the route table",
	Long: `Print every registered route in registration order, which is also
match order. No database or storage is opened.`,
	RunE: runRoutes,
}

var routesJSON bool

func init() {
	routesCmd.Flags().BoolVar(&routesJSON, "json", false, "print the table as JSON")

	rootCmd.AddCommand(routesCmd)
}

func runRoutes(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	secrets, err := server.Secrets(cfg, slog.Default())
	if err != nil {
		return err
	}

	reg, err := server.NewRegistry(cfg, server.Deps{
		Tokens:  auth.NewMemoryTokenStore(),
		Secrets: secrets,
	})
	if err != nil {
		return fmt.Errorf("build registry: %w", err)
	}

	table := switchyardhttp.RouteTable(reg)

	if routesJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(table)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "METHOD\tPATTERN\tPARAMS\tHANDLERS")
	for _, r := range table {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", r.Method, r.Pattern, strings.Join(r.Params, ","), r.Handlers)
	}
	return w.Flush()
}
