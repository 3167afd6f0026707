package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sagarc03/switchyard/config"
	"github.com/sagarc03/switchyard/filesystem"
	"github.com/sagarc03/switchyard/upload"
)

var removeCmd = &cobra.Command{
	Use:   "remove [flags] <path1> [path2] ...",
	Short: "Remove files from upload storage",
	Long: `Delete files from the upload directory served under /files.

Examples:
  # Remove a single file
  switchyard remove myfile.txt

  # Remove multiple files
  switchyard remove file1.txt file2.txt file3.txt

  # Remove all files with a prefix (e.g., a directory)
  switchyard remove --prefix images/

  # Remove quietly (suppress per-file output)
  switchyard remove -q file.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRemove,
}

var (
	removePrefix bool
	removeQuiet  bool
)

func init() {
	removeCmd.Flags().BoolVarP(&removePrefix, "prefix", "p", false, "treat paths as prefixes and remove all matching files")
	removeCmd.Flags().BoolVarP(&removeQuiet, "quiet", "q", false, "suppress per-file output")
	rootCmd.AddCommand(removeCmd)
}

type removeOptions struct {
	prefix bool
	quiet  bool
}

func runRemove(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	store, err := filesystem.Open(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	service := upload.NewService(store, upload.ServiceConfig{MaxSize: cfg.Server.MaxUploadSize})

	removed, notFound, err := removeFiles(ctx, service, args, removeOptions{prefix: removePrefix, quiet: removeQuiet})
	if err != nil {
		return err
	}

	slog.Info("remove complete", "removed", removed, "not_found", notFound)
	return nil
}

// removeFiles deletes every path, or with opts.prefix every stored file
// starting with one of paths. Missing files are counted, not failed.
func removeFiles(ctx context.Context, service *upload.Service, paths []string, opts removeOptions) (removed, notFound int, err error) {
	for _, path := range paths {
		targets := []string{path}
		if opts.prefix {
			entries, err := service.List(ctx, path)
			if err != nil {
				return removed, notFound, fmt.Errorf("list prefix %s: %w", path, err)
			}
			targets = targets[:0]
			for _, e := range entries {
				targets = append(targets, e.Path)
			}
		}

		for _, target := range targets {
			err := service.Delete(ctx, target)
			if errors.Is(err, upload.ErrNotFound) {
				notFound++
				if !opts.quiet {
					slog.Warn("not found", "path", target)
				}
				continue
			}
			if err != nil {
				return removed, notFound, fmt.Errorf("remove %s: %w", target, err)
			}

			removed++
			if !opts.quiet {
				slog.Info("removed", "path", target)
			}
		}
	}
	return removed, notFound, nil
}
