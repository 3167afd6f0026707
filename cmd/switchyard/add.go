package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sagarc03/switchyard/config"
	"github.com/sagarc03/switchyard/filesystem"
	"github.com/sagarc03/switchyard/upload"
)

var addCmd = &cobra.Command{
	Use:   "add [flags] <file1> [file2] ...",
	Short: "Copy files into upload storage",
	Long: `Copy local files into the upload directory served under /files.

Files are stored under their base name, or under their path relative to
the directory given when adding recursively.

Examples:
  # Add a single file
  switchyard add /path/to/file.txt

  # Add with a destination prefix
  switchyard add --dest images/ /path/to/photo.jpg

  # Add a directory recursively
  switchyard add -r /path/to/assets

  # Skip existing files
  switchyard add --no-clobber /path/to/file.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var (
	addDest      string
	addRecursive bool
	addNoClobber bool
	addQuiet     bool
)

func init() {
	addCmd.Flags().StringVarP(&addDest, "dest", "d", "", "destination path prefix in storage")
	addCmd.Flags().BoolVarP(&addRecursive, "recursive", "r", false, "recursively add directories")
	addCmd.Flags().BoolVarP(&addNoClobber, "no-clobber", "n", false, "skip existing files instead of overwriting")
	addCmd.Flags().BoolVarP(&addQuiet, "quiet", "q", false, "suppress per-file output")
	rootCmd.AddCommand(addCmd)
}

// fileEntry is a local file and the storage path it is added under.
type fileEntry struct {
	sourcePath string
	destPath   string
}

type addOptions struct {
	noClobber bool
	quiet     bool
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	var files []fileEntry
	for _, arg := range args {
		entries, err := collectFiles(arg, addRecursive, addDest)
		if err != nil {
			return fmt.Errorf("collect files from %s: %w", arg, err)
		}
		files = append(files, entries...)
	}

	if len(files) == 0 {
		slog.Info("no files to add")
		return nil
	}

	store, err := filesystem.Open(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	service := upload.NewService(store, upload.ServiceConfig{MaxSize: cfg.Server.MaxUploadSize})

	added, skipped, err := addFiles(ctx, service, files, addOptions{noClobber: addNoClobber, quiet: addQuiet})
	if err != nil {
		return err
	}

	slog.Info("add complete", "added", added, "skipped", skipped)
	return nil
}

// addFiles copies every entry into service, stopping at the first failure.
func addFiles(ctx context.Context, service *upload.Service, files []fileEntry, opts addOptions) (added, skipped int, err error) {
	for _, entry := range files {
		if opts.noClobber {
			exists, err := fileExists(ctx, service, entry.destPath)
			if err != nil {
				return added, skipped, err
			}
			if exists {
				skipped++
				if !opts.quiet {
					slog.Info("skipped (exists)", "path", entry.destPath)
				}
				continue
			}
		}

		f, err := os.Open(entry.sourcePath)
		if err != nil {
			return added, skipped, fmt.Errorf("open %s: %w", entry.sourcePath, err)
		}

		saved, err := service.Save(ctx, entry.destPath, f)
		_ = f.Close()
		if err != nil {
			return added, skipped, fmt.Errorf("add %s: %w", entry.destPath, err)
		}

		added++
		if !opts.quiet {
			slog.Info("added", "path", saved.Path, "size", saved.Size, "content_type", saved.ContentType)
		}
	}
	return added, skipped, nil
}

func fileExists(ctx context.Context, service *upload.Service, name string) (bool, error) {
	f, err := service.Open(ctx, name)
	if errors.Is(err, upload.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check %s: %w", name, err)
	}
	_ = f.Close()
	return true, nil
}

// collectFiles lists the files under path. Directories require recursive.
// Destination paths use forward slashes and start with destPrefix.
func collectFiles(path string, recursive bool, destPrefix string) ([]fileEntry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	destPrefix = strings.TrimPrefix(destPrefix, "/")
	if destPrefix != "" && !strings.HasSuffix(destPrefix, "/") {
		destPrefix += "/"
	}

	if !info.IsDir() {
		return []fileEntry{{sourcePath: path, destPath: destPrefix + filepath.Base(path)}}, nil
	}

	if !recursive {
		return nil, fmt.Errorf("%s is a directory (use -r to add recursively)", path)
	}

	var entries []fileEntry
	err = filepath.WalkDir(path, func(walkPath string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(path, walkPath)
		if err != nil {
			return err
		}

		entries = append(entries, fileEntry{
			sourcePath: walkPath,
			destPath:   destPrefix + filepath.ToSlash(rel),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}
