package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/knowgrid/knowgrid/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a directory and keep it indexed",
	Long: `Ingests every supported file in the directory, then watches for changes:
new and modified files are re-ingested, deleted files are removed from
the index. Hidden files are ignored. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&ingestDepartment, "department", "", "owning department (default General)")
	watchCmd.Flags().StringVar(&ingestDocType, "doc-type", "", "document category (default Document)")
	watchCmd.Flags().StringVar(&ingestAccessLevel, "access-level", "", "sensitivity label (default Employee)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil || extractor == nil {
		if err := initServices(); err != nil {
			return err
		}
	}

	dir := args[0]
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := ingestDirectory(ctx, cmd, dir); err != nil {
		return err
	}

	w, err := watcher.New(dir)
	if err != nil {
		return err
	}
	defer w.Close()

	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	cmd.Printf("Watching %s (Ctrl-C to stop)\n", dir)

	for {
		select {
		case event, ok := <-w.Events():
			if !ok {
				return nil
			}
			handleWatchEvent(ctx, cmd, event)

		case err := <-errCh:
			if ctx.Err() != nil {
				// Interrupted: normal shutdown.
				cmd.Println("\nStopped.")
				return nil
			}
			return err
		}
	}
}

// ingestDirectory indexes every supported file currently in the
// directory. Unsupported and hidden files are skipped, not errors.
func ingestDirectory(ctx context.Context, cmd *cobra.Command, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || isSkippable(entry.Name()) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		doc, err := loadDocument(path)
		if err != nil {
			cmd.PrintErrf("Skipping %s: %v\n", path, err)
			continue
		}

		result, err := ingestService.Ingest(ctx, doc)
		if err != nil {
			cmd.PrintErrf("Skipping %s: %v\n", path, err)
			continue
		}
		cmd.Printf("Indexed %s: %d chunks\n", doc.Meta.Source, result.ChunksCreated)
	}
	return nil
}

// handleWatchEvent applies one file change to the index.
func handleWatchEvent(ctx context.Context, cmd *cobra.Command, event watcher.Event) {
	source := filepath.Base(event.Path)

	switch event.Type {
	case watcher.ChangeCreated, watcher.ChangeUpdated:
		if isSkippable(source) {
			return
		}
		doc, err := loadDocument(event.Path)
		if err != nil {
			cmd.PrintErrf("Skipping %s: %v\n", event.Path, err)
			return
		}
		result, err := ingestService.Ingest(ctx, doc)
		if err != nil {
			cmd.PrintErrf("Failed to index %s: %v\n", event.Path, err)
			return
		}
		cmd.Printf("Indexed %s: %d chunks\n", source, result.ChunksCreated)

	case watcher.ChangeDeleted:
		removed, err := ingestService.Remove(ctx, source)
		if err != nil {
			cmd.PrintErrf("Failed to remove %s: %v\n", source, err)
			return
		}
		if removed > 0 {
			cmd.Printf("Removed %s (%d chunks)\n", source, removed)
		}
	}
}

// isSkippable filters files the watcher should never index.
func isSkippable(name string) bool {
	if name == "" || name[0] == '.' {
		return true
	}
	return !extractor.Supports(filepath.Ext(name))
}
