package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/knowgrid/knowgrid/internal/core/domain"
)

var (
	ingestDepartment  string
	ingestDocType     string
	ingestAccessLevel string
	ingestSection     string
	ingestSource      string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Index documents into the knowledge base",
	Long: `Reads the given files, splits them into overlapping chunks and indexes
them with department ownership metadata. Re-ingesting a file replaces
its previous chunks.

Supported formats: plain text (.txt, .log, .csv, ...) and markdown (.md).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

var removeCmd = &cobra.Command{
	Use:   "remove [source]",
	Short: "Remove a document's chunks from the index",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestDepartment, "department", "", "owning department (default General)")
	ingestCmd.Flags().StringVar(&ingestDocType, "doc-type", "", "document category (default Document)")
	ingestCmd.Flags().StringVar(&ingestAccessLevel, "access-level", "", "sensitivity label (default Employee)")
	ingestCmd.Flags().StringVar(&ingestSection, "section", "", "section heading applied to all chunks")
	ingestCmd.Flags().StringVar(&ingestSource, "source", "", "source identifier (default: file name, single file only)")
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(removeCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil || extractor == nil {
		if err := initServices(); err != nil {
			return err
		}
	}

	if ingestSource != "" && len(args) > 1 {
		return errors.New("--source can only be used with a single file")
	}

	ctx := context.Background()
	total := 0
	for _, path := range args {
		doc, err := loadDocument(path)
		if err != nil {
			return err
		}

		result, err := ingestService.Ingest(ctx, doc)
		if err != nil {
			return fmt.Errorf("ingest %s: %w", path, err)
		}

		cmd.Printf("Indexed %s: %d chunks (department: %s)\n",
			doc.Meta.Source, result.ChunksCreated, doc.Meta.Normalize().Department)
		total += result.ChunksCreated
	}

	if len(args) > 1 {
		cmd.Printf("Done: %d files, %d chunks\n", len(args), total)
	}
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		if err := initServices(); err != nil {
			return err
		}
	}

	removed, err := ingestService.Remove(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("remove %s: %w", args[0], err)
	}

	if removed == 0 {
		cmd.Printf("No chunks found for %s\n", args[0])
	} else {
		cmd.Printf("Removed %d chunks of %s\n", removed, args[0])
	}
	return nil
}

// loadDocument reads a file and extracts its text for ingestion.
func loadDocument(path string) (domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("read %s: %w", path, err)
	}

	format := filepath.Ext(path)
	if !extractor.Supports(format) {
		return domain.Document{}, fmt.Errorf("unsupported format %q for %s", format, path)
	}

	extracted, err := extractor.Extract(data, format)
	if err != nil {
		return domain.Document{}, fmt.Errorf("extract %s: %w", path, err)
	}

	source := ingestSource
	if source == "" {
		source = filepath.Base(path)
	}

	return domain.Document{
		Text: extracted.Text,
		Meta: domain.DocumentMeta{
			Source:      source,
			Department:  ingestDepartment,
			DocType:     ingestDocType,
			AccessLevel: ingestAccessLevel,
			Section:     ingestSection,
		},
	}, nil
}
