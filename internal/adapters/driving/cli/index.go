package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/connectors/filesystem"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

var (
	indexWatch    bool
	indexDebounce time.Duration
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the vector index from the documents directory",
	Long: `Loads every supported document (.txt, .md, .pdf) under the documents
directory, splits it into overlapping chunks, embeds the chunks and
replaces the vector index and metadata in one step.

With --watch, the index is rebuilt whenever the directory changes.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVarP(&indexWatch, "watch", "w", false, "rebuild when documents change")
	indexCmd.Flags().DurationVar(&indexDebounce, "debounce", filesystem.DefaultDebounce, "quiet period before a watched rebuild")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	if indexingService == nil {
		return errNoIndexing
	}

	ctx := cmd.Context()
	report, err := indexingService.Build(ctx)
	if report != nil {
		printBuildReport(cmd, report)
	}
	if err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}

	if !indexWatch {
		return nil
	}
	if documentsDir == "" {
		return fmt.Errorf("%w: documents directory is not set", domain.ErrInvalidConfig)
	}

	cmd.Printf("Watching %s (ctrl+c to stop)\n", documentsDir)
	watcher := filesystem.NewWatcher(documentsDir, indexDebounce)
	return watcher.Run(ctx, func(ctx context.Context) error {
		report, err := indexingService.TryBuild(ctx)
		if errors.Is(err, domain.ErrBuildInProgress) {
			return nil
		}
		if report != nil {
			printBuildReport(cmd, report)
		}
		return err
	})
}

func printBuildReport(cmd *cobra.Command, r *domain.BuildReport) {
	cmd.Println("Build complete")
	cmd.Printf("  Build ID:   %s\n", r.BuildID)
	cmd.Printf("  Documents:  %d\n", r.Documents)
	cmd.Printf("  Chunks:     %d\n", r.Chunks)
	cmd.Printf("  Vectors:    %d\n", r.Vectors)
	cmd.Printf("  Metadata:   %d\n", r.MetadataInserted)
	cmd.Printf("  Dimension:  %d\n", r.Dimension)
	cmd.Printf("  Duration:   %s\n", r.Duration.Round(time.Millisecond))
	if r.Partial {
		cmd.Println("  Warning: index published but metadata was not activated; run 'sercha-rag verify'")
	}
}
