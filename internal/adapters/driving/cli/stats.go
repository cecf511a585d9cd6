package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	statsFormat  string
	verifyFormat string
)

// errInconsistent makes 'verify' exit non-zero when the stores disagree.
var errInconsistent = errors.New("vector index and metadata store disagree")

var statsCmd = &cobra.Command{
	Use:         "stats",
	Short:       "Show document, chunk and vector counts",
	Args:        cobra.NoArgs,
	Annotations: withLevel("stores"),
	RunE:        runStats,
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that every vector has metadata and vice versa",
	Long: `Compares the vector IDs in the index with the IDs in the active
metadata build and lists any that appear on only one side.`,
	Args:        cobra.NoArgs,
	Annotations: withLevel("stores"),
	RunE:        runVerify,
}

func init() {
	statsCmd.Flags().StringVarP(&statsFormat, "output", "o", formatText, "output format: text, json or yaml")
	verifyCmd.Flags().StringVarP(&verifyFormat, "output", "o", formatText, "output format: text, json or yaml")
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(verifyCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if statsService == nil {
		return errNoStats
	}

	stats, err := statsService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("stats failed: %w", err)
	}

	return render(cmd, statsFormat, stats, func() {
		buildID := stats.BuildID
		if buildID == "" {
			buildID = "(none)"
		}
		cmd.Println("[Index]")
		cmd.Printf("  Documents:        %d\n", stats.Documents)
		cmd.Printf("  Chunks:           %d\n", stats.Chunks)
		cmd.Printf("  Vectors:          %d\n", stats.Vectors)
		cmd.Printf("  Indexed vectors:  %d\n", stats.IndexedVectors)
		cmd.Printf("  Dimension:        %d\n", stats.Dimension)
		cmd.Printf("  Active build:     %s\n", buildID)
	})
}

func runVerify(cmd *cobra.Command, _ []string) error {
	if indexingService == nil {
		return errNoIndexing
	}

	report, err := indexingService.Verify(cmd.Context())
	if err != nil {
		return fmt.Errorf("verify failed: %w", err)
	}

	err = render(cmd, verifyFormat, report, func() {
		cmd.Printf("Index vectors:    %d\n", report.IndexCount)
		cmd.Printf("Metadata rows:    %d\n", report.MetadataCount)
		if report.Consistent() {
			cmd.Println("Consistent: yes")
			return
		}
		cmd.Println("Consistent: no")
		if len(report.MissingMetadata) > 0 {
			cmd.Printf("  Vectors without metadata: %v\n", report.MissingMetadata)
		}
		if len(report.MissingVectors) > 0 {
			cmd.Printf("  Metadata without vectors: %v\n", report.MissingVectors)
		}
	})
	if err != nil {
		return err
	}
	if !report.Consistent() {
		return errInconsistent
	}
	return nil
}
