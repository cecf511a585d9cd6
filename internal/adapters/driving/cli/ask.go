package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

var (
	askTopK int
	askJSON bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the indexed documents",
	Long: `Retrieves the chunks most similar to the question and asks the
configured LLM to answer using only those sources. Prints the answer,
its citations and timing metrics.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of chunks given to the model (default from settings)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	answer, err := answerService.Ask(cmd.Context(), args[0], resolveTopK(askTopK))
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		data, err := json.MarshalIndent(answer, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal answer: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	printAnswer(cmd, answer)
	return nil
}

func printAnswer(cmd *cobra.Command, a *domain.Answer) {
	cmd.Println(a.Answer)
	cmd.Println()

	if len(a.Citations) == 0 {
		cmd.Println("Sources: none retrieved")
	} else {
		cmd.Println("Sources:")
		for i, c := range a.Citations {
			cmd.Printf("  [%d] %s | %s | vector_id=%d | score=%s\n",
				i+1, c.DocumentName, formatSection(c.PageOrSection), c.VectorID, formatScore(c.Score))
		}
	}
	cmd.Println()

	m := a.Metrics
	cmd.Printf("retrieval %.1fms | prompt %.1fms | llm %.1fms | total %.1fms | %d chunks | %d prompt chars | %d answer chars\n",
		m.RetrievalMS, m.PromptBuildMS, m.LLMCallMS, m.TotalLatencyMS, m.ChunksUsed, m.PromptChars, m.AnswerChars)
}
