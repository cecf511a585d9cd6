package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the JSON HTTP API used by web front ends.

Endpoints:
  GET  /health     liveness check
  POST /chat       {"query": "...", "top_k": 3} -> answer, citations, metrics
  POST /ingest     rebuild the index -> build report
  GET  /dashboard  document, chunk and vector counts`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8000", "listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ports := &httpapi.Ports{
		Answer:   answerService,
		Indexing: indexingService,
		Stats:    statsService,
	}

	server, err := httpapi.NewServer(ports, httpapi.WithDefaultTopK(defaultTopK))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "HTTP API listening on http://%s\n", displayAddr(serveAddr))
	return server.Run(cmd.Context(), serveAddr)
}
