package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/mcp"
)

// defaultMCPAddr is used when --http is given without a value.
const defaultMCPAddr = ":8081"

var mcpHTTPAddr string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

Tools: retrieve, ask, stats, verify. Resources: sercha-rag://stats,
sercha-rag://consistency and sercha-rag://retrieve/{query}.

By default, the server communicates over stdio using JSON-RPC. Use --http
to serve the streamable HTTP transport instead.

Examples:
  # Stdio mode (default, for desktop assistants)
  sercha-rag mcp

  # HTTP mode on :8081, or a chosen address
  sercha-rag mcp --http
  sercha-rag mcp --http=127.0.0.1:9000

Assistant configuration:
  {
    "mcpServers": {
      "sercha-rag": {
        "command": "/path/to/sercha-rag",
        "args": ["mcp"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpHTTPAddr, "http", "", "serve over HTTP at this address instead of stdio")
	mcpCmd.Flags().Lookup("http").NoOptDefVal = defaultMCPAddr
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	ports := &mcp.Ports{
		Retrieval: retrievalService,
		Answer:    answerService,
		Stats:     statsService,
		Indexing:  indexingService,
	}

	server, err := mcp.NewServer(ports, mcp.WithDefaultTopK(defaultTopK))
	if err != nil {
		return err
	}

	if mcpHTTPAddr != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://%s\n", displayAddr(mcpHTTPAddr))
		return server.RunHTTP(cmd.Context(), mcpHTTPAddr)
	}

	return server.Run(cmd.Context())
}

// displayAddr fills in localhost for addresses that only name a port.
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
