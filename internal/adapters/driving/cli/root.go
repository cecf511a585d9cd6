// Package cli implements the sercha-rag command line with cobra.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// Global flags.
var (
	verbose   bool
	configDir string
)

// Level says how much of the application a command needs.
type Level int

const (
	// LevelNone skips bootstrap entirely.
	LevelNone Level = iota
	// LevelSettings opens the config store only.
	LevelSettings
	// LevelStores adds the vector index and metadata store.
	LevelStores
	// LevelFull adds the embedding and LLM clients.
	LevelFull
)

// levelAnnotation marks a command with the Level it needs. Commands
// without it inherit their parent's, and LevelFull at the root.
const levelAnnotation = "sercha-rag/level"

var levelNames = map[string]Level{
	"none":     LevelNone,
	"settings": LevelSettings,
	"stores":   LevelStores,
	"full":     LevelFull,
}

// Services holds the driving ports a command may use. Fields a Level
// does not reach are nil.
type Services struct {
	Settings  driving.SettingsService
	Stats     driving.StatsService
	Indexing  driving.IndexingService
	Retrieval driving.RetrievalService
	Answer    driving.AnswerService

	// DocumentsDir is the directory watched by 'index --watch'.
	DocumentsDir string

	// TopK is the configured default result count.
	TopK int

	// Close releases everything the bootstrap opened.
	Close func() error
}

// Bootstrap builds services for the given config directory and Level.
type Bootstrap func(ctx context.Context, configDir string, level Level) (*Services, error)

var (
	bootstrap Bootstrap

	settingsService  driving.SettingsService
	statsService     driving.StatsService
	indexingService  driving.IndexingService
	retrievalService driving.RetrievalService
	answerService    driving.AnswerService
	documentsDir     string
	defaultTopK      = 3
	closeServices    func() error
)

var rootCmd = &cobra.Command{
	Use:   "sercha-rag",
	Short: "Local retrieval-augmented question answering",
	Long: `sercha-rag indexes a directory of documents into a vector index and
answers questions grounded in the passages it retrieves.

Start with 'sercha-rag settings' to pick providers, then 'sercha-rag index'
to build the index, then 'sercha-rag ask' or 'sercha-rag chat'.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.sercha-rag)")
}

// SetVersion sets the version reported by 'sercha-rag version'.
func SetVersion(v string) {
	version = v
}

// SetBootstrap installs the function that wires services before a command runs.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices installs already-built services.
func SetServices(s *Services) {
	if s == nil {
		return
	}
	settingsService = s.Settings
	statsService = s.Stats
	indexingService = s.Indexing
	retrievalService = s.Retrieval
	answerService = s.Answer
	documentsDir = s.DocumentsDir
	if s.TopK > 0 {
		defaultTopK = s.TopK
	}
	closeServices = s.Close
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	level := levelFor(cmd)
	if level == LevelNone || bootstrap == nil {
		return nil
	}

	s, err := bootstrap(cmd.Context(), configDir, level)
	if err != nil {
		return err
	}
	SetServices(s)
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	if closeServices == nil {
		return nil
	}
	closeFn := closeServices
	closeServices = nil
	return closeFn()
}

// levelFor walks from cmd up to the root looking for a level annotation.
func levelFor(cmd *cobra.Command) Level {
	for c := cmd; c != nil; c = c.Parent() {
		if name, ok := c.Annotations[levelAnnotation]; ok {
			if level, known := levelNames[name]; known {
				return level
			}
		}
	}
	return LevelFull
}

func withLevel(name string) map[string]string {
	return map[string]string{levelAnnotation: name}
}

// resolveTopK returns k when positive, else the configured default.
func resolveTopK(k int) int {
	if k > 0 {
		return k
	}
	return defaultTopK
}

var (
	errNoSettings  = errors.New("settings service not configured")
	errNoIndexing  = errors.New("indexing service not configured")
	errNoRetrieval = errors.New("retrieval service not configured")
	errNoStats     = errors.New("stats service not configured")
)
