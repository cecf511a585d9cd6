// Package env layers environment variables over a persisted ConfigStore.
//
// A key such as "embedding.api_key" is read from SERCHA_RAG_EMBEDDING_API_KEY.
// Variables may also come from .env files loaded with godotenv.
package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Prefix is prepended to every overridable key.
const Prefix = "SERCHA_RAG_"

// Ensure Overlay implements the interface.
var _ driven.ConfigStore = (*Overlay)(nil)

// LoadDotEnv loads each file that exists into the process environment.
// Variables already set are not overwritten. Missing files are skipped.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("stat %s: %w", f, err)
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Overlay reads keys from the environment first and the base store second.
// Writes always go to the base store.
type Overlay struct {
	base   driven.ConfigStore
	lookup func(string) (string, bool)
}

// Option configures an Overlay.
type Option func(*Overlay)

// WithLookup replaces os.LookupEnv, mainly for tests.
func WithLookup(fn func(string) (string, bool)) Option {
	return func(o *Overlay) {
		o.lookup = fn
	}
}

// NewOverlay wraps base with environment overrides.
func NewOverlay(base driven.ConfigStore, opts ...Option) *Overlay {
	o := &Overlay{base: base, lookup: os.LookupEnv}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// VarName returns the environment variable consulted for key.
func VarName(key string) string {
	r := strings.NewReplacer(".", "_", "-", "_")
	return Prefix + strings.ToUpper(r.Replace(key))
}

// fallbackVars are the provider-native variables honoured for API keys.
var fallbackVars = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
}

func (o *Overlay) env(key string) (string, bool) {
	if v, ok := o.lookup(VarName(key)); ok {
		return v, true
	}

	section, field, found := strings.Cut(key, ".")
	if !found || field != "api_key" {
		return "", false
	}
	provider := o.GetString(section + ".provider")
	name, ok := fallbackVars[provider]
	if !ok {
		return "", false
	}
	if v, ok := o.lookup(name); ok && v != "" {
		return v, true
	}
	return "", false
}

// Get retrieves a value, preferring the environment.
func (o *Overlay) Get(key string) (any, bool) {
	if v, ok := o.env(key); ok {
		return v, true
	}
	return o.base.Get(key)
}

// GetString retrieves a string value.
func (o *Overlay) GetString(key string) string {
	if v, ok := o.env(key); ok {
		return v
	}
	return o.base.GetString(key)
}

// GetInt retrieves an integer value. Unparseable overrides read as 0.
func (o *Overlay) GetInt(key string) int {
	if v, ok := o.env(key); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		return n
	}
	return o.base.GetInt(key)
}

// GetFloat retrieves a floating-point value. Unparseable overrides read as 0.
func (o *Overlay) GetFloat(key string) float64 {
	if v, ok := o.env(key); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return f
	}
	return o.base.GetFloat(key)
}

// GetBool retrieves a boolean value. Unparseable overrides read as false.
func (o *Overlay) GetBool(key string) bool {
	if v, ok := o.env(key); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && b
	}
	return o.base.GetBool(key)
}

// GetStringSlice retrieves a slice. Overrides are comma separated.
func (o *Overlay) GetStringSlice(key string) []string {
	if v, ok := o.env(key); ok {
		var out []string
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	return o.base.GetStringSlice(key)
}

// Set persists to the base store.
func (o *Overlay) Set(key string, value any) error { return o.base.Set(key, value) }

// Save persists the base store.
func (o *Overlay) Save() error { return o.base.Save() }

// Load reloads the base store.
func (o *Overlay) Load() error { return o.base.Load() }

// Path returns the base store's path.
func (o *Overlay) Path() string { return o.base.Path() }
