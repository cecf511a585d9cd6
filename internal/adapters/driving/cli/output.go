package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by -o.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// render writes v in format, calling text for the human-readable form.
func render(cmd *cobra.Command, format string, v any, text func()) error {
	switch strings.ToLower(format) {
	case "", formatText:
		text()
		return nil
	case formatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal json: %w", err)
		}
		cmd.Println(string(data))
		return nil
	case formatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		cmd.Print(string(data))
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
	}
}

// preview collapses whitespace and truncates s to n runes.
func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func formatScore(score *float32) string {
	if score == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", *score)
}

func formatSection(section *string) string {
	if section == nil || *section == "" {
		return "N/A"
	}
	return *section
}
