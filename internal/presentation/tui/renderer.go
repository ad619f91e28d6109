package tui

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/aacflow/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(100),
	)
	if err != nil {
		// Fall back to the raw markdown rather than failing the command.
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// TraceMarkdown lays out a debug trace as a markdown table.
func TraceMarkdown(res *domain.Result) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "## Run `%s`\n\n", res.RunID)
	fmt.Fprintf(&sb, "- **User:** %s\n", res.UserID)
	fmt.Fprintf(&sb, "- **Intent:** %s\n", res.Intent)
	fmt.Fprintf(&sb, "- **Attempts:** %d\n", res.Attempts)
	fmt.Fprintf(&sb, "- **Verified:** %t\n\n", res.Verified)

	sb.WriteString("| # | Step | Inputs | Outputs |\n")
	sb.WriteString("|---|------|--------|---------|\n")
	for i, e := range res.DebugTrace {
		fmt.Fprintf(&sb, "| %d | %s | %s | %s |\n", i+1, e.Step, cell(e.Inputs), cell(e.Outputs))
	}
	return sb.String()
}

// cell renders a snapshot map as `key=value` pairs in key order.
func cell(m map[string]any) string {
	if len(m) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v, err := json.Marshal(m[k])
		if err != nil {
			v = []byte(fmt.Sprint(m[k]))
		}
		parts = append(parts, fmt.Sprintf("%s=%s", k, v))
	}
	s := strings.Join(parts, "<br>")
	return strings.ReplaceAll(s, "|", "\\|")
}
