package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the aacflow ASCII art banner and version.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	// Using a subtle gradient-like color scheme (Teal/Sky)
	lines := []struct {
		text  string
		color string
	}{
		{"   __ _  __ _  ___ / _| | _____      __", "#2dd4bf"},
		{"  / _` |/ _` |/ __| |_| |/ _ \\ \\ /\\ / /", "#22d3ee"},
		{" | (_| | (_| | (__|  _| | (_) \\ V  V / ", "#38bdf8"},
		{"  \\__,_|\\__,_|\\___|_| |_|\\___/ \\_/\\_/  ", "#60a5fa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  v"+version).Faint())
	fmt.Fprintln(w)
}

// Verdict colours a run outcome: green when verified, amber when best effort.
func Verdict(sentence string, verified bool) string {
	p := termenv.ColorProfile()
	if verified {
		return termenv.String(sentence).Foreground(p.Color("#22c55e")).Bold().String()
	}
	return termenv.String(sentence + " (unverified)").Foreground(p.Color("#f59e0b")).String()
}
