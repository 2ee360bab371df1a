package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the sideeye banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"      _     _                    ", "#818cf8"},
		{"  ___(_) __| | ___  ___ _   _  ___ ", "#a78bfa"},
		{" / __| |/ _` |/ _ \\/ _ \\ | | |/ _ \\", "#c084fc"},
		{" \\__ \\ | (_| |  __/  __/ |_| |  __/", "#e879f9"},
		{" |___/_|\\__,_|\\___|\\___|\\__, |\\___|", "#f472b6"},
		{"                        |___/      ", "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintf(w, "  %s\n\n", termenv.String("v"+strings.TrimSpace(version)).Faint())
}
