package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	"  _       _        _        ",
	" (_)_ __ | |_ __ _| | _____ ",
	" | | '_ \\| __/ _` | |/ / _ \\",
	" | | | | | || (_| |   <  __/",
	" |_|_| |_|\\__\\__,_|_|\\_\\___|",
}

var bannerColors = []string{"#38bdf8", "#22d3ee", "#2dd4bf", "#34d399", "#4ade80"}

// PrintBanner writes the intake banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.EnvColorProfile()
	fmt.Fprintln(w)
	for i, line := range bannerLines {
		fmt.Fprintln(w, termenv.String(line).Foreground(p.Color(bannerColors[i])))
	}
	fmt.Fprintln(w, termenv.String("  insurance survey "+strings.TrimSpace(version)).Faint())
	fmt.Fprintln(w)
}
