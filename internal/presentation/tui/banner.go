package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the tapevm banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	// Using a subtle gradient-like color scheme (Indigo/Violet)
	s1 := termenv.String("  _                              ").Foreground(p.Color("#818cf8"))
	s2 := termenv.String(" | |_ __ _ _ __   _____   ___ __ ").Foreground(p.Color("#a78bfa"))
	s3 := termenv.String(" | __/ _` | '_ \\ / _ \\ \\ / / '  \\").Foreground(p.Color("#c084fc"))
	s4 := termenv.String(" | || (_| | |_) |  __/\\ V /| | | |").Foreground(p.Color("#e879f9"))
	s5 := termenv.String("  \\__\\__,_| .__/ \\___| \\_/ |_|_|_|").Foreground(p.Color("#f472b6"))
	s6 := termenv.String("          |_|                     ").Foreground(p.Color("#fb7185"))

	fmt.Fprintln(w)
	for _, s := range []termenv.Style{s1, s2, s3, s4, s5, s6} {
		fmt.Fprintln(w, s)
	}
	fmt.Fprintln(w)
}
