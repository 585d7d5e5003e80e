package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	`     _                                       `,
	`    | | ___  _   _ _ __ _ __   ___ _   _ ___ `,
	` _  | |/ _ \| | | | '__| '_ \ / _ \ | | / __|`,
	`| |_| | (_) | |_| | |  | | | |  __/ |_| \__ \`,
	` \___/ \___/ \__,_|_|  |_| |_|\___|\__, |___/`,
	`                                   |___/     `,
}

// Teal to indigo, one stop per line.
var bannerColors = []string{"#2dd4bf", "#22d3ee", "#38bdf8", "#60a5fa", "#818cf8", "#a78bfa"}

// PrintBanner writes the previewer banner to w, coloured when the
// terminal supports it.
func PrintBanner(w io.Writer) {
	p := termenv.NewOutput(w).ColorProfile()

	fmt.Fprintln(w)
	for i, line := range bannerLines {
		fmt.Fprintln(w, p.String(line).Foreground(p.Color(bannerColors[i])))
	}
	fmt.Fprintln(w)
}
