package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/osa030/windbox/internal/app/jukebox"
	"github.com/osa030/windbox/internal/infra/config"
)

const (
	nameWidth   = 12
	sourceWidth = 8
	modeWidth   = 9
	trackWidth  = 40
)

// listButtons prints every configured button with its resolved tracks.
func listButtons(w io.Writer, cfg *config.Config) error {
	infos, err := jukebox.Describe(cfg, nil)
	if err != nil {
		return err
	}
	writeButtons(w, infos)
	return nil
}

// writeButtons prints one row per track, the button columns only on its first row.
func writeButtons(w io.Writer, infos []jukebox.ButtonInfo) {
	fmt.Fprintf(w, "%s %s %s %s\n",
		padToWidth("BUTTON", nameWidth),
		padToWidth("SOURCE", sourceWidth),
		padToWidth("MODE", modeWidth),
		"TRACKS")

	blank := strings.Repeat(" ", nameWidth+sourceWidth+modeWidth+2)
	for _, info := range infos {
		head := fmt.Sprintf("%s %s %s",
			padToWidth(info.Name, nameWidth),
			padToWidth(info.Source, sourceWidth),
			padToWidth(mode(info), modeWidth))

		if info.IsStop() {
			fmt.Fprintf(w, "%s -\n", head)
			continue
		}
		for i, track := range info.Tracks {
			prefix := blank
			if i == 0 {
				prefix = head
			}
			line := fmt.Sprintf("%2d. %s", i+1, filepath.Base(track))
			fmt.Fprintf(w, "%s %s\n", prefix, strings.TrimRight(padToWidth(line, trackWidth), " "))
		}
	}
}

func mode(info jukebox.ButtonInfo) string {
	switch {
	case info.IsStop():
		return "stop"
	case info.Autoplay:
		return "autoplay"
	default:
		return "single"
	}
}

// padToWidth pads or truncates text to a fixed display width.
// Wide characters count as two columns; truncated text ends with "...".
func padToWidth(text string, width int) string {
	if runewidth.StringWidth(text) > width {
		text = runewidth.Truncate(text, width, "...")
	}
	return runewidth.FillRight(text, width)
}
