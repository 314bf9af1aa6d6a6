package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/windbox/internal/app/jukebox"
)

func TestPadToWidth(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  string
	}{
		{"pads ascii", "red", 6, "red   "},
		{"exact", "yellow", 6, "yellow"},
		{"truncates ascii", "a very long name", 8, "a ver..."},
		{"pads wide", "緑", 4, "緑  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := padToWidth(tt.text, tt.width)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.width, runewidth.StringWidth(got))
		})
	}
}

func TestPadToWidth_TruncatesWide(t *testing.T) {
	got := padToWidth("さくらさくらさくら", 10)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, 10, runewidth.StringWidth(got))
}

func TestWriteButtons(t *testing.T) {
	var buf bytes.Buffer
	writeButtons(&buf, []jukebox.ButtonInfo{
		{Name: "green", Source: "2", Tracks: []string{"/songs/green/01.mp3", "/songs/green/02.mp3"}},
		{Name: "black", Source: "22", Autoplay: true, Tracks: []string{"/songs/black/a.ogg"}},
		{Name: "stop", Source: "10"},
	})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)

	assert.True(t, strings.HasPrefix(lines[0], "BUTTON"))
	assert.True(t, strings.HasPrefix(lines[1], "green"))
	assert.Contains(t, lines[1], "single")
	assert.True(t, strings.HasSuffix(lines[1], " 1. 01.mp3"))
	assert.True(t, strings.HasPrefix(lines[2], "      "))
	assert.True(t, strings.HasSuffix(lines[2], " 2. 02.mp3"))
	assert.Contains(t, lines[3], "autoplay")
	assert.Contains(t, lines[4], "stop")
	assert.True(t, strings.HasSuffix(lines[4], " -"))
}
