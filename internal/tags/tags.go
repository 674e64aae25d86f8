// Package tags reads descriptive metadata from media files.
package tags

import (
	"path/filepath"
	"strconv"
	"strings"
)

// File extensions with format-specific handling.
const (
	ExtMP3  = ".mp3"
	ExtFLAC = ".flac"
	ExtOGG  = ".ogg"
	ExtWAV  = ".wav"
)

// Tag contains the descriptive metadata of a media file.
type Tag struct {
	Path        string
	Title       string
	Artist      string
	AlbumArtist string
	Album       string
	Genre       string

	TrackNumber int
	TotalTracks int
	DiscNumber  int
	TotalDiscs  int

	Date string // YYYY-MM-DD or YYYY
}

// Year derives the year from the Date field.
// Returns 0 if Date is empty or cannot be parsed.
func (t *Tag) Year() int {
	if t.Date == "" {
		return 0
	}
	year := t.Date
	if len(year) > 4 {
		year = year[:4]
	}
	y, _ := strconv.Atoi(year)
	return y
}

// Subtitle joins artist and album, skipping the empty ones.
func (t *Tag) Subtitle() string {
	parts := make([]string, 0, 2)
	if t.Artist != "" {
		parts = append(parts, t.Artist)
	}
	if t.Album != "" {
		parts = append(parts, t.Album)
	}
	return strings.Join(parts, " - ")
}

// Untagged returns the metadata of a file without tags: only the title,
// derived from the file name.
func Untagged(path string) *Tag {
	return &Tag{Path: path, Title: baseTitle(path)}
}

func baseTitle(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// yearToDate converts a year integer to a date string.
// Returns empty string for year 0.
func yearToDate(year int) string {
	if year == 0 {
		return ""
	}
	return strconv.Itoa(year)
}
