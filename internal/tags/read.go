package tags

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dhowden/tag"
)

// Read reads tag metadata from a media file.
func Read(path string) (*Tag, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		if strings.ToLower(filepath.Ext(path)) == ExtMP3 {
			// dhowden/tag has issues with some UTF-16 encoded ID3 tags
			return readID3(path)
		}
		return nil, err
	}

	t := &Tag{
		Path:        path,
		Title:       m.Title(),
		Artist:      m.Artist(),
		AlbumArtist: m.AlbumArtist(),
		Album:       m.Album(),
		Genre:       m.Genre(),
		Date:        yearToDate(m.Year()),
	}
	t.TrackNumber, t.TotalTracks = m.Track()
	t.DiscNumber, t.TotalDiscs = m.Disc()
	if m.FileType() == tag.MP3 {
		if d := mp3FullDate(path); d != "" {
			t.Date = d
		}
	}
	t.fillDefaults()

	return t, nil
}

// fillDefaults titles the tag after its file and credits the album to the
// track artist when those fields are empty.
func (t *Tag) fillDefaults() {
	if t.Title == "" {
		t.Title = baseTitle(t.Path)
	}
	if t.AlbumArtist == "" {
		t.AlbumArtist = t.Artist
	}
}

// ReadOrUntagged reads tag metadata, falling back to the file name when
// the file has no readable tags.
func ReadOrUntagged(path string) *Tag {
	t, err := Read(path)
	if err != nil {
		return Untagged(path)
	}
	return t
}

// Cache remembers the metadata of recently read files. The zero value is
// ready to use.
type Cache struct {
	mu    sync.Mutex
	path  string
	entry *Tag
}

// Get returns the metadata of path, reading it only when path differs
// from the previous call.
func (c *Cache) Get(path string) *Tag {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entry != nil && c.path == path {
		return c.entry
	}
	c.path = path
	c.entry = ReadOrUntagged(path)
	return c.entry
}
