package tags

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2/v2"
)

// createMinimalMP3 creates a minimal valid MP3 file for testing.
// Returns MP3 frame header + padding (417 bytes total for 128kbps frame).
func createMinimalMP3(t *testing.T, path string) {
	t.Helper()
	// MP3 frame header (MPEG1 Layer3, 128kbps, 44100Hz, stereo) + padding
	mp3Frame := make([]byte, 417)
	mp3Frame[0] = 0xff
	mp3Frame[1] = 0xfb
	mp3Frame[2] = 0x90
	mp3Frame[3] = 0x00

	if err := os.WriteFile(path, mp3Frame, 0o600); err != nil {
		t.Fatalf("failed to create test MP3: %v", err)
	}
}

// tagMP3 opens path for tagging, lets edit add frames and saves it.
func tagMP3(t *testing.T, path string, edit func(*id3v2.Tag)) {
	t.Helper()
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("failed to open MP3 for tagging: %v", err)
	}
	edit(tag)
	if err := tag.Save(); err != nil {
		t.Fatalf("failed to save ID3 tags: %v", err)
	}
	tag.Close()
}

func TestRead_MP3(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.mp3")
	createMinimalMP3(t, path)
	tagMP3(t, path, func(tag *id3v2.Tag) {
		tag.SetTitle("Test Title")
		tag.SetArtist("Test Artist")
		tag.SetAlbum("Test Album")
		tag.SetYear("2024")
		tag.SetGenre("Rock")
		tag.AddTextFrame("TRCK", id3v2.EncodingUTF8, "3/12")
		tag.AddTextFrame("TPOS", id3v2.EncodingUTF8, "1/2")
		tag.AddTextFrame("TPE2", id3v2.EncodingUTF8, "Test Album Artist")
	})

	info, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}

	if info.Path != path {
		t.Errorf("Path = %q, want %q", info.Path, path)
	}
	if info.Title != "Test Title" {
		t.Errorf("Title = %q, want %q", info.Title, "Test Title")
	}
	if info.Artist != "Test Artist" {
		t.Errorf("Artist = %q, want %q", info.Artist, "Test Artist")
	}
	if info.Album != "Test Album" {
		t.Errorf("Album = %q, want %q", info.Album, "Test Album")
	}
	if info.AlbumArtist != "Test Album Artist" {
		t.Errorf("AlbumArtist = %q, want %q", info.AlbumArtist, "Test Album Artist")
	}
	if info.Year() != 2024 {
		t.Errorf("Year() = %d, want %d", info.Year(), 2024)
	}
	if info.TrackNumber != 3 || info.TotalTracks != 12 {
		t.Errorf("Track = %d/%d, want 3/12", info.TrackNumber, info.TotalTracks)
	}
	if info.DiscNumber != 1 || info.TotalDiscs != 2 {
		t.Errorf("Disc = %d/%d, want 1/2", info.DiscNumber, info.TotalDiscs)
	}
}

func TestRead_MP3FullDateFromID3v23(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.mp3")
	createMinimalMP3(t, path)
	tagMP3(t, path, func(tag *id3v2.Tag) {
		tag.SetVersion(3)
		tag.SetTitle("Old")
		tag.AddTextFrame("TYER", id3v2.EncodingISO, "2019")
		tag.AddTextFrame("TDAT", id3v2.EncodingISO, "2503")
	})

	info, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if info.Date != "2019-03-25" {
		t.Errorf("Date = %q, want %q", info.Date, "2019-03-25")
	}
	if info.Year() != 2019 {
		t.Errorf("Year() = %d, want 2019", info.Year())
	}
}

func TestRead_Missing(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "nope.flac")); err == nil {
		t.Error("Read() on a missing file returned no error")
	}
}

func TestReadOrUntagged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Field Recording.wav")
	if err := os.WriteFile(path, []byte("not really audio"), 0o600); err != nil {
		t.Fatal(err)
	}

	got := ReadOrUntagged(path)
	if got.Title != "Field Recording" {
		t.Errorf("Title = %q, want %q", got.Title, "Field Recording")
	}
	if got.Artist != "" || got.Album != "" {
		t.Errorf("untagged file has artist %q album %q", got.Artist, got.Album)
	}
	if got.Path != path {
		t.Errorf("Path = %q, want %q", got.Path, path)
	}
}

func TestCache(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.mp3")
	b := filepath.Join(dir, "b.mp3")
	createMinimalMP3(t, a)
	createMinimalMP3(t, b)
	tagMP3(t, a, func(tag *id3v2.Tag) { tag.SetTitle("First") })

	var c Cache
	first := c.Get(a)
	if first.Title != "First" {
		t.Errorf("Title = %q, want %q", first.Title, "First")
	}
	if c.Get(a) != first {
		t.Error("second Get of the same path read the file again")
	}

	tagMP3(t, a, func(tag *id3v2.Tag) { tag.SetTitle("Changed") })
	if got := c.Get(a).Title; got != "First" {
		t.Errorf("cached Title = %q, want %q", got, "First")
	}

	if got := c.Get(b); got == first {
		t.Error("Get of another path returned the cached entry")
	}
	if got := c.Get(a).Title; got != "Changed" {
		t.Errorf("Title after switching back = %q, want %q", got, "Changed")
	}
}
