package tags

import (
	"strconv"
	"strings"

	"github.com/bogem/id3v2/v2"
)

// id3Frames reads ID3v2 frames directly, for what dhowden/tag drops or
// misreads.
type id3Frames struct {
	*id3v2.Tag
}

func openID3(path string) (id3Frames, error) {
	t, err := id3v2.Open(path, id3v2.Options{Parse: true})
	return id3Frames{t}, err
}

func (f id3Frames) text(id string) string {
	for _, fr := range f.GetFrames(id) {
		if tf, ok := fr.(id3v2.TextFrame); ok {
			return tf.Text
		}
	}
	return ""
}

// position reads an "n/total" frame such as TRCK or TPOS.
func (f id3Frames) position(id string) (n, total int) {
	return splitPosition(f.text(id))
}

// date prefers the v2.4 recording time, then the v2.3 year plus TDAT
// (stored as DDMM).
func (f id3Frames) date() string {
	if d := f.text("TDRC"); d != "" {
		return d
	}
	year := f.text("TYER")
	if year == "" {
		return ""
	}
	if ddmm := f.text("TDAT"); len(ddmm) == 4 {
		return year + "-" + ddmm[2:] + "-" + ddmm[:2]
	}
	return year
}

// mp3FullDate returns the recording date of an MP3 file with day
// precision when the tag has it. dhowden/tag only reports the year.
func mp3FullDate(path string) string {
	f, err := openID3(path)
	if err != nil {
		return ""
	}
	defer f.Close()
	return f.date()
}

// readID3 builds a Tag from the ID3v2 frames alone.
func readID3(path string) (*Tag, error) {
	f, err := openID3(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t := &Tag{
		Path:        path,
		Title:       f.Title(),
		Artist:      f.Artist(),
		AlbumArtist: f.text("TPE2"),
		Album:       f.Album(),
		Genre:       f.Genre(),
		Date:        f.date(),
	}
	t.TrackNumber, t.TotalTracks = f.position("TRCK")
	t.DiscNumber, t.TotalDiscs = f.position("TPOS")
	if y := f.Year(); t.Date == "" && len(y) >= 4 {
		t.Date = y[:4]
	}
	t.fillDefaults()
	return t, nil
}

// splitPosition parses "5" or "5/10". Unparseable halves read as zero.
func splitPosition(s string) (n, total int) {
	num, of, _ := strings.Cut(s, "/")
	n, _ = strconv.Atoi(num)
	total, _ = strconv.Atoi(of)
	return n, total
}
