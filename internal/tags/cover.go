package tags

import (
	"os"

	"github.com/dhowden/tag"
)

// Cover is an image embedded in a media file.
type Cover struct {
	MIMEType string
	Data     []byte
}

// EmbeddedCover reads the cover art embedded in a media file. Returns nil
// without error when the file carries none.
func EmbeddedCover(path string) (*Cover, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, err
	}

	pic := m.Picture()
	if pic == nil {
		return nil, nil
	}
	return &Cover{MIMEType: pic.MIMEType, Data: pic.Data}, nil
}
