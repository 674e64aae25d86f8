// Package source opens audio files as media for the engine: it decodes them
// with beep, reports their capabilities and records the start of every
// chunk handed to the output in a frame index.
package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
	"github.com/samber/mo"

	"github.com/llehouerou/wavecore/internal/blocks"
	"github.com/llehouerou/wavecore/internal/media"
)

const (
	extMP3  = ".mp3"
	extFLAC = ".flac"
	extWAV  = ".wav"
	extOGG  = ".ogg"
)

// ErrUnsupportedFormat is returned for files no decoder handles.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Options configures Open.
type Options struct {
	// Locker guards the decoder against the output goroutine while seeking.
	// Usually the renderer output; nil means no locking.
	Locker sync.Locker
	// FrameCapacity bounds the frame index. Zero uses the default.
	FrameCapacity int
}

// File is an opened audio file.
type File struct {
	path     string
	file     *os.File
	streamer beep.StreamSeekCloser
	format   beep.Format
	tap      *tap
	index    *blocks.Index
	locker   sync.Locker
	info     media.Info
}

// IsSupported reports whether path has an extension Open can decode.
func IsSupported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case extMP3, extFLAC, extWAV, extOGG:
		return true
	}
	return false
}

// Open decodes path.
func Open(path string, opts Options) (*File, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !IsSupported(path) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	var streamer beep.StreamSeekCloser
	var format beep.Format

	switch ext {
	case extMP3:
		streamer, format, err = mp3.Decode(f)
	case extFLAC:
		// Skip ID3v2 tag if present (some taggers add it to FLAC files)
		if err := skipID3v2(f); err != nil {
			f.Close()
			return nil, err
		}
		streamer, format, err = flac.Decode(f)
	case extWAV:
		streamer, format, err = wav.Decode(f)
	case extOGG:
		streamer, format, err = vorbis.Decode(f)
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}

	locker := opts.Locker
	if locker == nil {
		locker = noLock{}
	}

	index := blocks.NewIndex(opts.FrameCapacity, blocks.Audio)
	src := &File{
		path:     path,
		file:     f,
		streamer: streamer,
		format:   format,
		tap:      newTap(streamer, format.SampleRate, index.Buffer(blocks.Audio)),
		index:    index,
		locker:   locker,
	}
	src.info = media.Info{
		Path:            path,
		IsSeekable:      true,
		CanPause:        true,
		NaturalDuration: src.naturalDuration(),
	}
	return src, nil
}

func (f *File) naturalDuration() mo.Option[time.Duration] {
	n := f.streamer.Len()
	if n <= 0 {
		return mo.None[time.Duration]()
	}
	return mo.Some(f.format.SampleRate.D(n))
}

// Info returns the capability flags of the file.
func (f *File) Info() media.Info { return f.info }

// Format returns the decoded sample format.
func (f *File) Format() beep.Format { return f.format }

// Index returns the frame index fed by the output.
func (f *File) Index() *blocks.Index { return f.index }

// Streamer returns the stream to hand to the output, resampled to rate
// when it differs from the file's.
func (f *File) Streamer(rate beep.SampleRate) beep.Streamer {
	if rate == 0 || rate == f.format.SampleRate {
		return f.tap
	}
	return beep.Resample(4, f.format.SampleRate, rate, f.tap)
}

// Seek moves the decoder to position, clamped to the file bounds.
func (f *File) Seek(position time.Duration) error {
	n := f.format.SampleRate.N(position)
	n = max(n, 0)

	f.locker.Lock()
	defer f.locker.Unlock()
	n = min(n, f.streamer.Len())
	return f.streamer.Seek(n)
}

// Position returns the decoder position.
func (f *File) Position() time.Duration {
	f.locker.Lock()
	defer f.locker.Unlock()
	return f.format.SampleRate.D(f.streamer.Position())
}

// Close releases the decoder and the file.
func (f *File) Close() error {
	err := f.streamer.Close()
	if cerr := f.file.Close(); cerr != nil && !errors.Is(cerr, os.ErrClosed) && err == nil {
		err = cerr
	}
	return err
}

type noLock struct{}

func (noLock) Lock()   {}
func (noLock) Unlock() {}

// skipID3v2 skips an ID3v2 tag if present at the beginning of the file.
// Some FLAC files have ID3v2 tags prepended, which the FLAC decoder doesn't handle.
func skipID3v2(r io.ReadSeeker) error {
	header := make([]byte, 10)
	n, err := io.ReadFull(r, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return err
	}
	if n < 10 || string(header[0:3]) != "ID3" {
		_, err = r.Seek(0, io.SeekStart)
		return err
	}

	// ID3v2 size is stored as a syncsafe integer in bytes 6-9
	// Each byte only uses 7 bits (bit 7 is always 0)
	size := int64(header[6])<<21 | int64(header[7])<<14 | int64(header[8])<<7 | int64(header[9])

	_, err = r.Seek(10+size, io.SeekStart)
	return err
}
