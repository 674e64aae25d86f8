// Command probe prints the tags, capability flags and frame layout of
// audio files.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/llehouerou/wavecore/internal/blocks"
	"github.com/llehouerou/wavecore/internal/errmsg"
	"github.com/llehouerou/wavecore/internal/source"
	"github.com/llehouerou/wavecore/internal/tags"
)

// chunk is the number of samples decoded per frame while scanning.
const chunk = 4096

func main() {
	var scan bool
	cmd := &cobra.Command{
		Use:           "probe <file>...",
		Short:         "Print what the engine sees in audio files",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var failed bool
			for _, path := range args {
				if err := probe(cmd.OutOrStdout(), path, scan); err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), errmsg.FormatWith(errmsg.OpMediaProbe, path, err))
					failed = true
				}
			}
			if failed {
				return errors.New("some files could not be read")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&scan, "scan", false, "Decode the whole file and report its frame index")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printTags(out io.Writer, path string) {
	tag := tags.ReadOrUntagged(path)
	fmt.Fprintf(out, "  title:     %s\n", tag.Title)
	if sub := tag.Subtitle(); sub != "" {
		fmt.Fprintf(out, "  from:      %s\n", sub)
	}
	if y := tag.Year(); y != 0 {
		fmt.Fprintf(out, "  year:      %d\n", y)
	}
	if cover, err := tags.EmbeddedCover(path); err == nil && cover != nil {
		fmt.Fprintf(out, "  cover:     %s, %s\n", cover.MIMEType, humanize.Bytes(uint64(len(cover.Data))))
	}
}

func probe(out io.Writer, path string, scan bool) error {
	stat, err := os.Stat(path)
	if err != nil {
		return err
	}

	src, err := source.Open(path, source.Options{FrameCapacity: blocks.DefaultCapacity})
	if err != nil {
		return err
	}
	defer src.Close()

	info := src.Info()
	format := src.Format()
	fmt.Fprintf(out, "%s\n", path)
	printTags(out, path)
	fmt.Fprintf(out, "  size:      %s\n", humanize.Bytes(uint64(stat.Size())))
	fmt.Fprintf(out, "  format:    %s Hz, %d ch, %d-bit\n",
		humanize.Comma(int64(format.SampleRate)), format.NumChannels, format.Precision*8)
	if d, ok := info.Duration(); ok {
		fmt.Fprintf(out, "  duration:  %s (%s samples)\n",
			d.Round(time.Millisecond), humanize.Comma(int64(format.SampleRate.N(d))))
	} else {
		fmt.Fprintf(out, "  duration:  unknown\n")
	}
	fmt.Fprintf(out, "  seekable:  %t\n  pausable:  %t\n  live:      %t\n",
		info.IsSeekable, info.CanPause, info.IsLiveStream)

	if !scan {
		return nil
	}

	s := src.Streamer(format.SampleRate)
	buf := make([][2]float64, chunk)
	var frames int
	for {
		n, ok := s.Stream(buf)
		if n > 0 {
			frames++
		}
		if !ok {
			break
		}
	}
	if err := s.Err(); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	frameIndex := src.Index().Buffer(blocks.Audio)
	first, last, ok := frameIndex.Range()
	fmt.Fprintf(out, "  frames:    %s decoded, %s indexed\n",
		humanize.Comma(int64(frames)), humanize.Comma(int64(frameIndex.Len())))
	if ok {
		fmt.Fprintf(out, "  indexed:   %s .. %s\n", first.Round(time.Millisecond), last.Round(time.Millisecond))
	}
	return nil
}
