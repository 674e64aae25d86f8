package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gopxl/beep/v2/speaker"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/llehouerou/wavecore/internal/config"
	"github.com/llehouerou/wavecore/internal/engine"
	"github.com/llehouerou/wavecore/internal/errmsg"
	"github.com/llehouerou/wavecore/internal/icons"
	"github.com/llehouerou/wavecore/internal/keymap"
	"github.com/llehouerou/wavecore/internal/logging"
	"github.com/llehouerou/wavecore/internal/media"
	"github.com/llehouerou/wavecore/internal/mpris"
	"github.com/llehouerou/wavecore/internal/notify"
	"github.com/llehouerou/wavecore/internal/pipeline"
	"github.com/llehouerou/wavecore/internal/renderer"
	"github.com/llehouerou/wavecore/internal/source"
	"github.com/llehouerou/wavecore/internal/state"
	"github.com/llehouerou/wavecore/internal/tags"
)

const (
	seekStep       = 10 * time.Second
	disposeTimeout = 3 * time.Second
)

type playOptions struct {
	start    time.Duration
	paused   bool
	keepOpen bool
}

func newPlayCmd() *cobra.Command {
	var opts playOptions
	cmd := &cobra.Command{
		Use:   "play <file>",
		Short: "Play a file with interactive transport controls",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd, args[0], opts)
		},
	}
	cmd.Flags().DurationVarP(&opts.start, "start", "s", 0, "Start position (e.g. 1m30s)")
	cmd.Flags().BoolVarP(&opts.paused, "paused", "p", false, "Open paused instead of playing")
	cmd.Flags().BoolVarP(&opts.keepOpen, "keep-open", "k", false, "Stay open when the media ends")
	return cmd
}

func newResumeCmd() *cobra.Command {
	var opts playOptions
	cmd := &cobra.Command{
		Use:   "resume",
		Short: "Reopen the last session where it was left",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := state.Open()
			if err != nil {
				return errors.New(errmsg.Format(errmsg.OpStateOpen, err))
			}
			session, err := store.GetSession()
			store.Close()
			if err != nil {
				return errors.New(errmsg.Format(errmsg.OpSessionLoad, err))
			}
			if session == nil {
				return errors.New("no saved session")
			}
			opts.start = session.Position
			return runSession(cmd, session.Path, opts)
		},
	}
	cmd.Flags().BoolVarP(&opts.paused, "paused", "p", false, "Open paused instead of playing")
	cmd.Flags().BoolVarP(&opts.keepOpen, "keep-open", "k", false, "Stay open when the media ends")
	return cmd
}

// runSession plays path until the user quits, the media ends or the
// process is interrupted.
func runSession(cmd *cobra.Command, path string, opts playOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpConfigLoad, err))
	}

	logger, logCloser, err := logging.Setup(cfg.GetLogConfig())
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer logCloser.Close()
	log := logging.Component(logger, "cli")
	icons.Init(cfg.IconStyle())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store *state.Manager
	if cfg.PersistState() {
		if store, err = state.Open(); err != nil {
			log.WithError(err).Warn(errmsg.Format(errmsg.OpStateOpen, err))
			store = nil
		} else {
			store.SetLogger(logging.Component(logger, "state"))
			defer store.Close()
		}
	}

	src, err := source.Open(path, source.Options{
		Locker:        renderer.Speaker(),
		FrameCapacity: cfg.BlocksCapacity(),
	})
	if err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpMediaOpen, path, err))
	}

	format := src.Format()
	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
		src.Close()
		return errors.New(errmsg.Format(errmsg.OpAudioInit, err))
	}
	audio := renderer.NewAudio(renderer.Speaker(), src.Streamer(format.SampleRate))

	engCfg := cfg.GetEngineConfig()
	ecfg := engine.Config{
		Pipeline: pipeline.Config{
			TickInterval:     engCfg.TickInterval,
			PositionInterval: engCfg.PositionInterval,
		},
		EventBuffer: engCfg.EventBuffer,
	}
	if store != nil {
		ecfg.Sessions = store
	}
	eng := engine.New(ecfg, logging.Component(logger, "engine"))

	if err := eng.Start(ctx); err != nil {
		src.Close()
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), disposeTimeout)
		defer cancel()
		if err := eng.Dispose(dctx); err != nil {
			log.WithError(err).Warn("dispose engine")
		}
	}()

	if err := eng.Open(ctx, src, audio); err != nil {
		src.Close()
		return errors.New(errmsg.FormatWith(errmsg.OpMediaOpen, path, err))
	}
	if err := startAt(ctx, eng, opts); err != nil {
		return err
	}

	if cfg.MPRISEnabled() {
		adapter, err := mpris.New(eng, logging.Component(logger, "mpris"))
		if err != nil {
			log.WithError(err).Warn(errmsg.Format(errmsg.OpMPRISStart, err))
		} else {
			defer adapter.Close()
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n%s\n", heading(tags.ReadOrUntagged(path)), helpLine)

	sub := eng.Subscribe()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return printEvents(gctx, sub, out, opts.keepOpen)
	})
	g.Go(func() error {
		return readCommands(gctx, eng, cmd.InOrStdin(), out, log)
	})
	if cfg.NotificationsEnabled() {
		notifier, err := notify.New()
		if err != nil {
			log.WithError(err).Warn("desktop notifications unavailable")
		} else {
			w := notify.NewWatcher(eng.Subscribe(), eng.Snapshot, notifier, logging.Component(logger, "notify"))
			g.Go(func() error {
				return w.Run(gctx)
			})
		}
	}

	if err := g.Wait(); err != nil && !errors.Is(err, errQuit) {
		return err
	}
	return nil
}

// startAt applies the start position and starts playback unless paused.
func startAt(ctx context.Context, eng *engine.Engine, opts playOptions) error {
	start := opts.start
	if d, ok := eng.Snapshot().Info.Duration(); ok && start >= d {
		// Finished last time
		start = 0
	}
	if start > 0 {
		if err := eng.Seek(ctx, start); err != nil {
			return errors.New(errmsg.Format(errmsg.OpSeek, err))
		}
	}
	if opts.paused {
		return nil
	}
	if _, err := eng.Play(ctx); err != nil {
		return errors.New(errmsg.Format(errmsg.OpPlay, err))
	}
	return nil
}

var helpLine = keymap.Help(keymap.All)

// printEvents reports transport changes until ctx is done. Without
// keepOpen it ends the session when the media ends.
func printEvents(ctx context.Context, sub *media.Subscription, out io.Writer, keepOpen bool) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sub.Done:
			return nil
		case e := <-sub.StatusChanged:
			fmt.Fprintln(out, icons.FormatStatus(e.Current))
		case e := <-sub.PositionChanged:
			if e.Seek {
				fmt.Fprintf(out, "%s%s\n", icons.Seek(), formatDuration(e.Position))
			}
		case e := <-sub.EndedChanged:
			if e.Ended {
				fmt.Fprintf(out, "%send of media at %s\n", icons.Ended(), formatDuration(e.Position))
				if !keepOpen {
					return errQuit
				}
			}
		case <-sub.MediaChanged:
		}
	}
}

// readCommands executes one command per input line.
func readCommands(ctx context.Context, eng *engine.Engine, in io.Reader, out io.Writer, log *logrus.Entry) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				// Input closed: keep playing until the media ends
				<-ctx.Done()
				return nil
			}
			if err := execute(ctx, eng, strings.TrimSpace(line), out); err != nil {
				if errors.Is(err, errQuit) {
					return err
				}
				log.WithError(err).Debug("command failed")
				fmt.Fprintln(out, err)
			}
		}
	}
}

var commands = keymap.Default()

func execute(ctx context.Context, eng *engine.Engine, line string, out io.Writer) error {
	name, arg, _ := strings.Cut(line, " ")
	switch commands.Resolve(name) {
	case keymap.ActionPlayPause:
		return transport(ctx, errmsg.OpToggle, eng.Toggle)
	case keymap.ActionPlay:
		return transport(ctx, errmsg.OpPlay, eng.Play)
	case keymap.ActionPause:
		return transport(ctx, errmsg.OpPause, eng.Pause)
	case keymap.ActionStop:
		return transport(ctx, errmsg.OpStop, eng.Stop)
	case keymap.ActionSeekForward:
		return seek(ctx, eng, eng.Position()+seekStep)
	case keymap.ActionSeekBack:
		return seek(ctx, eng, max(eng.Position()-seekStep, 0))
	case keymap.ActionGoTo:
		pos, err := parsePosition(strings.TrimSpace(arg))
		if err != nil {
			return err
		}
		return seek(ctx, eng, pos)
	case keymap.ActionInfo:
		fmt.Fprintln(out, describe(eng.Snapshot(), eng.Position()))
		return nil
	case keymap.ActionHelp:
		fmt.Fprintln(out, helpLine)
		return nil
	case keymap.ActionQuit:
		return errQuit
	default:
		return fmt.Errorf("unknown command %q\n%s", name, helpLine)
	}
}

func transport(ctx context.Context, op errmsg.Op, fn func(context.Context) (bool, error)) error {
	ok, err := fn(ctx)
	if err != nil {
		return errors.New(errmsg.Format(op, err))
	}
	if !ok {
		return errors.New(errmsg.Rejected(op))
	}
	return nil
}

func seek(ctx context.Context, eng *engine.Engine, pos time.Duration) error {
	if err := eng.Seek(ctx, pos); err != nil {
		return errors.New(errmsg.Format(errmsg.OpSeek, err))
	}
	return nil
}

// parsePosition accepts Go durations ("1m30s") and clock times ("1:30").
func parsePosition(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	var m, sec int
	if _, err := fmt.Sscanf(s, "%d:%d", &m, &sec); err != nil || sec >= 60 || m < 0 || sec < 0 {
		return 0, fmt.Errorf("invalid position %q", s)
	}
	return time.Duration(m)*time.Minute + time.Duration(sec)*time.Second, nil
}

func describe(snap media.Snapshot, pos time.Duration) string {
	total := "?"
	if d, ok := snap.Info.Duration(); ok {
		total = formatDuration(d)
	}
	return fmt.Sprintf("%s  %s / %s  seekable=%t pausable=%t",
		icons.FormatStatus(snap.Status), formatDuration(pos), total, snap.Info.IsSeekable, snap.Info.CanPause)
}

// heading names the media: its title, then artist and album when tagged.
func heading(tag *tags.Tag) string {
	if sub := tag.Subtitle(); sub != "" {
		return tag.Title + " (" + sub + ")"
	}
	return tag.Title
}

func formatDuration(d time.Duration) string {
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", m, s)
}
