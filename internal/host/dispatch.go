package host

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/llehouerou/amethyst/internal/logger"
	"github.com/llehouerou/amethyst/internal/playback"
	"github.com/llehouerou/amethyst/internal/playlist"
)

var (
	// ErrUnknownCommand is returned for command names outside All.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrInvalidArgs is returned when a command's arguments cannot be parsed.
	ErrInvalidArgs = errors.New("invalid arguments")
	// ErrQuit is returned by Dispatch for the quit command.
	ErrQuit = errors.New("quit")
)

// Dispatcher applies commands to a playback service.
type Dispatcher struct {
	service playback.Service
	out     io.Writer
	logger  *log.Logger
}

// NewDispatcher creates a dispatcher writing status and help output to out.
func NewDispatcher(service playback.Service, out io.Writer, l *log.Logger) *Dispatcher {
	if out == nil {
		out = io.Discard
	}
	return &Dispatcher{
		service: service,
		out:     out,
		logger:  logger.Component(l, "host"),
	}
}

// Dispatch runs one command.
func (d *Dispatcher) Dispatch(cmd Command) error {
	d.logger.Debug("dispatch", "cmd", cmd.Name, "args", cmd.Args)

	switch cmd.Name {
	case PlayFile:
		if len(cmd.Args) != 1 {
			return fmt.Errorf("%s: %w", cmd.Name, ErrInvalidArgs)
		}
		if cmd.Args[0] == RequireFlag {
			return nil
		}
		d.service.PrependAndSelect(cmd.Args[0])
	case PlayFolder:
		d.service.SetQueue(playlist.Expand(cmd.Args)...)
	case LoadFolder:
		d.service.LoadFolder(playlist.Flatten(playlist.Expand(cmd.Args)))

	case Play:
		d.service.Play()
	case Pause:
		d.service.Pause()
	case Toggle:
		d.service.Toggle()
	case Next, Previous:
		n, err := optionalInt(cmd, 1)
		if err != nil {
			return err
		}
		if cmd.Name == Next {
			d.service.Next(n)
		} else {
			d.service.Previous(n)
		}
	case Index:
		if len(cmd.Args) != 1 {
			return fmt.Errorf("%s: %w", cmd.Name, ErrInvalidArgs)
		}
		i, err := optionalInt(cmd, 0)
		if err != nil {
			return err
		}
		d.service.SetIndex(i)
	case SeekForward, SeekBackward:
		secs, err := optionalFloat(cmd, 0)
		if err != nil {
			return err
		}
		step := time.Duration(secs * float64(time.Second))
		if cmd.Name == SeekForward {
			d.service.SeekForward(step)
		} else {
			d.service.SeekBackward(step)
		}
	case Volume:
		if len(cmd.Args) != 1 {
			return fmt.Errorf("%s: %w", cmd.Name, ErrInvalidArgs)
		}
		v, err := optionalFloat(cmd, 0)
		if err != nil {
			return err
		}
		d.service.SetVolume(max(0, min(1, v)))
	case VolumeUp, VolumeDown:
		step, err := optionalFloat(cmd, 0)
		if err != nil {
			return err
		}
		if cmd.Name == VolumeUp {
			d.service.VolumeUp(step)
		} else {
			d.service.VolumeDown(step)
		}

	case Shuffle:
		d.service.Shuffle()
	case Clear:
		d.service.Clear()
	case Undo:
		d.service.Undo()
	case Redo:
		d.service.Redo()

	case Status:
		d.writeStatus()
	case Help:
		d.writeHelp()
	case Quit:
		return ErrQuit
	default:
		return fmt.Errorf("%q: %w", cmd.Name, ErrUnknownCommand)
	}
	return nil
}

func (d *Dispatcher) writeStatus() {
	snap := d.service.Snapshot()
	title := "-"
	if snap.Path != "" {
		title = snap.Metadata.DisplayName(snap.Path)
	}
	fmt.Fprintf(d.out, "%s %s [%d/%d] %s/%s vol %d%%\n",
		snap.State, title, snap.Index+1, len(snap.Tracks),
		playback.DurationHuman(snap.Position), playback.DurationHuman(snap.Duration),
		int(snap.Volume*100+0.5))
}

func (d *Dispatcher) writeHelp() {
	for _, u := range All {
		fmt.Fprintf(d.out, "  %-14s %-16s %s\n", u.Name, u.Args, u.Description)
	}
}

func optionalInt(cmd Command, def int) (int, error) {
	if len(cmd.Args) == 0 {
		return def, nil
	}
	n, err := strconv.Atoi(cmd.Args[0])
	if err != nil {
		return 0, fmt.Errorf("%s: %w", cmd.Name, ErrInvalidArgs)
	}
	return n, nil
}

func optionalFloat(cmd Command, def float64) (float64, error) {
	if len(cmd.Args) == 0 {
		return def, nil
	}
	f, err := strconv.ParseFloat(cmd.Args[0], 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", cmd.Name, ErrInvalidArgs)
	}
	return f, nil
}

// FromArgs builds the startup command for paths given on the command line:
// a single file is played directly, anything else replaces the queue.
func FromArgs(paths []string) (Command, bool) {
	switch len(paths) {
	case 0:
		return Command{}, false
	case 1:
		if info, err := os.Stat(paths[0]); err == nil && !info.IsDir() {
			return Command{Name: PlayFile, Args: paths}, true
		}
	}
	return Command{Name: PlayFolder, Args: paths}, true
}

// ParseLine splits a protocol line into a command. Blank lines and
// lines starting with # yield ok=false.
func ParseLine(line string) (Command, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return Command{}, false
	}
	name, rest, _ := strings.Cut(line, " ")
	cmd := Command{Name: Name(strings.ToLower(name))}
	rest = strings.TrimSpace(rest)
	switch cmd.Name {
	case PlayFile:
		// paths may contain spaces
		if rest != "" {
			cmd.Args = []string{rest}
		}
	default:
		if rest != "" {
			cmd.Args = strings.Fields(rest)
		}
	}
	return cmd, true
}
