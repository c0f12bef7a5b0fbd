package host

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/llehouerou/amethyst/internal/errmsg"
	"github.com/llehouerou/amethyst/internal/playback"
)

// ReadLines reads commands from r, one per line, and dispatches them until
// r is exhausted, ctx is done, or a quit command arrives. Invalid lines
// are reported to the dispatcher's output and skipped.
func (d *Dispatcher) ReadLines(ctx context.Context, r io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("read commands: %w", err)
					}
				default:
				}
				return nil
			}
			cmd, ok := ParseLine(line)
			if !ok {
				continue
			}
			err := d.Dispatch(cmd)
			switch {
			case errors.Is(err, ErrQuit):
				return nil
			case err != nil:
				fmt.Fprintln(d.out, errmsg.FormatWith(errmsg.OpRunCommand, string(cmd.Name), err))
			}
		}
	}
}

// ReportErrors prints playback errors from sub until it closes or ctx is done.
func (d *Dispatcher) ReportErrors(ctx context.Context, sub *playback.Subscription) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Done:
			return
		case e := <-sub.Error:
			fmt.Fprintln(d.out, errmsg.FormatWith(errmsg.OpLoadTrack, filepath.Base(e.Path), e.Err))
		}
	}
}
