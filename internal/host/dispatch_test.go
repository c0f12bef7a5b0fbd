package host

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/amethyst/internal/playback"
	"github.com/llehouerou/amethyst/internal/player"
	"github.com/llehouerou/amethyst/internal/playlist"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, playback.Service, *player.MockOpener, *bytes.Buffer) {
	t.Helper()
	opener := player.NewMockOpener(2 * time.Minute)
	svc := playback.New(playback.Options{Opener: opener.Open, Volume: 0.5})
	var out bytes.Buffer
	return NewDispatcher(svc, &out, nil), svc, opener, &out
}

func writeTracks(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(paths[i]), 0o755))
		require.NoError(t, os.WriteFile(paths[i], []byte("x"), 0o600))
	}
	return paths
}

func TestDispatch_PlayFileIgnoresRequireFlag(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		d, svc, opener, _ := newTestDispatcher(t)
		defer svc.Close()

		require.NoError(t, d.Dispatch(Command{Name: PlayFile, Args: []string{RequireFlag}}))
		assert.Empty(t, svc.Snapshot().Tracks)

		require.NoError(t, d.Dispatch(Command{Name: PlayFile, Args: []string{"/m/a.mp3"}}))
		assert.Equal(t, []string{"/m/a.mp3"}, svc.Snapshot().Tracks)
		assert.Equal(t, []string{"/m/a.mp3"}, opener.Loads())
		assert.Equal(t, playback.StatePlaying, svc.State())
	})
}

func TestDispatch_PlayFileRejectsExtension(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		d, svc, opener, _ := newTestDispatcher(t)
		defer svc.Close()

		require.NoError(t, d.Dispatch(Command{Name: PlayFile, Args: []string{"/m/notes.txt"}}))
		assert.Empty(t, svc.Snapshot().Tracks)
		assert.Empty(t, opener.Loads())
	})
}

func TestDispatch_PlayFolderReplacesQueue(t *testing.T) {
	dir := t.TempDir()
	files := writeTracks(t, dir, "b.mp3", "a.flac", "cover.jpg", "sub/c.ogg")

	synctest.Test(t, func(t *testing.T) {
		d, svc, _, _ := newTestDispatcher(t)
		defer svc.Close()
		svc.SetQueue(playlist.Paths("/old.mp3")...)

		require.NoError(t, d.Dispatch(Command{Name: PlayFolder, Args: []string{dir}}))

		assert.Equal(t, []string{files[1], files[0], files[3]}, svc.Snapshot().Tracks)
	})
}

func TestDispatch_LoadFolderPrepends(t *testing.T) {
	dir := t.TempDir()
	files := writeTracks(t, dir, "1.mp3", "2.mp3")

	synctest.Test(t, func(t *testing.T) {
		d, svc, _, _ := newTestDispatcher(t)
		defer svc.Close()
		svc.SetQueue(playlist.Paths("/old.mp3")...)

		require.NoError(t, d.Dispatch(Command{Name: LoadFolder, Args: []string{dir}}))

		assert.Equal(t, []string{files[0], files[1], "/old.mp3"}, svc.Snapshot().Tracks)
	})
}

func TestDispatch_Navigation(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		d, svc, _, _ := newTestDispatcher(t)
		defer svc.Close()
		svc.SetQueue(playlist.Paths("/a.mp3", "/b.mp3", "/c.mp3", "/d.mp3", "/e.mp3")...)

		require.NoError(t, d.Dispatch(Command{Name: Index, Args: []string{"0"}}))
		require.NoError(t, d.Dispatch(Command{Name: Next, Args: []string{"2"}}))
		assert.Equal(t, 2, svc.Snapshot().Index)

		require.NoError(t, d.Dispatch(Command{Name: Previous}))
		assert.Equal(t, 1, svc.Snapshot().Index)
	})
}

func TestDispatch_Volume(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		d, svc, _, _ := newTestDispatcher(t)
		defer svc.Close()

		require.NoError(t, d.Dispatch(Command{Name: Volume, Args: []string{"1.7"}}))
		assert.InDelta(t, 1, svc.Snapshot().Volume, 1e-9)

		require.NoError(t, d.Dispatch(Command{Name: VolumeDown, Args: []string{"0.25"}}))
		assert.InDelta(t, 0.75, svc.Snapshot().Volume, 1e-9)
	})
}

func TestDispatch_Errors(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		d, svc, _, _ := newTestDispatcher(t)
		defer svc.Close()

		tests := []struct {
			cmd  Command
			want error
		}{
			{Command{Name: "dance"}, ErrUnknownCommand},
			{Command{Name: Next, Args: []string{"two"}}, ErrInvalidArgs},
			{Command{Name: Index}, ErrInvalidArgs},
			{Command{Name: PlayFile}, ErrInvalidArgs},
			{Command{Name: Volume, Args: []string{"loud"}}, ErrInvalidArgs},
			{Command{Name: Quit}, ErrQuit},
		}
		for _, tt := range tests {
			assert.ErrorIs(t, d.Dispatch(tt.cmd), tt.want, "command %v", tt.cmd)
		}
	})
}

func TestDispatch_Status(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		d, svc, _, out := newTestDispatcher(t)
		defer svc.Close()
		svc.Restore([]string{"/m/a.mp3", "/m/b.mp3"}, 1)

		require.NoError(t, d.Dispatch(Command{Name: Status}))

		assert.Equal(t, "Paused b.mp3 [2/2] 0:00/2:00 vol 50%\n", out.String())
	})
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		line   string
		want   Command
		wantOK bool
	}{
		{"", Command{}, false},
		{"   # comment", Command{}, false},
		{"next", Command{Name: Next}, true},
		{"NEXT 3", Command{Name: Next, Args: []string{"3"}}, true},
		{"play-file /music/My Song.mp3", Command{Name: PlayFile, Args: []string{"/music/My Song.mp3"}}, true},
		{"play-folder /a /b", Command{Name: PlayFolder, Args: []string{"/a", "/b"}}, true},
	}
	for _, tt := range tests {
		got, ok := ParseLine(tt.line)
		assert.Equal(t, tt.wantOK, ok, "line %q", tt.line)
		assert.Equal(t, tt.want, got, "line %q", tt.line)
	}
}

func TestFromArgs(t *testing.T) {
	dir := t.TempDir()
	files := writeTracks(t, dir, "a.mp3", "b.mp3")

	_, ok := FromArgs(nil)
	assert.False(t, ok)

	cmd, ok := FromArgs(files[:1])
	assert.True(t, ok)
	assert.Equal(t, PlayFile, cmd.Name)

	cmd, _ = FromArgs([]string{dir})
	assert.Equal(t, PlayFolder, cmd.Name)

	cmd, _ = FromArgs(files)
	assert.Equal(t, PlayFolder, cmd.Name)
}

func TestReadLines(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		d, svc, _, out := newTestDispatcher(t)
		defer svc.Close()

		input := strings.Join([]string{
			"play-folder /m/a.mp3 /m/b.mp3 /m/c.mp3",
			"index 0",
			"bogus",
			"",
			"next",
			"quit",
			"clear",
		}, "\n")

		require.NoError(t, d.ReadLines(context.Background(), strings.NewReader(input)))

		snap := svc.Snapshot()
		assert.Len(t, snap.Tracks, 3, "lines after quit are not run")
		assert.Equal(t, 1, snap.Index)
		assert.Contains(t, out.String(), "Failed to run command 'bogus'")
		assert.Contains(t, out.String(), "unknown command")
	})
}

func TestReportErrors(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		d, svc, opener, out := newTestDispatcher(t)
		opener.FailOn("/m/bad.mp3", errors.New("corrupt header"))
		sub := svc.Subscribe()

		done := make(chan struct{})
		go func() {
			d.ReportErrors(context.Background(), sub)
			close(done)
		}()

		require.NoError(t, d.Dispatch(Command{Name: PlayFile, Args: []string{"/m/bad.mp3"}}))
		synctest.Wait()
		assert.Equal(t, "Failed to load track 'bad.mp3': corrupt header\n", out.String())

		require.NoError(t, svc.Close())
		<-done
	})
}

func TestReadLines_ContextCancelled(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		d, svc, _, _ := newTestDispatcher(t)
		defer svc.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		pr, pw := io.Pipe()
		defer pw.Close()

		assert.ErrorIs(t, d.ReadLines(ctx, pr), context.Canceled)
	})
}
