// Package app wires the playback core to its collaborators.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/llehouerou/amethyst/internal/artwork"
	"github.com/llehouerou/amethyst/internal/config"
	"github.com/llehouerou/amethyst/internal/enrich"
	"github.com/llehouerou/amethyst/internal/errmsg"
	"github.com/llehouerou/amethyst/internal/lastfm"
	"github.com/llehouerou/amethyst/internal/logger"
	"github.com/llehouerou/amethyst/internal/mpris"
	"github.com/llehouerou/amethyst/internal/notify"
	"github.com/llehouerou/amethyst/internal/playback"
	"github.com/llehouerou/amethyst/internal/player"
	"github.com/llehouerou/amethyst/internal/presence"
	"github.com/llehouerou/amethyst/internal/state"
	"github.com/llehouerou/amethyst/internal/tags"
	"github.com/llehouerou/amethyst/internal/tempo"
)

// Deps overrides collaborators; zero values select the real implementations.
type Deps struct {
	Logger       *log.Logger
	State        state.Interface
	Opener       player.Opener
	ReadMetadata func(path string) (*tags.Metadata, error)
	Tempo        enrich.ComputeFunc[int]
	Artwork      enrich.ComputeFunc[string]
	Presence     []presence.Reporter
	DisableMPRIS bool
	Notifier     notify.Notifier // nil with notifications enabled uses the session bus
}

// App owns the playback service and everything it depends on.
type App struct {
	Playback playback.Service
	Tempo    *enrich.Pipeline[int]
	Artwork  *enrich.Pipeline[string]
	State    state.Interface

	logger    *log.Logger
	mpris     *mpris.Adapter
	scrobbler *lastfm.Scrobbler
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New builds the app and restores the previous session without autoplay.
func New(cfg *config.Config, deps Deps) (*App, error) {
	a := &App{logger: deps.Logger}
	if a.logger == nil {
		a.logger = logger.Discard()
	}

	if deps.State == nil {
		st, err := state.Open()
		if err != nil {
			return nil, fmt.Errorf("open state: %w", err)
		}
		deps.State = st
	}
	a.State = deps.State

	if err := a.buildPipelines(cfg, &deps); err != nil {
		_ = a.State.Close()
		return nil, err
	}

	if deps.Opener == nil {
		deps.Opener = player.NewBeepOpener()
	}
	if deps.ReadMetadata == nil {
		deps.ReadMetadata = tags.Read
	}

	volume, err := a.State.GetVolume()
	if err != nil {
		a.logger.Warn("read volume", "err", err)
		volume = 1
	}

	sinks := presence.Multi{&presence.Log{Logger: logger.Component(a.logger, "presence")}}
	for _, r := range deps.Presence {
		sinks = append(sinks, r)
	}
	if cfg.HasLastfmConfig() {
		client := lastfm.New(cfg.Lastfm.APIKey, cfg.Lastfm.APISecret, cfg.Lastfm.SessionKey)
		a.scrobbler = lastfm.NewScrobbler(client, deps.ReadMetadata, a.logger)
		sinks = append(sinks, a.scrobbler)
	}

	if cfg.NotificationsEnabled() {
		if r := a.nowPlaying(cfg, deps); r != nil {
			sinks = append(sinks, r)
		}
	}

	a.Playback = playback.New(playback.Options{
		Opener:       deps.Opener,
		ReadMetadata: deps.ReadMetadata,
		Presence:     sinks,
		Tempo:        a.Tempo,
		Artwork:      a.Artwork,
		Persister:    a.State,
		Logger:       a.logger,
		Volume:       volume,
		SeekStep:     time.Duration(cfg.SeekStep * float64(time.Second)),
		VolumeStep:   cfg.VolumeStep,
	})

	if cfg.MPRISEnabled() && !deps.DisableMPRIS {
		adapter, err := mpris.New(a.Playback, a.Artwork.Cache().Get, a.logger)
		if err != nil {
			a.logger.Warn("mpris unavailable", "err", err)
		} else {
			a.mpris = adapter
		}
	}

	a.restore()
	return a, nil
}

func (a *App) buildPipelines(cfg *config.Config, deps *Deps) error {
	tempoCache := enrich.NewCache[int]()
	tempos, err := a.State.LoadTempos()
	if err != nil {
		a.logger.Warn("load tempo cache", "err", err)
	}
	tempoCache.Preload(tempos)
	tempoCache.OnStore(func(path string, bpm int) {
		if err := a.State.SaveTempo(path, bpm); err != nil {
			a.logger.Warn("save tempo", "path", path, "err", err)
		}
	})
	if deps.Tempo == nil {
		deps.Tempo = tempo.NewAnalyzer(a.logger).Analyze
	}
	a.Tempo = enrich.NewPipeline("tempo", tempoCache, enrich.NewGate(cfg.TempoConcurrency), deps.Tempo, a.logger)

	if deps.Artwork == nil {
		fetcher, err := artwork.New(filepath.Join(cfg.CacheDir, "artwork"), cfg.ArtworkSize)
		if err != nil {
			return fmt.Errorf("artwork cache: %w", err)
		}
		deps.Artwork = fetcher.Fetch
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			if n := fetcher.Prune(); n > 0 {
				a.logger.Debug("pruned artwork cache", "removed", n)
			}
		}()
	}
	a.Artwork = enrich.NewPipeline("artwork", enrich.NewCache[string](), enrich.NewGate(cfg.ArtworkConcurrency), deps.Artwork, a.logger)
	return nil
}

func (a *App) nowPlaying(cfg *config.Config, deps Deps) presence.Reporter {
	n := deps.Notifier
	if n == nil {
		var err error
		if n, err = notify.New(); err != nil {
			a.logger.Warn("notifications unavailable", "err", err)
			return nil
		}
	}
	var art func(string) (string, bool)
	if cfg.NotificationArtEnabled() {
		art = a.Artwork.Cache().Get
	}
	return notify.NewNowPlaying(n, deps.ReadMetadata, art, cfg.Notifications.Timeout, a.logger)
}

// restore reloads the saved queue. A saved path selects its position
// when the saved index is missing.
func (a *App) restore() {
	q, err := a.State.GetQueue()
	if err != nil {
		a.logger.Warn(errmsg.Format(errmsg.OpRestoreQueue, err))
		return
	}
	if len(q.Tracks) == 0 {
		return
	}
	index := q.CurrentIndex
	if index < 0 {
		if path, err := a.State.GetCurrentPath(); err == nil && path != "" {
			index = slices.Index(q.Tracks, path)
		}
	}
	a.Playback.Restore(q.Tracks, index)
	a.logger.Info("restored queue", "tracks", len(q.Tracks), "index", index)
}

// TempoOf returns the computed tempo of path, if known.
func (a *App) TempoOf(path string) (int, bool) {
	return a.Tempo.Cache().Get(path)
}

// Wait blocks until background enrichment settles or ctx is done.
func (a *App) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.Tempo.Wait()
		a.Artwork.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops playback and enrichment, then flushes state.
func (a *App) Close() error {
	var errs []error
	a.closeOnce.Do(func() {
		if a.mpris != nil {
			errs = append(errs, a.mpris.Close())
		}
		errs = append(errs, a.Playback.Close())
		a.Tempo.Close()
		a.Artwork.Close()
		if a.scrobbler != nil {
			a.scrobbler.Wait()
		}
		a.wg.Wait()
		errs = append(errs, a.State.Close())
	})
	return errors.Join(errs...)
}
