// Command bpm prints the tempo of audio files, analyzing them through the
// same bounded pipeline the player uses.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/llehouerou/amethyst/internal/config"
	"github.com/llehouerou/amethyst/internal/enrich"
	"github.com/llehouerou/amethyst/internal/logger"
	"github.com/llehouerou/amethyst/internal/playlist"
	"github.com/llehouerou/amethyst/internal/state"
	"github.com/llehouerou/amethyst/internal/tempo"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:      "bpm",
		Usage:     "Detect the tempo of audio files",
		ArgsUsage: "<file|folder>...",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "jobs",
				Aliases: []string{"j"},
				Usage:   "Concurrent analyses (default: tempo_concurrency from config)",
			},
			&cli.BoolFlag{
				Name:  "save",
				Usage: "Store results in the player's tempo cache",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level",
				Value: "warn",
			},
		},
		Action: run,
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "bpm:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	paths := playlist.Flatten(playlist.Expand(cmd.Args().Slice()))
	if len(paths) == 0 {
		return errors.New("no audio files given")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	jobs := int(cmd.Int("jobs"))
	if jobs < 1 {
		jobs = cfg.TempoConcurrency
	}

	l, err := logger.New(os.Stderr, cmd.String("log-level"))
	if err != nil {
		return err
	}

	cache := enrich.NewCache[int]()
	if cmd.Bool("save") {
		st, err := state.Open()
		if err != nil {
			return err
		}
		defer st.Close()
		cache.OnStore(func(path string, bpm int) {
			if err := st.SaveTempo(path, bpm); err != nil {
				l.Warn("save tempo", "path", path, "err", err)
			}
		})
	}

	gate := enrich.NewGate(jobs)
	pipeline := enrich.NewPipeline("tempo", cache, gate, tempo.NewAnalyzer(l).Analyze, l)
	defer pipeline.Close()

	pipeline.EnrichAll(ctx, paths)
	pipeline.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}

	results := cache.Snapshot()
	for _, p := range slices.Sorted(slices.Values(paths)) {
		if bpm, ok := results[p]; ok {
			fmt.Printf("%4d  %s\n", bpm, p)
		} else {
			fmt.Printf("   -  %s\n", p)
		}
	}
	fmt.Fprintf(os.Stderr, "%s of %s files analyzed, peak concurrency %d\n",
		humanize.Comma(int64(len(results))), humanize.Comma(int64(len(paths))), gate.Peak())
	return nil
}
