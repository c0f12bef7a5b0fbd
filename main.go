package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/llehouerou/amethyst/internal/app"
	"github.com/llehouerou/amethyst/internal/config"
	"github.com/llehouerou/amethyst/internal/errmsg"
	"github.com/llehouerou/amethyst/internal/host"
	"github.com/llehouerou/amethyst/internal/lastfm"
	"github.com/llehouerou/amethyst/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:      "amethyst",
		Usage:     "Queue-driven music player",
		ArgsUsage: "[file|folder...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file (replaces the default lookup)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override the configured log level",
			},
		},
		Action: run,
		Commands: []*cli.Command{
			{
				Name:   "lastfm-auth",
				Usage:  "Obtain a Last.fm session key for the configured API key",
				Action: lastfmAuth,
			},
		},
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "amethyst:", err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path := cmd.String("config"); path != "" {
		cfg, err = config.LoadFiles(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if level := cmd.String("log-level"); level != "" {
		cfg.Log.Level = level
	}
	return cfg, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	l, logCloser, err := logger.Open(cfg.Log)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	a, err := app.New(cfg, app.Deps{Logger: l})
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer func() {
		if err := a.Close(); err != nil {
			l.Error("shutdown", "err", err)
		}
	}()

	d := host.NewDispatcher(a.Playback, os.Stdout, l)
	go d.ReportErrors(ctx, a.Playback.Subscribe())
	if start, ok := host.FromArgs(cmd.Args().Slice()); ok {
		if err := d.Dispatch(start); err != nil {
			fmt.Fprintln(os.Stderr, errmsg.Format(errmsg.OpStartup, err))
		}
	}

	l.Info("ready", "tempo_concurrency", cfg.TempoConcurrency, "artwork_concurrency", cfg.ArtworkConcurrency)
	fmt.Fprintln(os.Stdout, `type "help" for commands`)

	err = d.ReadLines(ctx, os.Stdin)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func lastfmAuth(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Lastfm.APIKey == "" || cfg.Lastfm.APISecret == "" {
		return errors.New("lastfm: api_key and api_secret must be configured")
	}

	client := lastfm.New(cfg.Lastfm.APIKey, cfg.Lastfm.APISecret, "")
	token, err := client.GetToken()
	if err != nil {
		return err
	}

	fmt.Println("Authorize amethyst at:")
	fmt.Println(" ", client.AuthURL(token))
	fmt.Print("Press Enter once done... ")

	line := make(chan error, 1)
	go func() {
		_, err := bufio.NewReader(os.Stdin).ReadString('\n')
		line <- err
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-line:
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
	}

	key, err := client.Authorize(token)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpLastfmAuth, err))
	}
	fmt.Printf("\n[lastfm]\nsession_key = %q\n", key)
	return nil
}
