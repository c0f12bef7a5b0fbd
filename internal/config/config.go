// Package config loads amethyst settings from TOML files.
package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/llehouerou/amethyst/internal/logger"
)

const appName = "amethyst"

// Defaults applied when a key is absent or out of range.
const (
	DefaultTempoConcurrency   = 2
	DefaultArtworkConcurrency = 4
	DefaultSeekStep           = 5.0
	DefaultVolumeStep         = 0.1
	DefaultArtworkSize        = 300
	DefaultNotifyTimeout      = 5000
)

type Config struct {
	// Maximum concurrent analyses per enrichment domain, fixed for the process lifetime
	TempoConcurrency   int `koanf:"tempo_concurrency"`
	ArtworkConcurrency int `koanf:"artwork_concurrency"`

	SeekStep    float64 `koanf:"seek_step"`    // seconds
	VolumeStep  float64 `koanf:"volume_step"`  // fraction of full volume
	ArtworkSize int     `koanf:"artwork_size"` // thumbnail bound in pixels
	CacheDir    string  `koanf:"cache_dir"`

	Log logger.Config `koanf:"log"`

	// Last.fm now-playing updates (enabled when fully configured)
	Lastfm LastfmConfig `koanf:"lastfm"`

	MPRIS MPRISConfig `koanf:"mpris"`

	Notifications NotificationsConfig `koanf:"notifications"`
}

// LastfmConfig holds Last.fm credentials.
type LastfmConfig struct {
	APIKey     string `koanf:"api_key"`
	APISecret  string `koanf:"api_secret"`
	SessionKey string `koanf:"session_key"`
}

// MPRISConfig controls the D-Bus media player interface.
type MPRISConfig struct {
	Enabled *bool `koanf:"enabled"` // default: true
}

// NotificationsConfig controls desktop now-playing notifications.
type NotificationsConfig struct {
	Enabled      *bool `koanf:"enabled"`        // default: true
	ShowAlbumArt *bool `koanf:"show_album_art"` // default: true
	Timeout      int32 `koanf:"timeout"`        // ms, -1 = server default
}

// Load reads the user and working-directory config files.
func Load() (*Config, error) {
	return LoadFiles(getConfigPaths()...)
}

// LoadFiles reads the given TOML files in order (last wins),
// skipping files that don't exist.
func LoadFiles(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	cfg.CacheDir = expandPath(cfg.CacheDir)
	cfg.Log.File = expandPath(cfg.Log.File)

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.TempoConcurrency < 1 {
		c.TempoConcurrency = DefaultTempoConcurrency
	}
	if c.ArtworkConcurrency < 1 {
		c.ArtworkConcurrency = DefaultArtworkConcurrency
	}
	if c.SeekStep <= 0 {
		c.SeekStep = DefaultSeekStep
	}
	if c.VolumeStep <= 0 || c.VolumeStep > 1 {
		c.VolumeStep = DefaultVolumeStep
	}
	if c.ArtworkSize <= 0 {
		c.ArtworkSize = DefaultArtworkSize
	}
	if c.Notifications.Timeout == 0 || c.Notifications.Timeout < -1 {
		c.Notifications.Timeout = DefaultNotifyTimeout
	}
	if c.CacheDir == "" {
		c.CacheDir = filepath.Join(xdg.CacheHome, appName)
	}
}

func getConfigPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/amethyst/config.toml
		filepath.Join(xdg.ConfigHome, appName, "config.toml"),
		// 2. ./config.toml (pwd, highest priority)
		"config.toml",
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// HasLastfmConfig returns true if Last.fm now-playing updates are configured.
func (c *Config) HasLastfmConfig() bool {
	return c.Lastfm.APIKey != "" && c.Lastfm.APISecret != "" && c.Lastfm.SessionKey != ""
}

// MPRISEnabled reports whether the D-Bus interface should be served.
func (c *Config) MPRISEnabled() bool {
	return c.MPRIS.Enabled == nil || *c.MPRIS.Enabled
}

// NotificationsEnabled reports whether now-playing notifications are shown.
func (c *Config) NotificationsEnabled() bool {
	return c.Notifications.Enabled == nil || *c.Notifications.Enabled
}

// NotificationArtEnabled reports whether notifications carry album art.
func (c *Config) NotificationArtEnabled() bool {
	return c.Notifications.ShowAlbumArt == nil || *c.Notifications.ShowAlbumArt
}
