// Package lastfm reports the playing track to Last.fm.
package lastfm

import (
	"errors"
	"fmt"
	"time"

	"github.com/shkh/lastfm-go/lastfm"
)

// ErrNotAuthenticated is returned when an operation requires a session key.
var ErrNotAuthenticated = errors.New("not authenticated")

// Client wraps the Last.fm track API.
type Client struct {
	api        *lastfm.Api
	apiKey     string
	sessionKey string
}

// New creates a client; sessionKey may be empty until Authorize runs.
func New(apiKey, apiSecret, sessionKey string) *Client {
	c := &Client{
		api:    lastfm.New(apiKey, apiSecret),
		apiKey: apiKey,
	}
	if sessionKey != "" {
		c.SetSessionKey(sessionKey)
	}
	return c
}

// SetSessionKey sets the authenticated session key.
func (c *Client) SetSessionKey(key string) {
	c.sessionKey = key
	c.api.SetSession(key)
}

// IsAuthenticated returns true if a session key is set.
func (c *Client) IsAuthenticated() bool {
	return c.sessionKey != ""
}

// GetToken requests an authentication token.
func (c *Client) GetToken() (string, error) {
	token, err := c.api.GetToken()
	if err != nil {
		return "", fmt.Errorf("get token: %w", err)
	}
	return token, nil
}

// AuthURL returns the page where the user approves token.
func (c *Client) AuthURL(token string) string {
	return fmt.Sprintf("https://www.last.fm/api/auth/?api_key=%s&token=%s", c.apiKey, token)
}

// Authorize exchanges an approved token for a session key and keeps it.
func (c *Client) Authorize(token string) (string, error) {
	if err := c.api.LoginWithToken(token); err != nil {
		return "", fmt.Errorf("get session: %w", err)
	}
	c.sessionKey = c.api.GetSessionKey()
	return c.sessionKey, nil
}

// UpdateNowPlaying sends a "now playing" notification.
func (c *Client) UpdateNowPlaying(p Play) error {
	if !c.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	if _, err := c.api.Track.UpdateNowPlaying(playParams(p)); err != nil {
		return fmt.Errorf("update now playing: %w", err)
	}
	return nil
}

// Scrobble submits a finished play.
func (c *Client) Scrobble(p Play) error {
	if !c.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	params := playParams(p)
	params["timestamp"] = p.StartedAt.Unix()
	if _, err := c.api.Track.Scrobble(params); err != nil {
		return fmt.Errorf("scrobble: %w", err)
	}
	return nil
}

func playParams(p Play) lastfm.P {
	params := lastfm.P{"artist": p.Artist, "track": p.Title}
	if p.Album != "" {
		params["album"] = p.Album
	}
	if secs := int(p.Length / time.Second); secs > 0 {
		params["duration"] = secs
	}
	return params
}
