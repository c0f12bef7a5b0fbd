package state

import (
	"database/sql"
	"errors"
	"strconv"
)

// Setting keys.
const (
	keyVolume      = "volume"
	keyCurrentPath = "currentlyPlayingFilePath"
)

func getSetting(db *sql.DB, key string) (string, bool, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func setSetting(db *sql.DB, key, value string) error {
	_, err := db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// GetVolume returns the saved volume level, 1 when never saved.
func (m *Manager) GetVolume() (float64, error) {
	value, ok, err := getSetting(m.db, keyVolume)
	if err != nil || !ok {
		return 1, err
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 1, nil //nolint:nilerr // corrupt value falls back to the default
	}
	return v, nil
}

// SaveVolume persists the volume level.
func (m *Manager) SaveVolume(volume float64) error {
	return setSetting(m.db, keyVolume, strconv.FormatFloat(volume, 'f', -1, 64))
}

// GetCurrentPath returns the saved currently playing path, empty when none.
func (m *Manager) GetCurrentPath() (string, error) {
	value, _, err := getSetting(m.db, keyCurrentPath)
	return value, err
}

// SaveCurrentPath persists the currently playing path.
func (m *Manager) SaveCurrentPath(path string) error {
	return setSetting(m.db, keyCurrentPath, path)
}
