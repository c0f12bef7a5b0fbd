package state

import "time"

// LoadTempos returns every persisted tempo keyed by track path.
func (m *Manager) LoadTempos() (map[string]int, error) {
	rows, err := m.db.Query(`SELECT path, bpm FROM tempo_cache`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tempos := make(map[string]int)
	for rows.Next() {
		var path string
		var bpm int
		if err := rows.Scan(&path, &bpm); err != nil {
			return nil, err
		}
		tempos[path] = bpm
	}
	return tempos, rows.Err()
}

// SaveTempo persists the tempo computed for path.
func (m *Manager) SaveTempo(path string, bpm int) error {
	_, err := m.db.Exec(`
		INSERT INTO tempo_cache (path, bpm, analyzed_at) VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			bpm = excluded.bpm,
			analyzed_at = excluded.analyzed_at
	`, path, bpm, time.Now().Unix())
	return err
}
