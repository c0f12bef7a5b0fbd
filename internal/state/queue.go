package state

import (
	"context"
	"database/sql"
	"errors"

	dbutil "github.com/llehouerou/amethyst/internal/db"
)

// QueueState is the saved play queue.
type QueueState struct {
	CurrentIndex int
	Tracks       []string
}

func getQueue(db *sql.DB) (*QueueState, error) {
	var currentIndex int
	err := db.QueryRow(`SELECT current_index FROM queue_state WHERE id = 1`).Scan(&currentIndex)
	if errors.Is(err, sql.ErrNoRows) {
		return &QueueState{CurrentIndex: -1}, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(`SELECT path FROM queue_tracks ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tracks []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		tracks = append(tracks, path)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &QueueState{CurrentIndex: currentIndex, Tracks: tracks}, nil
}

func saveQueue(sqlDB *sql.DB, state QueueState) error {
	return dbutil.WithTx(context.Background(), sqlDB, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM queue_tracks`); err != nil {
			return err
		}

		_, err := tx.Exec(`
			INSERT INTO queue_state (id, current_index)
			VALUES (1, ?)
			ON CONFLICT(id) DO UPDATE SET current_index = excluded.current_index
		`, state.CurrentIndex)
		if err != nil {
			return err
		}

		stmt, err := tx.Prepare(`INSERT INTO queue_tracks (position, path) VALUES (?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, path := range state.Tracks {
			if _, err := stmt.Exec(i, path); err != nil {
				return err
			}
		}
		return nil
	})
}
