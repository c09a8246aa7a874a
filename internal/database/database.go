package database

import (
	"database/sql"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const memoryPath = ":memory:"

// Store keeps bot metrics and the moderation log in sqlite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and makes sure the
// schema exists. ":memory:" gives a throwaway database.
func Open(path string) (*Store, error) {
	if path != memoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.Wrapf(err, "failed to create directory for %s", path)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	// sqlite allows a single writer; an in-memory database also lives on one connection
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	log.Debugf("database %s initialized", path)
	return s, nil
}

func (s *Store) migrate() error {
	createMetricsTable := `
	CREATE TABLE IF NOT EXISTS metrics (
		metric_name TEXT NOT NULL,
		label_key TEXT NOT NULL DEFAULT '',
		label_value TEXT NOT NULL DEFAULT '',
		metric_value REAL NOT NULL,
		PRIMARY KEY (metric_name, label_key, label_value)
	);`
	if _, err := s.db.Exec(createMetricsTable); err != nil {
		return errors.Wrap(err, "failed to create metrics table")
	}

	createActionsTable := `
	CREATE TABLE IF NOT EXISTS moderation_actions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		chat_id INTEGER NOT NULL,
		action TEXT NOT NULL,
		target_id INTEGER NOT NULL,
		target_name TEXT NOT NULL,
		actor_id INTEGER NOT NULL,
		actor_name TEXT NOT NULL,
		until INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);`
	if _, err := s.db.Exec(createActionsTable); err != nil {
		return errors.Wrap(err, "failed to create moderation_actions table")
	}

	createActionsIndex := `CREATE INDEX IF NOT EXISTS moderation_actions_chat ON moderation_actions (chat_id, created_at);`
	if _, err := s.db.Exec(createActionsIndex); err != nil {
		return errors.Wrap(err, "failed to create moderation_actions index")
	}

	return nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
