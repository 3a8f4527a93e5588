package database

import (
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/trezcool/ubao/core"
)

// Open connects to the sqlite database file configured in conf.
func Open(conf *core.Config) (*sqlx.DB, error) {
	q := make(url.Values)
	q.Set("_foreign_keys", "on")

	db, err := sqlx.Open("sqlite3", "file:"+conf.Database.Path+"?"+q.Encode())
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if err = ping(db); err != nil {
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

// Migrate bootstraps the schema. It is idempotent and runs at every process start.
func Migrate(db *sqlx.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS notice (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	title          TEXT      NOT NULL,
	message        TEXT      NOT NULL,
	needs_reminder BOOLEAN   NOT NULL DEFAULT TRUE,
	deadline       TIMESTAMP NULL,
	created_at     TIMESTAMP NOT NULL,
	status         TEXT      NOT NULL DEFAULT 'Pending'
);

CREATE TABLE IF NOT EXISTS student (
	id    INTEGER PRIMARY KEY AUTOINCREMENT,
	name  TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE
);
`
