package database

import (
	"database/sql"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Open opens and migrates the SQLite database at path.
func Open(path string) (db *sql.DB, err error) {
	db, err = sql.Open("sqlite3", DSN(path))
	if err != nil {
		return
	}

	// db tuning options
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(2 * time.Hour)

	err = db.Ping()
	if err != nil {
		db.Close()
		return
	}

	err = migrateDB(db)
	if err != nil {
		db.Close()
		return
	}

	return
}

// DSN applies per-connection settings; a PRAGMA executed once would only
// reach a single connection of the pool.
// Immediate transactions take the write lock on BEGIN, so concurrent writers
// queue on the busy timeout instead of failing on lock upgrade.
func DSN(path string) string {
	params := "_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"
	if strings.Contains(path, "?") {
		return "file:" + path + "&" + params
	}
	return "file:" + path + "?" + params
}
