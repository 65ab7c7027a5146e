// Package storage opens the relational store and bootstraps the tables of a catalog.
package storage

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/zekoder/zegraphql/zegraphql/query"
)

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(query.FoldFunction, 1, fold)
}

func fold(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return query.Fold(v), nil
	case []byte:
		return query.Fold(string(v)), nil
	default:
		return v, nil
	}
}

// Open opens a SQLite database and applies the connection pragmas.
// The pool is capped at one connection so an in-memory database is shared by
// every caller and writers never contend.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	if !IsMemory(path) {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			// Another process may already hold the database in WAL mode
			if strings.Contains(pragma, "journal_mode") && strings.Contains(err.Error(), "database is locked") {
				continue
			}
			_ = db.Close()
			return nil, fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}

	return db, nil
}

// IsMemory reports whether path names an in-memory database
func IsMemory(path string) bool {
	return path == "" || path == MemoryPath || strings.Contains(path, "mode=memory") || strings.HasPrefix(path, "file::memory:")
}

// IsConstraintViolation reports whether err is a UNIQUE, FOREIGN KEY, NOT NULL
// or CHECK failure raised by the engine
func IsConstraintViolation(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	return serr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}

// ConstraintDetail returns the engine's diagnostic for a constraint violation
func ConstraintDetail(err error) string {
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		msg := serr.Error()
		// "constraint failed: UNIQUE constraint failed: t.c (2067)" -> the inner message
		if i := strings.Index(msg, ": "); i >= 0 {
			msg = msg[i+2:]
		}
		if i := strings.LastIndex(msg, " ("); i >= 0 {
			msg = msg[:i]
		}
		return msg
	}
	return err.Error()
}
