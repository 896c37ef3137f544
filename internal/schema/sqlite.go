package schema

import (
	"context"
	"fmt"
)

// SQLite targets a database file opened with modernc.org/sqlite, which ships
// with FTS5 compiled in.
var SQLite Dialect = sqliteDialect{}

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return "sqlite" }

func (sqliteDialect) Placeholder(int) string { return "?" }

func (sqliteDialect) tableStatements() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS players (
			fideid       INTEGER PRIMARY KEY,
			name         TEXT NOT NULL,
			country      TEXT,
			sex          TEXT,
			title        TEXT,
			w_title      TEXT,
			o_title      TEXT,
			foa_title    TEXT,
			rating       INTEGER,
			games        INTEGER,
			k            INTEGER,
			rapid_rating INTEGER,
			rapid_games  INTEGER,
			rapid_k      INTEGER,
			blitz_rating INTEGER,
			blitz_games  INTEGER,
			blitz_k      INTEGER,
			birthday     INTEGER,
			flag         TEXT
		)`,
		// External content: the index stores no copy of name, it reads the
		// players row with the same rowid.
		`CREATE VIRTUAL TABLE IF NOT EXISTS players_fts USING fts5(
			name,
			content='players',
			content_rowid='fideid'
		)`,
	}
}

func (sqliteDialect) triggerStatements() []string {
	return []string{
		`CREATE TRIGGER IF NOT EXISTS players_ai AFTER INSERT ON players BEGIN
			INSERT INTO players_fts(rowid, name) VALUES (new.fideid, new.name);
		END`,
		`CREATE TRIGGER IF NOT EXISTS players_ad AFTER DELETE ON players BEGIN
			INSERT INTO players_fts(players_fts, rowid, name) VALUES ('delete', old.fideid, old.name);
		END`,
		`CREATE TRIGGER IF NOT EXISTS players_au AFTER UPDATE ON players BEGIN
			INSERT INTO players_fts(players_fts, rowid, name) VALUES ('delete', old.fideid, old.name);
			INSERT INTO players_fts(rowid, name) VALUES (new.fideid, new.name);
		END`,
	}
}

func (sqliteDialect) dropTriggerStatements() []string {
	return []string{
		"DROP TRIGGER IF EXISTS players_ai",
		"DROP TRIGGER IF EXISTS players_ad",
		"DROP TRIGGER IF EXISTS players_au",
	}
}

func (sqliteDialect) ShadowInsert(id int64, name string) (string, []any) {
	return "INSERT INTO players_fts(rowid, name) VALUES (?, ?)", []any{id, name}
}

func (sqliteDialect) ShadowDelete(id int64, name string) (string, []any) {
	return "INSERT INTO players_fts(players_fts, rowid, name) VALUES ('delete', ?, ?)", []any{id, name}
}

func (sqliteDialect) MatchSQL() string {
	return "SELECT rowid FROM players_fts WHERE players_fts MATCH ? ORDER BY rowid"
}

// players_fts_docsize holds one row per indexed document.
func (sqliteDialect) ShadowCountSQL() string {
	return "SELECT count(*) FROM players_fts_docsize"
}

func (sqliteDialect) objectsQuery() string {
	return `
		SELECT type, name
		FROM sqlite_master
		WHERE type IN ('table', 'trigger', 'index')
			AND name NOT LIKE 'sqlite_%'
		ORDER BY type, name
	`
}

// Relax turns off fsync for the session and, unless the database is in WAL
// mode (which is persistent), keeps the rollback journal in memory.
func (sqliteDialect) Relax(ctx context.Context, q Querier) (func(context.Context) error, error) {
	var synchronous int
	if err := q.QueryRowContext(ctx, "PRAGMA synchronous").Scan(&synchronous); err != nil {
		return nil, fmt.Errorf("reading synchronous: %w", err)
	}
	var journal string
	if err := q.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&journal); err != nil {
		return nil, fmt.Errorf("reading journal_mode: %w", err)
	}

	relax := []string{"PRAGMA synchronous = OFF"}
	restore := []string{fmt.Sprintf("PRAGMA synchronous = %d", synchronous)}
	if journal != "wal" {
		relax = append(relax, "PRAGMA journal_mode = MEMORY")
		restore = append(restore, "PRAGMA journal_mode = "+journal)
	}

	if err := execAll(ctx, q, relax); err != nil {
		return nil, err
	}
	return func(ctx context.Context) error {
		return execAll(ctx, q, restore)
	}, nil
}
