package schema

import (
	"context"
	"fmt"
	"strconv"
)

// Postgres targets PostgreSQL 14 or later through the pgx database/sql
// driver. The shadow is a plain table holding the name and its tsvector.
var Postgres Dialect = postgresDialect{}

type postgresDialect struct{}

func (postgresDialect) Name() string { return "postgres" }

func (postgresDialect) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

func (postgresDialect) tableStatements() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS players (
			fideid       BIGINT PRIMARY KEY,
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
		`CREATE TABLE IF NOT EXISTS players_fts (
			fideid   BIGINT PRIMARY KEY,
			name     TEXT NOT NULL,
			document tsvector GENERATED ALWAYS AS (to_tsvector('simple', name)) STORED
		)`,
		`CREATE INDEX IF NOT EXISTS players_fts_document ON players_fts USING gin (document)`,
	}
}

func (postgresDialect) triggerStatements() []string {
	return []string{
		`CREATE OR REPLACE FUNCTION players_fts_sync() RETURNS trigger
		LANGUAGE plpgsql AS $$
		BEGIN
			IF TG_OP IN ('UPDATE', 'DELETE') THEN
				DELETE FROM players_fts WHERE fideid = OLD.fideid;
			END IF;
			IF TG_OP IN ('INSERT', 'UPDATE') THEN
				INSERT INTO players_fts (fideid, name) VALUES (NEW.fideid, NEW.name);
			END IF;
			RETURN NULL;
		END
		$$`,
		`CREATE OR REPLACE TRIGGER players_ai AFTER INSERT ON players
			FOR EACH ROW EXECUTE FUNCTION players_fts_sync()`,
		`CREATE OR REPLACE TRIGGER players_ad AFTER DELETE ON players
			FOR EACH ROW EXECUTE FUNCTION players_fts_sync()`,
		`CREATE OR REPLACE TRIGGER players_au AFTER UPDATE ON players
			FOR EACH ROW EXECUTE FUNCTION players_fts_sync()`,
	}
}

func (postgresDialect) dropTriggerStatements() []string {
	return []string{
		"DROP TRIGGER IF EXISTS players_ai ON players",
		"DROP TRIGGER IF EXISTS players_ad ON players",
		"DROP TRIGGER IF EXISTS players_au ON players",
	}
}

func (postgresDialect) ShadowInsert(id int64, name string) (string, []any) {
	return "INSERT INTO players_fts (fideid, name) VALUES ($1, $2)", []any{id, name}
}

func (postgresDialect) ShadowDelete(id int64, _ string) (string, []any) {
	return "DELETE FROM players_fts WHERE fideid = $1", []any{id}
}

func (postgresDialect) MatchSQL() string {
	return "SELECT fideid FROM players_fts WHERE document @@ plainto_tsquery('simple', $1) ORDER BY fideid"
}

func (postgresDialect) ShadowCountSQL() string {
	return "SELECT count(*) FROM players_fts"
}

func (postgresDialect) objectsQuery() string {
	return `
		SELECT 'table', table_name::text FROM information_schema.tables
			WHERE table_schema = current_schema() AND table_name LIKE 'players%'
		UNION
		SELECT 'trigger', trigger_name::text FROM information_schema.triggers
			WHERE trigger_schema = current_schema() AND event_object_table = 'players'
		UNION
		SELECT 'index', indexname::text FROM pg_indexes
			WHERE schemaname = current_schema() AND tablename LIKE 'players%'
		UNION
		SELECT 'function', routine_name::text FROM information_schema.routines
			WHERE routine_schema = current_schema() AND routine_name = 'players_fts_sync'
		ORDER BY 1, 2
	`
}

// Relax disables synchronous commit for the session only.
func (postgresDialect) Relax(ctx context.Context, q Querier) (func(context.Context) error, error) {
	var prev string
	if err := q.QueryRowContext(ctx, "SHOW synchronous_commit").Scan(&prev); err != nil {
		return nil, fmt.Errorf("reading synchronous_commit: %w", err)
	}
	if _, err := q.ExecContext(ctx, "SET synchronous_commit = off"); err != nil {
		return nil, fmt.Errorf("relaxing synchronous_commit: %w", err)
	}
	return func(ctx context.Context) error {
		_, err := q.ExecContext(ctx, "SELECT set_config('synchronous_commit', $1, false)", prev)
		return err
	}, nil
}
