package schema

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "players.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func objectNames(objects []Object, kind string) []string {
	var names []string
	for _, o := range objects {
		if o.Kind == kind {
			names = append(names, o.Name)
		}
	}
	return names
}

func TestEnsureIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	require.NoError(t, Ensure(ctx, db, SQLite, Triggers))
	require.NoError(t, EnsureIndexes(ctx, db))
	first, err := Introspect(ctx, db, SQLite)
	require.NoError(t, err)

	require.NoError(t, Ensure(ctx, db, SQLite, Triggers))
	require.NoError(t, EnsureIndexes(ctx, db))
	second, err := Introspect(ctx, db, SQLite)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.ElementsMatch(t, []string{InsertTrigger, DeleteTrigger, UpdateTrigger}, objectNames(second, "trigger"))
	assert.Equal(t, []string{CountryIndex}, objectNames(second, "index"))
	assert.Contains(t, objectNames(second, "table"), PlayersTable)
	assert.Contains(t, objectNames(second, "table"), FTSTable)
}

func TestTriggersKeepIndexInSync(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	require.NoError(t, Ensure(ctx, db, SQLite, Triggers))

	match := func(term string) []int64 {
		ids, err := Match(ctx, db, SQLite, term)
		require.NoError(t, err)
		return ids
	}

	_, err := db.ExecContext(ctx, `INSERT INTO players (fideid, name, country) VALUES (1503014, 'Carlsen, Magnus', 'NOR')`)
	require.NoError(t, err)
	assert.Equal(t, []int64{1503014}, match("carlsen"))

	_, err = db.ExecContext(ctx, `UPDATE players SET name = 'Nakamura, Hikaru' WHERE fideid = 1503014`)
	require.NoError(t, err)
	assert.Empty(t, match("carlsen"))
	assert.Equal(t, []int64{1503014}, match("hikaru"))

	counts, err := Count(ctx, db, SQLite)
	require.NoError(t, err)
	assert.Equal(t, Counts{Players: 1, Indexed: 1}, counts)

	_, err = db.ExecContext(ctx, `DELETE FROM players WHERE fideid = 1503014`)
	require.NoError(t, err)
	assert.Empty(t, match("hikaru"))

	counts, err = Count(ctx, db, SQLite)
	require.NoError(t, err)
	assert.Equal(t, Counts{}, counts)

	_, err = db.ExecContext(ctx, `INSERT INTO players_fts(players_fts) VALUES ('integrity-check')`)
	require.NoError(t, err)
}

func TestTriggerWritesRollBackWithPlayers(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	require.NoError(t, Ensure(ctx, db, SQLite, Triggers))

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	_, err = tx.ExecContext(ctx, `INSERT INTO players (fideid, name) VALUES (1, 'Polgar, Judit')`)
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	counts, err := Count(ctx, db, SQLite)
	require.NoError(t, err)
	assert.Equal(t, Counts{}, counts)
}

func TestExplicitSyncDropsTriggers(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	require.NoError(t, Ensure(ctx, db, SQLite, Triggers))
	require.NoError(t, Ensure(ctx, db, SQLite, Explicit))
	require.NoError(t, Ensure(ctx, db, SQLite, Explicit))

	objects, err := Introspect(ctx, db, SQLite)
	require.NoError(t, err)
	assert.Empty(t, objectNames(objects, "trigger"))

	// The shadow is now only written when asked to.
	_, err = db.ExecContext(ctx, `INSERT INTO players (fideid, name) VALUES (2, 'Firouzja, Alireza')`)
	require.NoError(t, err)
	ids, err := Match(ctx, db, SQLite, "firouzja")
	require.NoError(t, err)
	assert.Empty(t, ids)

	q, args := SQLite.ShadowInsert(2, "Firouzja, Alireza")
	_, err = db.ExecContext(ctx, q, args...)
	require.NoError(t, err)
	ids, err = Match(ctx, db, SQLite, "firouzja")
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids)

	q, args = SQLite.ShadowDelete(2, "Firouzja, Alireza")
	_, err = db.ExecContext(ctx, q, args...)
	require.NoError(t, err)
	ids, err = Match(ctx, db, SQLite, "firouzja")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestEnsureRejectsUnknownSync(t *testing.T) {
	db := openTestDB(t)
	require.Error(t, Ensure(context.Background(), db, SQLite, Sync("cron")))
}

func TestSQLiteRelaxIsRestored(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	conn, err := db.Conn(ctx)
	require.NoError(t, err)
	defer conn.Close()

	pragmas := func() (int, string) {
		var synchronous int
		var journal string
		require.NoError(t, conn.QueryRowContext(ctx, "PRAGMA synchronous").Scan(&synchronous))
		require.NoError(t, conn.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&journal))
		return synchronous, journal
	}

	syncBefore, journalBefore := pragmas()

	restore, err := SQLite.Relax(ctx, conn)
	require.NoError(t, err)
	syncDuring, journalDuring := pragmas()
	assert.Equal(t, 0, syncDuring)
	assert.Equal(t, "memory", journalDuring)

	require.NoError(t, restore(ctx))
	syncAfter, journalAfter := pragmas()
	assert.Equal(t, syncBefore, syncAfter)
	assert.Equal(t, journalBefore, journalAfter)
}

func TestParseSync(t *testing.T) {
	s, err := ParseSync("explicit")
	require.NoError(t, err)
	assert.Equal(t, Explicit, s)

	_, err = ParseSync("")
	require.Error(t, err)
}

func TestPostgresPlaceholders(t *testing.T) {
	assert.Equal(t, "$3", Postgres.Placeholder(3))
	assert.Equal(t, "?", SQLite.Placeholder(3))

	q, args := Postgres.ShadowDelete(7, "ignored")
	assert.Equal(t, "DELETE FROM players_fts WHERE fideid = $1", q)
	assert.Equal(t, []any{int64(7)}, args)
}
