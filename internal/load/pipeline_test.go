package load

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hurou927/fide-ratings/internal/db"
	"github.com/hurou927/fide-ratings/internal/extract"
	"github.com/hurou927/fide-ratings/internal/player"
	"github.com/hurou927/fide-ratings/internal/schema"
)

// One complete record, one without any rating tags, one without a fideid.
const scenario = `<?xml version="1.0" encoding="UTF-8"?>
<playerslist>
 <player>
  <fideid>1503014</fideid><name>Carlsen, Magnus</name><country>NOR</country><sex>M</sex>
  <title>GM</title><w_title></w_title><o_title></o_title><foa_title></foa_title>
  <rating>2830</rating><games>0</games><k>10</k>
  <rapid_rating>2824</rapid_rating><rapid_games>0</rapid_games><rapid_k>10</rapid_k>
  <blitz_rating>2890</blitz_rating><blitz_games>0</blitz_games><blitz_k>10</blitz_k>
  <birthday>1990</birthday><flag></flag>
 </player>
 <player>
  <fideid>5202213</fideid><name>Polgar, Judit</name><country>HUN</country><sex>F</sex>
  <title>GM</title><birthday>1976</birthday><flag>wi</flag>
 </player>
 <player>
  <name>Mystery, Player</name><country>FID</country><rating>1800</rating>
 </player>
</playerslist>
`

func writeSource(t *testing.T, fs afero.Fs, name, body string) string {
	t.Helper()
	path := "/src/" + name
	require.NoError(t, afero.WriteFile(fs, path, []byte(body), 0o644))
	return path
}

func baseOptions(fs afero.Fs, source, dest string) Options {
	return Options{
		Source:      source,
		Destination: dest,
		BatchSize:   1,
		OnError:     extract.FailFast,
		OnConflict:  Replace,
		Sync:        schema.Triggers,
		Durability:  Relaxed,
		Fs:          fs,
	}
}

func storedPlayers(t *testing.T, dest string) []player.Player {
	t.Helper()
	sqlDB, _, err := db.Open(context.Background(), dest)
	require.NoError(t, err)
	defer sqlDB.Close()
	return dumpPlayers(t, sqlDB)
}

func TestRunFailFastCommitsNothing(t *testing.T) {
	fs := afero.NewMemMapFs()
	dest := filepath.Join(t.TempDir(), "players.db")
	opts := baseOptions(fs, writeSource(t, fs, "players.xml", scenario), dest)

	res, err := Run(context.Background(), opts)
	require.Nil(t, res)

	var fieldErr *extract.RecordFieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "fideid", fieldErr.Field)
	assert.Contains(t, err.Error(), "<name>Mystery, Player</name>")

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr), "store must not be touched")
}

func TestRunFailFastLeavesExistingStoreUntouched(t *testing.T) {
	fs := afero.NewMemMapFs()
	dest := filepath.Join(t.TempDir(), "players.db")

	good := strings.Replace(scenario, "<name>Mystery, Player</name>", "<fideid>99</fideid><name>Mystery, Player</name>", 1)
	_, err := Run(context.Background(), baseOptions(fs, writeSource(t, fs, "good.xml", good), dest))
	require.NoError(t, err)
	before := storedPlayers(t, dest)

	bad := strings.ReplaceAll(scenario, "2830", "2900")
	_, err = Run(context.Background(), baseOptions(fs, writeSource(t, fs, "bad.xml", bad), dest))
	require.Error(t, err)

	assert.Equal(t, before, storedPlayers(t, dest))
}

func TestRunSkipLoadsValidRecords(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	fs := afero.NewMemMapFs()
	dest := filepath.Join(t.TempDir(), "players.db")
	opts := baseOptions(fs, writeSource(t, fs, "players.xml", scenario), dest)
	opts.OnError = extract.Skip

	res, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Parsed)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 2, res.Records)
	assert.Equal(t, 2, res.Batches)
	assert.Equal(t, schema.Counts{Players: 2, Indexed: 2}, res.Counts)
	assert.NotEmpty(t, res.RunID)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == log.WarnLevel && strings.Contains(e.Data["err"].(error).Error(), "Mystery, Player") {
			warned = true
		}
	}
	assert.True(t, warned, "skipped record must be logged")

	got := storedPlayers(t, dest)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1503014), got[0].FideID)
	assert.Equal(t, 2830, *got[0].Standard.Rating)
	assert.Nil(t, got[0].Flag)

	polgar := got[1]
	assert.Equal(t, "Polgar, Judit", polgar.Name)
	assert.Equal(t, player.Rating{}, polgar.Standard, "missing ratings are stored as NULL")
	assert.Equal(t, player.Rating{}, polgar.Rapid)
	assert.Equal(t, player.Rating{}, polgar.Blitz)
	assert.Equal(t, "wi", *polgar.Flag)
}

func TestRunTwiceUnderIgnoreKeepsFirstValues(t *testing.T) {
	fs := afero.NewMemMapFs()
	dest := filepath.Join(t.TempDir(), "players.db")

	first := writeSource(t, fs, "first.xml", scenario)
	second := writeSource(t, fs, "second.xml", strings.ReplaceAll(scenario, "Polgar, Judit", "Polgar, Judit Renamed"))

	for _, src := range []string{first, first, second} {
		opts := baseOptions(fs, src, dest)
		opts.OnError = extract.Skip
		opts.OnConflict = Ignore
		opts.BatchSize = 1000

		res, err := Run(context.Background(), opts)
		require.NoError(t, err)
		assert.Equal(t, schema.Counts{Players: 2, Indexed: 2}, res.Counts)
	}

	got := storedPlayers(t, dest)
	require.Len(t, got, 2)
	assert.Equal(t, "Polgar, Judit", got[1].Name)

	sqlDB, d, err := db.Open(context.Background(), dest)
	require.NoError(t, err)
	defer sqlDB.Close()
	renamed, err := schema.Match(context.Background(), sqlDB, d, "renamed")
	require.NoError(t, err)
	assert.Empty(t, renamed)
}

func TestRunReplaceOverwrites(t *testing.T) {
	fs := afero.NewMemMapFs()
	dest := filepath.Join(t.TempDir(), "players.db")

	for _, body := range []string{scenario, strings.ReplaceAll(scenario, "2830", "2847")} {
		opts := baseOptions(fs, writeSource(t, fs, "players.xml", body), dest)
		opts.OnError = extract.Skip
		opts.Sync = schema.Explicit
		opts.Durability = Full
		_, err := Run(context.Background(), opts)
		require.NoError(t, err)
	}

	got := storedPlayers(t, dest)
	require.Len(t, got, 2)
	assert.Equal(t, 2847, *got[0].Standard.Rating)
}

func TestRunBuildsCountryIndex(t *testing.T) {
	fs := afero.NewMemMapFs()
	dest := filepath.Join(t.TempDir(), "players.db")
	opts := baseOptions(fs, writeSource(t, fs, "players.xml", scenario), dest)
	opts.OnError = extract.Skip

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)

	sqlDB, d, err := db.Open(context.Background(), dest)
	require.NoError(t, err)
	defer sqlDB.Close()

	objects, err := schema.Introspect(context.Background(), sqlDB, d)
	require.NoError(t, err)
	assert.Contains(t, objects, schema.Object{Kind: "index", Name: schema.CountryIndex})
	assert.Contains(t, objects, schema.Object{Kind: "trigger", Name: schema.UpdateTrigger})

	var plan string
	row := sqlDB.QueryRowContext(context.Background(),
		"EXPLAIN QUERY PLAN SELECT fideid FROM players WHERE country = 'NOR'")
	var id, parent, notused int
	require.NoError(t, row.Scan(&id, &parent, &notused, &plan))
	assert.Contains(t, plan, schema.CountryIndex)
}

func TestRunMalformedSource(t *testing.T) {
	fs := afero.NewMemMapFs()
	dest := filepath.Join(t.TempDir(), "players.db")

	_, err := Run(context.Background(), baseOptions(fs, writeSource(t, fs, "players.xml", "<playerslist><player>"), dest))
	var formatErr *extract.SourceFormatError
	require.ErrorAs(t, err, &formatErr)

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunUnwritableStore(t *testing.T) {
	fs := afero.NewMemMapFs()
	dest := filepath.Join(t.TempDir(), "missing-dir", "players.db")
	opts := baseOptions(fs, writeSource(t, fs, "players.xml", scenario), dest)
	opts.OnError = extract.Skip

	_, err := Run(context.Background(), opts)
	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "open", storeErr.Op)
}

func TestParseDurability(t *testing.T) {
	d, err := ParseDurability("full")
	require.NoError(t, err)
	assert.Equal(t, Full, d)

	_, err = ParseDurability("paranoid")
	require.Error(t, err)
}
