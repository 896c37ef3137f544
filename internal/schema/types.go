package schema

import (
	"context"
	"database/sql"
	"fmt"
)

// Names of the objects managed by this package.
const (
	PlayersTable  = "players"
	FTSTable      = "players_fts"
	CountryIndex  = "idx_players_country"
	InsertTrigger = "players_ai"
	DeleteTrigger = "players_ad"
	UpdateTrigger = "players_au"
)

// Querier is the subset of *sql.DB, *sql.Conn and *sql.Tx used here.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Sync selects how the full-text shadow follows the players table.
type Sync string

const (
	// Triggers keeps the shadow in sync with store-side triggers.
	Triggers Sync = "triggers"
	// Explicit leaves it to the writer, which must call ShadowDelete and
	// ShadowInsert in the same transaction as every players mutation.
	Explicit Sync = "explicit"
)

// ParseSync validates a configured sync mode.
func ParseSync(s string) (Sync, error) {
	switch m := Sync(s); m {
	case Triggers, Explicit:
		return m, nil
	default:
		return "", fmt.Errorf("unknown sync mode %q (supported: %s, %s)", s, Triggers, Explicit)
	}
}

// Dialect holds the store-specific SQL.
type Dialect interface {
	// Name is "sqlite" or "postgres".
	Name() string
	// Placeholder returns the bind parameter for the n-th (1-based) argument.
	Placeholder(n int) string
	// ShadowInsert adds the full-text entry of a player.
	ShadowInsert(id int64, name string) (string, []any)
	// ShadowDelete removes the full-text entry of a player whose currently
	// indexed name is name.
	ShadowDelete(id int64, name string) (string, []any)
	// MatchSQL selects the ids of players whose name matches the single
	// bind parameter, in id order.
	MatchSQL() string
	// ShadowCountSQL counts the entries held by the full-text index.
	ShadowCountSQL() string
	// Relax lowers durability for the current session and returns a func
	// restoring the previous settings. q must be a single connection.
	Relax(ctx context.Context, q Querier) (func(context.Context) error, error)

	tableStatements() []string
	triggerStatements() []string
	dropTriggerStatements() []string
	objectsQuery() string
}

// Object is a table, trigger, index or function present in the store.
type Object struct {
	Kind string
	Name string
}

func (o Object) String() string { return o.Kind + " " + o.Name }
