package schema

import (
	"context"
	"fmt"
)

// Introspect lists the tables, triggers, indexes and functions of the store,
// ordered by kind then name.
func Introspect(ctx context.Context, q Querier, d Dialect) ([]Object, error) {
	rows, err := q.QueryContext(ctx, d.objectsQuery())
	if err != nil {
		return nil, fmt.Errorf("querying schema objects: %w", err)
	}
	defer rows.Close()

	var objects []Object
	for rows.Next() {
		var o Object
		if err := rows.Scan(&o.Kind, &o.Name); err != nil {
			return nil, err
		}
		objects = append(objects, o)
	}
	return objects, rows.Err()
}

// Counts holds the row count of players and the number of entries in its
// full-text index.
type Counts struct {
	Players int64
	Indexed int64
}

// Count reports the current Counts of the store.
func Count(ctx context.Context, q Querier, d Dialect) (Counts, error) {
	var c Counts
	if err := q.QueryRowContext(ctx, "SELECT count(*) FROM players").Scan(&c.Players); err != nil {
		return c, fmt.Errorf("counting players: %w", err)
	}
	if err := q.QueryRowContext(ctx, d.ShadowCountSQL()).Scan(&c.Indexed); err != nil {
		return c, fmt.Errorf("counting index entries: %w", err)
	}
	return c, nil
}

// Match returns the ids of players whose name matches term, in id order.
func Match(ctx context.Context, q Querier, d Dialect, term string) ([]int64, error) {
	rows, err := q.QueryContext(ctx, d.MatchSQL(), term)
	if err != nil {
		return nil, fmt.Errorf("matching %q: %w", term, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
