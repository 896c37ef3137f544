package schema

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// EnsureIndexes builds the secondary indexes. It is meant to run once the
// bulk load has committed, so inserts do not pay for index maintenance.
func EnsureIndexes(ctx context.Context, q Querier) error {
	_, err := q.ExecContext(ctx, "CREATE INDEX IF NOT EXISTS "+CountryIndex+" ON players (country)")
	if err != nil {
		return fmt.Errorf("creating %s: %w", CountryIndex, err)
	}
	log.WithField("index", CountryIndex).Debug("index ensured")
	return nil
}
