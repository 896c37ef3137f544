package schema

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Ensure creates the players table and its full-text shadow. With Triggers
// the three synchronization triggers are created; with Explicit they are
// dropped so that a writer maintaining the shadow itself never doubles an
// entry. Running Ensure again with the same sync mode is a no-op.
func Ensure(ctx context.Context, q Querier, d Dialect, sync Sync) error {
	if err := execAll(ctx, q, d.tableStatements()); err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}

	switch sync {
	case Triggers:
		if err := execAll(ctx, q, d.triggerStatements()); err != nil {
			return fmt.Errorf("creating triggers: %w", err)
		}
	case Explicit:
		if err := execAll(ctx, q, d.dropTriggerStatements()); err != nil {
			return fmt.Errorf("dropping triggers: %w", err)
		}
	default:
		return fmt.Errorf("unknown sync mode %q", sync)
	}

	log.WithFields(log.Fields{"dialect": d.Name(), "sync": sync}).Debug("schema ensured")
	return nil
}

func execAll(ctx context.Context, q Querier, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := q.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(stmt string) string {
	for i, r := range stmt {
		if r == '\n' {
			return stmt[:i]
		}
	}
	return stmt
}
