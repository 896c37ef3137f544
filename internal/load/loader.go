package load

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/hurou927/fide-ratings/internal/player"
	"github.com/hurou927/fide-ratings/internal/schema"
)

// DefaultBatchSize is the number of records committed per transaction.
const DefaultBatchSize = 1000

// Conflict decides what happens to a record whose fideid is already stored.
type Conflict string

const (
	// Replace overwrites the stored record with the incoming one.
	Replace Conflict = "replace"
	// Ignore keeps the stored record and drops the incoming one.
	Ignore Conflict = "ignore"
)

// ParseConflict validates a configured conflict mode.
func ParseConflict(s string) (Conflict, error) {
	switch c := Conflict(s); c {
	case Replace, Ignore:
		return c, nil
	default:
		return "", fmt.Errorf("unknown conflict mode %q (supported: %s, %s)", s, Replace, Ignore)
	}
}

// Beginner is satisfied by *sql.DB and *sql.Conn.
type Beginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// LoaderOptions configures a Loader.
type LoaderOptions struct {
	BatchSize int
	Conflict  Conflict
	Sync      schema.Sync
}

// Stats counts what a Loader has committed.
type Stats struct {
	Records int
	Batches int
}

// Loader buffers players and writes each full buffer in one transaction.
// Batches commit in the order records were added.
type Loader struct {
	conn   Beginner
	d      schema.Dialect
	opts   LoaderOptions
	upsert string
	lookup string

	buf   []player.Player
	stats Stats
}

// NewLoader creates a Loader writing through conn. Zero-valued options take
// their defaults.
func NewLoader(conn Beginner, d schema.Dialect, opts LoaderOptions) (*Loader, error) {
	if opts.BatchSize == 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.BatchSize < 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", opts.BatchSize)
	}
	if opts.Conflict == "" {
		opts.Conflict = Replace
	}
	if opts.Sync == "" {
		opts.Sync = schema.Triggers
	}

	return &Loader{
		conn:   conn,
		d:      d,
		opts:   opts,
		upsert: upsertSQL(d, opts.Conflict),
		lookup: "SELECT name FROM players WHERE fideid = " + d.Placeholder(1),
		buf:    make([]player.Player, 0, opts.BatchSize),
	}, nil
}

// Stats returns the totals of committed batches.
func (l *Loader) Stats() Stats { return l.stats }

// Add buffers p, flushing when the buffer reaches the batch size.
func (l *Loader) Add(ctx context.Context, p player.Player) error {
	l.buf = append(l.buf, p)
	if len(l.buf) >= l.opts.BatchSize {
		return l.Flush(ctx)
	}
	return nil
}

// Close flushes the final partial batch.
func (l *Loader) Close(ctx context.Context) error {
	return l.Flush(ctx)
}

// Flush commits the buffered records as a single transaction. On error the
// transaction is rolled back and none of the batch is visible.
func (l *Loader) Flush(ctx context.Context) error {
	if len(l.buf) == 0 {
		return nil
	}

	tx, err := l.conn.BeginTx(ctx, nil)
	if err != nil {
		return &StoreError{Op: "begin", Err: err}
	}
	if err := l.write(ctx, tx); err != nil {
		_ = tx.Rollback()
		return &StoreError{Op: "write", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return &StoreError{Op: "commit", Err: err}
	}

	l.stats.Batches++
	l.stats.Records += len(l.buf)
	log.WithFields(log.Fields{
		"batch":   l.stats.Batches,
		"size":    len(l.buf),
		"records": l.stats.Records,
	}).Debug("batch committed")

	clear(l.buf)
	l.buf = l.buf[:0]
	return nil
}

func (l *Loader) write(ctx context.Context, tx *sql.Tx) error {
	upsert, err := tx.PrepareContext(ctx, l.upsert)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer upsert.Close()

	var lookup *sql.Stmt
	if l.opts.Sync == schema.Explicit {
		if lookup, err = tx.PrepareContext(ctx, l.lookup); err != nil {
			return fmt.Errorf("preparing lookup: %w", err)
		}
		defer lookup.Close()
	}

	for i := range l.buf {
		p := &l.buf[i]
		if lookup != nil {
			err = l.writeExplicit(ctx, tx, upsert, lookup, p)
		} else {
			_, err = upsert.ExecContext(ctx, p.Values()...)
		}
		if err != nil {
			return fmt.Errorf("writing player %d: %w", p.FideID, err)
		}
	}
	return nil
}

// writeExplicit performs the shadow mutations that the triggers would
// otherwise perform, inside the batch transaction.
func (l *Loader) writeExplicit(ctx context.Context, tx *sql.Tx, upsert, lookup *sql.Stmt, p *player.Player) error {
	var indexed string
	err := lookup.QueryRowContext(ctx, p.FideID).Scan(&indexed)
	exists := err == nil
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	if exists {
		if l.opts.Conflict == Ignore {
			return nil
		}
		q, args := l.d.ShadowDelete(p.FideID, indexed)
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("removing index entry: %w", err)
		}
	}

	if _, err := upsert.ExecContext(ctx, p.Values()...); err != nil {
		return err
	}

	q, args := l.d.ShadowInsert(p.FideID, p.Name)
	if _, err := tx.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("adding index entry: %w", err)
	}
	return nil
}

func upsertSQL(d schema.Dialect, conflict Conflict) string {
	placeholders := make([]string, len(player.Columns))
	for i := range player.Columns {
		placeholders[i] = d.Placeholder(i + 1)
	}

	q := fmt.Sprintf("INSERT INTO players (%s) VALUES (%s) ON CONFLICT (fideid) ",
		strings.Join(player.Columns, ", "), strings.Join(placeholders, ", "))
	if conflict == Ignore {
		return q + "DO NOTHING"
	}

	sets := make([]string, 0, len(player.Columns)-1)
	for _, col := range player.Columns[1:] {
		sets = append(sets, col+" = excluded."+col)
	}
	return q + "DO UPDATE SET " + strings.Join(sets, ", ")
}
