package load

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/hurou927/fide-ratings/internal/db"
	"github.com/hurou927/fide-ratings/internal/extract"
	"github.com/hurou927/fide-ratings/internal/schema"
)

// Durability decides whether fsync guarantees are lowered during a run.
type Durability string

const (
	// Relaxed lowers durability for the run's own session and restores it
	// when the run ends.
	Relaxed Durability = "relaxed"
	// Full leaves the store's settings untouched.
	Full Durability = "full"
)

// ParseDurability validates a configured durability mode.
func ParseDurability(s string) (Durability, error) {
	switch d := Durability(s); d {
	case Relaxed, Full:
		return d, nil
	default:
		return "", fmt.Errorf("unknown durability %q (supported: %s, %s)", s, Relaxed, Full)
	}
}

// Options configures one pipeline run.
type Options struct {
	Source      string
	Destination string
	BatchSize   int
	OnError     extract.Policy
	OnConflict  Conflict
	Sync        schema.Sync
	Durability  Durability

	// Fs is where Source is read from; nil means the OS filesystem.
	Fs afero.Fs
}

// Result summarizes a completed run.
type Result struct {
	RunID   string
	Parsed  int
	Skipped int
	Stats
	Counts  schema.Counts
	Elapsed time.Duration
}

// Run parses the source document, then loads it into the destination:
// schema, batched records, and finally the secondary indexes.
//
// Under extract.FailFast every record is validated before the store is
// opened, so a malformed record never leaves committed batches behind.
func Run(ctx context.Context, opts Options) (res *Result, err error) {
	start := time.Now()
	res = &Result{RunID: uuid.NewString()}
	logger := log.WithFields(log.Fields{
		"run":         res.RunID,
		"source":      opts.Source,
		"destination": opts.Destination,
	})

	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	doc, err := extract.Open(fs, opts.Source)
	if err != nil {
		return nil, err
	}
	res.Parsed = doc.Len()
	logger.WithField("players", humanize.Comma(int64(res.Parsed))).Info("source parsed")

	if opts.OnError != extract.Skip {
		if err := doc.Validate(); err != nil {
			return nil, err
		}
	}

	sqlDB, d, err := db.Open(ctx, opts.Destination)
	if err != nil {
		return nil, &StoreError{Op: "open", Err: err}
	}
	defer sqlDB.Close()

	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return nil, &StoreError{Op: "open", Err: err}
	}
	defer conn.Close()

	if err := schema.Ensure(ctx, conn, d, opts.Sync); err != nil {
		return nil, &StoreError{Op: "schema", Err: err}
	}

	if opts.Durability != Full {
		var restore func(context.Context) error
		if restore, err = d.Relax(ctx, conn); err != nil {
			return nil, &StoreError{Op: "relax", Err: err}
		}
		defer func() {
			if rerr := restore(context.WithoutCancel(ctx)); rerr != nil && err == nil {
				res, err = nil, &StoreError{Op: "restore", Err: rerr}
			}
		}()
	}

	loader, err := NewLoader(conn, d, LoaderOptions{
		BatchSize: opts.BatchSize,
		Conflict:  opts.OnConflict,
		Sync:      opts.Sync,
	})
	if err != nil {
		return nil, err
	}

	for p, rerr := range doc.Records(opts.OnError) {
		if rerr != nil {
			return nil, rerr
		}
		if err := loader.Add(ctx, p); err != nil {
			return nil, err
		}
	}
	if err := loader.Close(ctx); err != nil {
		return nil, err
	}

	if err := schema.EnsureIndexes(ctx, conn); err != nil {
		return nil, &StoreError{Op: "index", Err: err}
	}

	counts, err := schema.Count(ctx, conn, d)
	if err != nil {
		return nil, &StoreError{Op: "count", Err: err}
	}

	res.Skipped = doc.Skipped()
	res.Stats = loader.Stats()
	res.Counts = counts
	res.Elapsed = time.Since(start)

	logger.WithFields(log.Fields{
		"records": humanize.Comma(int64(res.Records)),
		"skipped": res.Skipped,
		"batches": res.Batches,
		"stored":  humanize.Comma(counts.Players),
		"elapsed": res.Elapsed.Round(time.Millisecond),
	}).Info("load complete")

	return res, nil
}
