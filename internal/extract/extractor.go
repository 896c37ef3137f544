package extract

import (
	"fmt"
	"iter"

	log "github.com/sirupsen/logrus"

	"github.com/hurou927/fide-ratings/internal/player"
)

// Policy decides what happens to a record whose required fields are invalid.
type Policy string

const (
	// FailFast aborts the run at the first malformed record.
	FailFast Policy = "fail-fast"
	// Skip logs the malformed record, drops it, and continues.
	Skip Policy = "skip"
)

// ParsePolicy validates a configured policy name.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case FailFast, Skip:
		return p, nil
	default:
		return "", fmt.Errorf("unknown error policy %q (supported: %s, %s)", s, FailFast, Skip)
	}
}

// Validate checks every remaining record without consuming the document and
// returns the first RecordFieldError, if any.
func (d *Document) Validate() error {
	for i, raw := range d.players {
		if raw == nil {
			continue
		}
		if _, err := toPlayer(i, raw); err != nil {
			return err
		}
	}
	return nil
}

// Records yields the document's players in document order. The sequence
// consumes the document: each element is released once yielded, so ranging
// over Records a second time yields nothing.
//
// Under FailFast the first malformed record is yielded as a *RecordFieldError
// and iteration stops. Under Skip malformed records are logged and dropped.
func (d *Document) Records(policy Policy) iter.Seq2[player.Player, error] {
	return func(yield func(player.Player, error) bool) {
		for i, raw := range d.players {
			if raw == nil {
				continue
			}
			d.players[i] = nil

			p, err := toPlayer(i, raw)
			if err != nil {
				if policy == Skip {
					d.skipped++
					log.WithFields(log.Fields{
						"source": d.Source,
						"index":  i,
						"err":    err,
					}).Warn("skipping malformed player")
					continue
				}
				yield(player.Player{}, err)
				return
			}
			if !yield(p, nil) {
				return
			}
		}
	}
}

func toPlayer(index int, raw *rawPlayer) (player.Player, error) {
	id, err := reqInt64(raw.FideID)
	if err != nil {
		return player.Player{}, &RecordFieldError{Index: index, Field: "fideid", Record: raw.String(), Err: err}
	}
	name, err := reqString(raw.Name)
	if err != nil {
		return player.Player{}, &RecordFieldError{Index: index, Field: "name", Record: raw.String(), Err: err}
	}

	return player.Player{
		FideID:     id,
		Name:       name,
		Country:    optString(raw.Country),
		Sex:        optString(raw.Sex),
		Title:      optString(raw.Title),
		WomenTitle: optString(raw.WTitle),
		OtherTitle: optString(raw.OTitle),
		FOATitle:   optString(raw.FOATitle),
		Standard: player.Rating{
			Rating: optInt(raw.Rating),
			Games:  optInt(raw.Games),
			K:      optInt(raw.K),
		},
		Rapid: player.Rating{
			Rating: optInt(raw.RapidRating),
			Games:  optInt(raw.RapidGames),
			K:      optInt(raw.RapidK),
		},
		Blitz: player.Rating{
			Rating: optInt(raw.BlitzRating),
			Games:  optInt(raw.BlitzGames),
			K:      optInt(raw.BlitzK),
		},
		BirthYear: optInt(raw.Birthday),
		Flag:      optString(raw.Flag),
	}, nil
}
