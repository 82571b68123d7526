// services/sequencer.go
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"bonus-listing-system/logging"
	"bonus-listing-system/metrics"
	"bonus-listing-system/models"
	"bonus-listing-system/store"

	"golang.org/x/sync/errgroup"
)

// Append modes, mirrored from config.
const (
	AppendAfterKeyed = "after-keyed"
	AppendAfterAll   = "after-all"
)

// Assignment sets one bonus's order key.
type Assignment struct {
	BonusID string `json:"bonusId"`
	Key     int    `json:"order"`
}

// SequenceReport summarizes a full re-sequence.
type SequenceReport struct {
	Total   int      `json:"total"`
	Updated int      `json:"updated"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// Sequencer maintains the dense order keys of bonuses. Writes are
// independent per document; a partially failed batch is repaired by the
// next SequenceAll.
type Sequencer struct {
	bonuses     store.BonusStore
	aggregator  *Aggregator
	concurrency int
	appendMode  string
}

func NewSequencer(bonuses store.BonusStore, aggregator *Aggregator, concurrency int, appendMode string) *Sequencer {
	if concurrency < 1 {
		concurrency = 1
	}
	if appendMode == "" {
		appendMode = AppendAfterKeyed
	}
	return &Sequencer{
		bonuses:     bonuses,
		aggregator:  aggregator,
		concurrency: concurrency,
		appendMode:  appendMode,
	}
}

// Assign writes every assignment concurrently. All writes are attempted;
// the returned error joins every failure.
func (s *Sequencer) Assign(ctx context.Context, assignments ...Assignment) error {
	var (
		mu   sync.Mutex
		errs []error
		g    errgroup.Group
	)
	g.SetLimit(s.concurrency)
	for _, a := range assignments {
		g.Go(func() error {
			err := s.bonuses.UpdateBonus(ctx, a.BonusID, models.OrderOnly(a.Key))
			metrics.RecordOrderWrite("assign", err)
			if err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("bonus %s: %w", a.BonusID, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// Swap exchanges the keys of two bonuses. A record without a key takes its
// position in the current display order.
func (s *Sequencer) Swap(ctx context.Context, idA, idB string) error {
	list, err := s.aggregator.List(ctx)
	if err != nil {
		return err
	}

	keyA, okA := effectiveKey(list, idA)
	keyB, okB := effectiveKey(list, idB)
	if !okA {
		return fmt.Errorf("bonus %s: %w", idA, store.ErrNotFound)
	}
	if !okB {
		return fmt.Errorf("bonus %s: %w", idB, store.ErrNotFound)
	}

	return s.Assign(ctx,
		Assignment{BonusID: idA, Key: keyB},
		Assignment{BonusID: idB, Key: keyA},
	)
}

func effectiveKey(list []models.ResolvedBonus, id string) (int, bool) {
	for pos, b := range list {
		if b.ID == id {
			if b.Order != nil {
				return *b.Order, true
			}
			return pos, true
		}
	}
	return 0, false
}

// SequenceAll rewrites keys to 0..n-1 following the display order. Records
// already holding their target key are not written, so a second run right
// after a successful one writes nothing. Only the fetch failing is an error.
func (s *Sequencer) SequenceAll(ctx context.Context) (SequenceReport, error) {
	list, err := s.aggregator.List(ctx)
	if err != nil {
		return SequenceReport{}, err
	}

	report := SequenceReport{Total: len(list)}
	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(s.concurrency)
	for pos, b := range list {
		if b.Order != nil && *b.Order == pos {
			continue
		}
		g.Go(func() error {
			err := s.bonuses.UpdateBonus(ctx, b.ID, models.OrderOnly(pos))
			metrics.RecordOrderWrite("sequence_all", err)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed++
				report.Errors = append(report.Errors, fmt.Sprintf("bonus %s: %v", b.ID, err))
				return nil
			}
			report.Updated++
			return nil
		})
	}
	_ = g.Wait()

	event := logging.Info()
	if report.Failed > 0 {
		event = logging.Warn()
	}
	event.Int("total", report.Total).Int("updated", report.Updated).Int("failed", report.Failed).Msg("🔢 bonuses re-sequenced")
	return report, nil
}

// Repair is the recovery entry point after partial writes; it is SequenceAll.
func (s *Sequencer) Repair(ctx context.Context) (SequenceReport, error) {
	return s.SequenceAll(ctx)
}

// NextKey is one past the highest present key; unkeyed records are ignored.
func (s *Sequencer) NextKey(ctx context.Context) (int, error) {
	bonuses, err := s.bonuses.ListBonuses(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch bonuses: %w", err)
	}
	next := 0
	for _, b := range bonuses {
		if b.OrderKey != nil && *b.OrderKey+1 > next {
			next = *b.OrderKey + 1
		}
	}
	return next, nil
}

// AppendKey is the key a newly created bonus receives under the configured
// append mode. In after-all mode every record is keyed first, so the new
// bonus lands after unordered legacy records too.
func (s *Sequencer) AppendKey(ctx context.Context) (int, error) {
	if s.appendMode != AppendAfterAll {
		return s.NextKey(ctx)
	}
	report, err := s.SequenceAll(ctx)
	if err != nil {
		return 0, err
	}
	if report.Failed > 0 {
		// some keys are stale; fall back to the visible maximum
		return s.NextKey(ctx)
	}
	return report.Total, nil
}
