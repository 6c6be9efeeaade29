package compress

import (
	"errors"
	"sort"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/habitd/internal/session"
)

// Selection is the budgeter's output: digests for the selected sessions
// in most-recent-first order, plus batch-level diagnostics.
type Selection struct {
	Digests []*Digest

	// BudgetExceeded is set when at least one otherwise-eligible session
	// was excluded purely because of the total byte budget. Informational
	// only — never an error.
	BudgetExceeded bool

	// Malformed collects per-session validation failures. A malformed
	// session is skipped; it never aborts the batch.
	Malformed []*session.MalformedSessionError
}

// Budgeter selects which sessions to compress under a total byte budget.
type Budgeter struct {
	compressor *Compressor
	logger     *zap.Logger
}

// NewBudgeter creates a budgeter over the given compressor.
func NewBudgeter(compressor *Compressor, logger *zap.Logger) *Budgeter {
	return &Budgeter{compressor: compressor, logger: logger}
}

// Select compresses sessions most-recent-first (ties broken by session ID)
// until adding the next digest would exceed totalBudget. The result is a
// prefix of the time-sorted input: an older session is never kept at the
// expense of a newer one. An empty input yields an empty selection.
//
// The input slice is not modified.
func (b *Budgeter) Select(sessions []session.Session, perSessionBudget, totalBudget int) *Selection {
	sorted := make([]session.Session, len(sessions))
	copy(sorted, sessions)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return sorted[i].ID < sorted[j].ID
	})

	sel := &Selection{}
	total := 0

	for i := range sorted {
		d, err := b.compressor.Compress(&sorted[i], perSessionBudget)
		if err != nil {
			var me *session.MalformedSessionError
			if errors.As(err, &me) {
				sel.Malformed = append(sel.Malformed, me)
				continue
			}
			// Compress only fails with malformed-session errors today;
			// anything else still only costs this one session.
			sel.Malformed = append(sel.Malformed, &session.MalformedSessionError{
				SessionID: sorted[i].ID,
				Reason:    err.Error(),
			})
			continue
		}

		if total+d.Size() > totalBudget {
			sel.BudgetExceeded = true
			b.logger.Debug("total budget reached",
				zap.Int("selected", len(sel.Digests)),
				zap.Int("excluded", len(sorted)-i),
				zap.Int("total_bytes", total))
			break
		}

		sel.Digests = append(sel.Digests, d)
		total += d.Size()
	}

	return sel
}
