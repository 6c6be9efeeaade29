package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/habitd/internal/classify"
	"github.com/fyrsmithlabs/habitd/internal/compress"
	"github.com/fyrsmithlabs/habitd/internal/config"
	"github.com/fyrsmithlabs/habitd/internal/mining"
	"github.com/fyrsmithlabs/habitd/internal/scrub"
	"github.com/fyrsmithlabs/habitd/internal/session"
)

// Budgets bounds digest sizes for one run.
type Budgets struct {
	PerSessionBytes int
	TotalBytes      int
}

// Result carries the suggestions plus every intermediate artifact, so
// callers can report or persist whatever they need.
type Result struct {
	RunID string `json:"run_id"`

	// Suggestions are ordered P1 first, pattern ID breaking ties.
	Suggestions []classify.Suggestion `json:"suggestions"`

	Digests  []compress.Digest `json:"digests"`
	Patterns []mining.Pattern  `json:"patterns"`

	// Malformed lists sessions skipped during compression. Their
	// presence never fails the run.
	Malformed []*session.MalformedSessionError `json:"malformed,omitempty"`

	// BudgetExceeded is set when at least one session was excluded for
	// space. Informational, not an error.
	BudgetExceeded bool `json:"budget_exceeded,omitempty"`

	Duration time.Duration `json:"duration"`
}

// ByPriority returns the suggestions in one tier, preserving order.
func (r *Result) ByPriority(p classify.Priority) []classify.Suggestion {
	var out []classify.Suggestion
	for _, s := range r.Suggestions {
		if s.Priority == p {
			out = append(out, s)
		}
	}
	return out
}

// Pipeline runs the full batch computation.
type Pipeline struct {
	budgeter   *compress.Budgeter
	scrubber   *scrub.Scrubber
	miner      *mining.Miner
	classifier *classify.Classifier
	reasoner   Reasoner
	metrics    *Metrics
	logger     *zap.Logger
}

// New builds a pipeline from config with the default stages.
func New(cfg *config.Config, logger *zap.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	scrubber, err := scrub.NewScrubber(scrub.Config{Enabled: cfg.Scrub.Enabled}, logger)
	if err != nil {
		return nil, fmt.Errorf("building scrubber: %w", err)
	}
	miner := mining.NewMiner(mining.Config{
		MinFrequency:         cfg.Mining.MinFrequency,
		SequenceLen:          cfg.Mining.SequenceLen,
		ConsistencyThreshold: cfg.Mining.ConsistencyThreshold,
		LongSessionTurns:     cfg.Mining.LongSessionTurns,
		ShortSessionTurns:    cfg.Mining.ShortSessionTurns,
	}, logger)
	return &Pipeline{
		budgeter:   compress.NewBudgeter(compress.NewCompressor(nil, logger), logger),
		scrubber:   scrubber,
		miner:      miner,
		classifier: classify.NewClassifier(logger),
		reasoner:   NoopReasoner{},
		metrics:    NewMetrics(),
		logger:     logger,
	}, nil
}

// WithReasoner swaps in an external reasoner. Returns the pipeline for
// chaining.
func (p *Pipeline) WithReasoner(r Reasoner) *Pipeline {
	if r != nil {
		p.reasoner = r
	}
	return p
}

// Run executes the batch: select within budget, compress, scrub, mine,
// classify. Malformed sessions and budget overflow are reported on the
// result, never as errors; Run fails only on context cancellation or a
// broken collaborator.
func (p *Pipeline) Run(ctx context.Context, sessions []session.Session, budgets Budgets) (*Result, error) {
	start := time.Now()
	result := &Result{RunID: uuid.NewString()}

	selection := p.budgeter.Select(sessions, budgets.PerSessionBytes, budgets.TotalBytes)
	selected := make([]compress.Digest, len(selection.Digests))
	for i, d := range selection.Digests {
		selected[i] = *d
	}
	result.Digests = p.scrubber.ScrubAll(selected)
	result.Malformed = selection.Malformed
	result.BudgetExceeded = selection.BudgetExceeded
	p.metrics.SessionsSelected.Add(float64(len(result.Digests)))
	p.metrics.SessionsMalformed.Add(float64(len(result.Malformed)))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result.Patterns = p.miner.Mine(result.Digests)
	for _, pat := range result.Patterns {
		p.metrics.PatternsTotal.WithLabelValues(string(pat.Family)).Inc()
	}

	suggestions := p.classifier.ClassifyAll(result.Patterns)
	enriched, err := p.reasoner.Enrich(ctx, result.Digests, suggestions)
	if err != nil {
		// Heuristic suggestions stand on their own.
		p.logger.Warn("reasoner enrichment failed", zap.Error(err))
	} else {
		suggestions = enriched
	}
	sortSuggestions(suggestions)
	result.Suggestions = suggestions
	for _, s := range result.Suggestions {
		p.metrics.SuggestionsTotal.WithLabelValues(string(s.Kind), string(s.Priority)).Inc()
	}

	result.Duration = time.Since(start)
	p.metrics.RunDuration.Observe(result.Duration.Seconds())
	p.logger.Info("pipeline run complete",
		zap.String("run_id", result.RunID),
		zap.Int("sessions_in", len(sessions)),
		zap.Int("digests", len(result.Digests)),
		zap.Int("patterns", len(result.Patterns)),
		zap.Int("suggestions", len(result.Suggestions)),
		zap.Duration("duration", result.Duration))
	return result, nil
}

var priorityRank = map[classify.Priority]int{
	classify.PriorityP1: 0,
	classify.PriorityP2: 1,
	classify.PriorityP3: 2,
}

func sortSuggestions(suggestions []classify.Suggestion) {
	sort.SliceStable(suggestions, func(i, j int) bool {
		if priorityRank[suggestions[i].Priority] != priorityRank[suggestions[j].Priority] {
			return priorityRank[suggestions[i].Priority] < priorityRank[suggestions[j].Priority]
		}
		return suggestions[i].PatternID < suggestions[j].PatternID
	})
}
