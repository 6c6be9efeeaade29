package mining

import (
	"sync"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/habitd/internal/compress"
)

// Config tunes the mining thresholds.
type Config struct {
	// MinFrequency is the smallest occurrence count kept as a pattern.
	MinFrequency int
	// SequenceLen is the n-gram length for sequence mining.
	SequenceLen int
	// ConsistencyThreshold is the session fraction a behavioral
	// aggregate must reach to be emitted.
	ConsistencyThreshold float64
	// LongSessionTurns marks a session as long at or above this many
	// user turns.
	LongSessionTurns int
	// ShortSessionTurns marks a session as short at or below this many
	// user turns.
	ShortSessionTurns int
}

// DefaultConfig returns the thresholds used when a field is zero.
func DefaultConfig() Config {
	return Config{
		MinFrequency:         3,
		SequenceLen:          3,
		ConsistencyThreshold: 0.8,
		LongSessionTurns:     15,
		ShortSessionTurns:    5,
	}
}

// Miner runs the three pattern families over a digest batch.
type Miner struct {
	cfg    Config
	logger *zap.Logger
}

// NewMiner creates a miner, filling zero config fields with defaults.
func NewMiner(cfg Config, logger *zap.Logger) *Miner {
	def := DefaultConfig()
	if cfg.MinFrequency <= 0 {
		cfg.MinFrequency = def.MinFrequency
	}
	if cfg.SequenceLen <= 0 {
		cfg.SequenceLen = def.SequenceLen
	}
	if cfg.ConsistencyThreshold <= 0 {
		cfg.ConsistencyThreshold = def.ConsistencyThreshold
	}
	if cfg.LongSessionTurns <= 0 {
		cfg.LongSessionTurns = def.LongSessionTurns
	}
	if cfg.ShortSessionTurns <= 0 {
		cfg.ShortSessionTurns = def.ShortSessionTurns
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Miner{cfg: cfg, logger: logger}
}

// Mine extracts all three pattern families from the batch. The
// sub-miners run concurrently and share no state; their results are
// concatenated in a fixed family order so output is deterministic.
func (m *Miner) Mine(digests []compress.Digest) []Pattern {
	var sequences, templates, behaviors []Pattern

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		sequences = m.mineSequences(digests)
	}()
	go func() {
		defer wg.Done()
		templates = m.mineTemplates(digests)
	}()
	go func() {
		defer wg.Done()
		behaviors = m.mineBehaviors(digests)
	}()
	wg.Wait()

	out := make([]Pattern, 0, len(sequences)+len(templates)+len(behaviors))
	out = append(out, sequences...)
	out = append(out, templates...)
	out = append(out, behaviors...)

	m.logger.Debug("mining complete",
		zap.Int("digests", len(digests)),
		zap.Int("sequences", len(sequences)),
		zap.Int("templates", len(templates)),
		zap.Int("behaviors", len(behaviors)))
	return out
}
