package mining

import (
	"math"
	"slices"
	"strings"

	"github.com/fyrsmithlabs/habitd/internal/compress"
)

type seqStats struct {
	freq     int
	turns    int
	examples []string
}

// mineSequences counts tool-name n-grams over the assistant lines of
// each digest. Tool labels accumulate across consecutive C: lines and
// the run resets at every U: line, so an n-gram never spans an
// intervening user turn.
func (m *Miner) mineSequences(digests []compress.Digest) []Pattern {
	n := m.cfg.SequenceLen
	stats := make(map[string]*seqStats)

	for _, d := range digests {
		var run []string
		flush := func() {
			for i := 0; i+n <= len(run); i++ {
				sig := strings.Join(run[i:i+n], " → ")
				st := stats[sig]
				if st == nil {
					st = &seqStats{}
					stats[sig] = st
				}
				st.freq++
				st.turns += d.Turns
				example := "[" + d.Project + "] " + sig
				if len(st.examples) < maxExamples && !slices.Contains(st.examples, example) {
					st.examples = append(st.examples, example)
				}
			}
			run = run[:0]
		}
		for _, line := range d.Lines {
			if strings.HasPrefix(line, "U: ") {
				flush()
				continue
			}
			run = append(run, compress.ToolNames(line)...)
		}
		flush()
	}

	var patterns []Pattern
	for sig, st := range stats {
		if st.freq < m.cfg.MinFrequency {
			continue
		}
		p := newPattern(FamilySequence, sig, st.freq, st.examples, math.Min(1, float64(st.freq)/10))
		p.AvgTurns = float64(st.turns) / float64(st.freq)
		patterns = append(patterns, p)
	}
	sortPatterns(patterns)
	return patterns
}
