package mining

import (
	"fmt"
	"hash/fnv"
	"sort"
)

// Family identifies the sub-miner that produced a pattern.
type Family string

const (
	FamilySequence Family = "sequence"
	FamilyTemplate Family = "template"
	FamilyBehavior Family = "behavior"
)

// maxExamples bounds the literal evidence kept per pattern.
const maxExamples = 3

// Pattern is a mined regularity. Patterns are value objects; they are
// created by the miner and never mutated afterwards.
type Pattern struct {
	// ID is deterministic for a given family and signature, so repeated
	// runs over the same batch produce identical identifiers.
	ID        string `json:"id"`
	Family    Family `json:"family"`
	Signature string `json:"signature"`
	// Frequency counts occurrences, or sessions for behavioral patterns.
	Frequency int `json:"frequency"`
	// Examples holds up to maxExamples literal samples from the batch.
	Examples   []string `json:"examples,omitempty"`
	Confidence float64  `json:"confidence"`
	// AvgTurns is the mean user-turn count of the sessions the pattern
	// occurred in. Zero when the family does not track it.
	AvgTurns float64 `json:"avg_turns,omitempty"`
}

func patternID(family Family, signature string) string {
	h := fnv.New32a()
	h.Write([]byte(signature))
	return fmt.Sprintf("%s-%08x", family, h.Sum32())
}

func newPattern(family Family, signature string, freq int, examples []string, confidence float64) Pattern {
	if len(examples) > maxExamples {
		examples = examples[:maxExamples]
	}
	return Pattern{
		ID:         patternID(family, signature),
		Family:     family,
		Signature:  signature,
		Frequency:  freq,
		Examples:   examples,
		Confidence: confidence,
	}
}

// sortPatterns orders by descending frequency, signature breaking ties,
// so miner output is deterministic for a given batch.
func sortPatterns(patterns []Pattern) {
	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].Frequency != patterns[j].Frequency {
			return patterns[i].Frequency > patterns[j].Frequency
		}
		return patterns[i].Signature < patterns[j].Signature
	})
}

func clip(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
