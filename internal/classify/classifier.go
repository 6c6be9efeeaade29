package classify

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/habitd/internal/mining"
)

const (
	// minKindFrequency gates the skill and slash_command rules.
	minKindFrequency = 3
	// agentTurnThreshold marks a sequence as agent-worthy when the
	// sessions it occurs in average more turns than this.
	agentTurnThreshold = 10
)

// Classifier turns patterns into suggestions.
type Classifier struct {
	logger *zap.Logger
}

func NewClassifier(logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{logger: logger}
}

// Classify maps one pattern to exactly one suggestion. The decision
// table is evaluated top to bottom, first match wins, with a
// claude_md_rule fallback so no pattern is ever dropped.
func (c *Classifier) Classify(p mining.Pattern) Suggestion {
	kind := c.kindOf(p)
	s := Suggestion{
		PatternID: p.ID,
		Kind:      kind,
		Name:      suggestedName(p, kind),
		Priority:  priorityOf(p),
		Rationale: rationale(p, kind),
	}
	c.logger.Debug("pattern classified",
		zap.String("pattern", p.ID),
		zap.String("kind", string(kind)),
		zap.String("priority", string(s.Priority)))
	return s
}

// ClassifyAll classifies a batch, preserving pattern order.
func (c *Classifier) ClassifyAll(patterns []mining.Pattern) []Suggestion {
	out := make([]Suggestion, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, c.Classify(p))
	}
	return out
}

func (c *Classifier) kindOf(p mining.Pattern) Kind {
	switch {
	case p.Family == mining.FamilySequence && p.Frequency >= minKindFrequency:
		return KindSkill
	case p.Family == mining.FamilyTemplate && p.Frequency >= minKindFrequency:
		return KindSlashCommand
	case p.Family == mining.FamilySequence &&
		(strings.Contains(p.Signature, "Task") || p.AvgTurns > agentTurnThreshold):
		return KindAgent
	case p.Family == mining.FamilyBehavior:
		return KindClaudeMDRule
	default:
		return KindClaudeMDRule
	}
}

func priorityOf(p mining.Pattern) Priority {
	switch {
	case p.Confidence >= 0.7 && p.Frequency >= 5:
		return PriorityP1
	case p.Confidence >= 0.4:
		return PriorityP2
	default:
		return PriorityP3
	}
}

// rationale quotes one literal example so the suggestion stays
// traceable to evidence. Falls back to the signature when the pattern
// carries no examples.
func rationale(p mining.Pattern, kind Kind) string {
	evidence := p.Signature
	if len(p.Examples) > 0 {
		evidence = p.Examples[0]
	}
	if evidence == "" {
		evidence = "(no example)"
	}
	switch kind {
	case KindSkill:
		return fmt.Sprintf("tool sequence repeated %d times, e.g. %s", p.Frequency, evidence)
	case KindSlashCommand:
		return fmt.Sprintf("prompt template used %d times, e.g. %s", p.Frequency, evidence)
	case KindAgent:
		return fmt.Sprintf("multi-step delegation pattern, e.g. %s", evidence)
	default:
		return fmt.Sprintf("consistent behavior across sessions, e.g. %s", evidence)
	}
}
