package classify

// Kind is the actionable category a pattern classifies into.
type Kind string

const (
	KindSkill        Kind = "skill"
	KindSlashCommand Kind = "slash_command"
	KindAgent        Kind = "agent"
	KindClaudeMDRule Kind = "claude_md_rule"
)

// Priority orders suggestions by how actionable they are.
type Priority string

const (
	PriorityP1 Priority = "P1"
	PriorityP2 Priority = "P2"
	PriorityP3 Priority = "P3"
)

// Suggestion is the classified form of one pattern. PatternID is a
// back-reference; the suggestion does not own the pattern.
type Suggestion struct {
	PatternID string   `json:"pattern_id"`
	Kind      Kind     `json:"kind"`
	Name      string   `json:"name"`
	Priority  Priority `json:"priority"`
	// Rationale embeds at least one literal example from the source
	// pattern, so every suggestion traces to concrete evidence.
	Rationale string `json:"rationale"`
}
