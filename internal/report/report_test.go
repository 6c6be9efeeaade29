package report

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/habitd/internal/classify"
	"github.com/fyrsmithlabs/habitd/internal/mining"
	"github.com/fyrsmithlabs/habitd/internal/pipeline"
)

func sampleResult() *pipeline.Result {
	return &pipeline.Result{
		RunID: "run-1",
		Patterns: []mining.Pattern{
			{ID: "sequence-1", Family: mining.FamilySequence, Signature: "Read → Edit → Bash", Frequency: 5, Confidence: 0.5},
			{ID: "behavior-1", Family: mining.FamilyBehavior, Signature: "Prompt language: Korean", Frequency: 5, Confidence: 1.0},
		},
		Suggestions: []classify.Suggestion{
			{PatternID: "behavior-1", Kind: classify.KindClaudeMDRule, Name: "Output language: Korean",
				Priority: classify.PriorityP1, Rationale: "consistent behavior across sessions, e.g. Korean prompts in 5 of 5 sessions"},
			{PatternID: "sequence-1", Kind: classify.KindSkill, Name: "read-edit-bash",
				Priority: classify.PriorityP2, Rationale: "tool sequence repeated 5 times, e.g. [acme/api] Read → Edit → Bash"},
		},
	}
}

func TestMarkdown(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	out := Markdown(sampleResult(), now)

	assert.Contains(t, out, "# Habit Report (2026-08-29)")
	assert.Contains(t, out, "Run: run-1")
	assert.Contains(t, out, "## P1")
	assert.Contains(t, out, "## P2")
	assert.Contains(t, out, "**Output language: Korean** (CLAUDE.md rule)")
	assert.Contains(t, out, "**read-edit-bash** (Skill)")
	// Evidence stays verbatim in the report.
	assert.Contains(t, out, "[acme/api] Read → Edit → Bash")
	assert.NotContains(t, out, "## P3")
}

func TestMarkdown_EmptyRun(t *testing.T) {
	out := Markdown(&pipeline.Result{RunID: "run-2"}, time.Now())
	assert.Contains(t, out, "No recurring habits found")
}

func TestPatternsJSON(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	data, err := PatternsJSON(sampleResult().Patterns, now)
	require.NoError(t, err)

	var decoded struct {
		Count    int                         `json:"count"`
		Families map[string][]mining.Pattern `json:"families"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 2, decoded.Count)
	require.Len(t, decoded.Families["sequence"], 1)
	assert.Equal(t, "Read → Edit → Bash", decoded.Families["sequence"][0].Signature)
	assert.Empty(t, decoded.Families["template"])
}
