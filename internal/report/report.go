// Package report renders pipeline results for humans and for files.
package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fyrsmithlabs/habitd/internal/classify"
	"github.com/fyrsmithlabs/habitd/internal/mining"
	"github.com/fyrsmithlabs/habitd/internal/pipeline"
)

var kindTitles = map[classify.Kind]string{
	classify.KindSkill:        "Skill",
	classify.KindSlashCommand: "Slash command",
	classify.KindAgent:        "Agent",
	classify.KindClaudeMDRule: "CLAUDE.md rule",
}

// Markdown renders a suggestion report grouped by priority tier.
func Markdown(result *pipeline.Result, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Habit Report (%s)\n\n", now.Format("2006-01-02"))
	fmt.Fprintf(&b, "Run: %s\n", result.RunID)
	fmt.Fprintf(&b, "Sessions analyzed: %d\n", len(result.Digests))
	fmt.Fprintf(&b, "Patterns mined: %d\n", len(result.Patterns))
	if result.BudgetExceeded {
		b.WriteString("Note: collection budget reached, older sessions were excluded.\n")
	}
	if len(result.Malformed) > 0 {
		fmt.Fprintf(&b, "Skipped malformed sessions: %d\n", len(result.Malformed))
	}

	for _, priority := range []classify.Priority{classify.PriorityP1, classify.PriorityP2, classify.PriorityP3} {
		suggestions := result.ByPriority(priority)
		if len(suggestions) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n\n", priority)
		for _, s := range suggestions {
			fmt.Fprintf(&b, "- **%s** (%s): %s\n", s.Name, kindTitles[s.Kind], s.Rationale)
		}
	}

	if len(result.Suggestions) == 0 {
		b.WriteString("\nNo recurring habits found in this batch.\n")
	}
	return b.String()
}

// patternsFile is the JSON layout written for later inspection.
type patternsFile struct {
	ExtractedAt time.Time                         `json:"extracted_at"`
	Count       int                               `json:"count"`
	Families    map[mining.Family][]mining.Pattern `json:"families"`
}

// PatternsJSON serializes patterns grouped by family.
func PatternsJSON(patterns []mining.Pattern, now time.Time) ([]byte, error) {
	file := patternsFile{
		ExtractedAt: now,
		Count:       len(patterns),
		Families: map[mining.Family][]mining.Pattern{
			mining.FamilySequence: {},
			mining.FamilyTemplate: {},
			mining.FamilyBehavior: {},
		},
	}
	for _, p := range patterns {
		file.Families[p.Family] = append(file.Families[p.Family], p)
	}
	return json.MarshalIndent(file, "", "  ")
}
