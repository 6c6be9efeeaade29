package mining

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/fyrsmithlabs/habitd/internal/compress"
)

var hangulRe = regexp.MustCompile(`[가-힣]`)

// negativeForms flag prompts where the user pushes back on the previous
// response. Korean forms first, then English.
var negativeForms = []struct {
	re       *regexp.Regexp
	label    string
	severity string
}{
	{regexp.MustCompile(`다시\s*(해|작성|만들)`), "retry request", "high"},
	{regexp.MustCompile(`틀렸`), "wrong output", "high"},
	{regexp.MustCompile(`전부\s*(다\s*)?(틀|잘못)`), "all wrong", "critical"},
	{regexp.MustCompile(`왜\s*이렇게`), "frustration", "medium"},
	{regexp.MustCompile(`아니\s*(야|거든|잖아|지|요)`), "correction", "medium"},
	{regexp.MustCompile(`그거\s*말고`), "not that", "medium"},
	{regexp.MustCompile(`필요\s*없`), "unnecessary", "low"},
	{regexp.MustCompile(`이미\s*말했`), "already said", "medium"},
	{regexp.MustCompile(`(?i)wrong|incorrect`), "wrong output", "high"},
	{regexp.MustCompile(`(?i)try again|redo`), "retry request", "high"},
	{regexp.MustCompile(`(?i)not what i (asked|wanted|meant)`), "misunderstanding", "high"},
	{regexp.MustCompile(`(?i)no,?\s*(that's|it's) not`), "correction", "medium"},
}

// mineBehaviors computes batch-level aggregates and emits one pattern
// per aggregate that holds across enough of the sessions. Confidence is
// the observed consistency fraction.
func (m *Miner) mineBehaviors(digests []compress.Digest) []Pattern {
	if len(digests) == 0 {
		return nil
	}

	var patterns []Pattern
	patterns = append(patterns, m.minePromptLanguage(digests)...)
	patterns = append(patterns, m.mineToolCallVolume(digests)...)
	patterns = append(patterns, m.mineSessionLength(digests)...)
	patterns = append(patterns, m.mineToolPreferences(digests)...)
	patterns = append(patterns, m.mineNegativeReactions(digests)...)
	sortPatterns(patterns)
	return patterns
}

// minePromptLanguage classifies each session by the dominant script of
// its user lines and emits a pattern when one script dominates the
// batch.
func (m *Miner) minePromptLanguage(digests []compress.Digest) []Pattern {
	var korean, english int
	for _, d := range digests {
		var hangul, total int
		for _, msg := range d.UserLines() {
			total++
			if hangulRe.MatchString(msg) {
				hangul++
			}
		}
		if total == 0 {
			continue
		}
		if hangul*2 >= total {
			korean++
		} else {
			english++
		}
	}

	total := korean + english
	if total == 0 {
		return nil
	}

	emit := func(language string, count int) Pattern {
		frac := float64(count) / float64(total)
		sig := "Prompt language: " + language
		example := fmt.Sprintf("%s prompts in %d of %d sessions", language, count, total)
		return newPattern(FamilyBehavior, sig, count, []string{example}, frac)
	}

	var patterns []Pattern
	if frac := float64(korean) / float64(total); frac >= m.cfg.ConsistencyThreshold {
		patterns = append(patterns, emit("Korean", korean))
	}
	if frac := float64(english) / float64(total); frac >= m.cfg.ConsistencyThreshold {
		patterns = append(patterns, emit("English", english))
	}
	return patterns
}

func digestToolCount(d compress.Digest) int {
	var n int
	for _, line := range d.Lines {
		if strings.HasPrefix(line, "U: ") {
			continue
		}
		n += len(compress.ToolNames(line))
	}
	return n
}

// mineToolCallVolume emits the batch median tool-call count when most
// sessions sit within a 2x band around it.
func (m *Miner) mineToolCallVolume(digests []compress.Digest) []Pattern {
	counts := make([]int, 0, len(digests))
	for _, d := range digests {
		counts = append(counts, digestToolCount(d))
	}
	sort.Ints(counts)
	median := counts[len(counts)/2]
	if median == 0 {
		return nil
	}

	var within int
	for _, c := range counts {
		if c*2 >= median && c <= median*2 {
			within++
		}
	}
	frac := float64(within) / float64(len(counts))
	if frac < m.cfg.ConsistencyThreshold {
		return nil
	}

	sig := fmt.Sprintf("Median %d tool calls per session", median)
	example := fmt.Sprintf("%d of %d sessions within 2x of the median", within, len(counts))
	return []Pattern{newPattern(FamilyBehavior, sig, within, []string{example}, frac)}
}

// mineSessionLength emits a short- or long-session pattern when the
// batch leans consistently one way.
func (m *Miner) mineSessionLength(digests []compress.Digest) []Pattern {
	var short, long int
	for _, d := range digests {
		switch {
		case d.Turns >= m.cfg.LongSessionTurns:
			long++
		case d.Turns > 0 && d.Turns <= m.cfg.ShortSessionTurns:
			short++
		}
	}

	total := len(digests)
	var patterns []Pattern
	if frac := float64(short) / float64(total); frac >= m.cfg.ConsistencyThreshold {
		sig := fmt.Sprintf("Short sessions (%d turns or fewer)", m.cfg.ShortSessionTurns)
		example := fmt.Sprintf("%d of %d sessions at or under %d turns", short, total, m.cfg.ShortSessionTurns)
		patterns = append(patterns, newPattern(FamilyBehavior, sig, short, []string{example}, frac))
	}
	if frac := float64(long) / float64(total); frac >= m.cfg.ConsistencyThreshold {
		sig := fmt.Sprintf("Long sessions (%d+ turns)", m.cfg.LongSessionTurns)
		example := fmt.Sprintf("%d of %d sessions at %d turns or more", long, total, m.cfg.LongSessionTurns)
		patterns = append(patterns, newPattern(FamilyBehavior, sig, long, []string{example}, frac))
	}
	return patterns
}

// mineToolPreferences emits the heaviest-used tools, capped at three,
// when a tool carries at least 10% of all calls and appears in enough
// sessions.
func (m *Miner) mineToolPreferences(digests []compress.Digest) []Pattern {
	counts := make(map[string]int)
	presence := make(map[string]int)
	var total int
	for _, d := range digests {
		seen := make(map[string]bool)
		for _, line := range d.Lines {
			if strings.HasPrefix(line, "U: ") {
				continue
			}
			for _, tool := range compress.ToolNames(line) {
				counts[tool]++
				total++
				if !seen[tool] {
					seen[tool] = true
					presence[tool]++
				}
			}
		}
	}
	if total == 0 {
		return nil
	}

	tools := make([]string, 0, len(counts))
	for tool := range counts {
		tools = append(tools, tool)
	}
	sort.Slice(tools, func(i, j int) bool {
		if counts[tools[i]] != counts[tools[j]] {
			return counts[tools[i]] > counts[tools[j]]
		}
		return tools[i] < tools[j]
	})

	var patterns []Pattern
	for _, tool := range tools {
		if len(patterns) == 3 {
			break
		}
		share := float64(counts[tool]) / float64(total)
		if share < 0.1 {
			break
		}
		frac := float64(presence[tool]) / float64(len(digests))
		if frac < m.cfg.ConsistencyThreshold {
			continue
		}
		sig := fmt.Sprintf("Frequent %s tool use", tool)
		example := fmt.Sprintf("%s used %d times, %.0f%% of all tool calls", tool, counts[tool], share*100)
		patterns = append(patterns, newPattern(FamilyBehavior, sig, counts[tool], []string{example}, frac))
	}
	return patterns
}

// mineNegativeReactions scans user lines for pushback phrasing. These
// are emitted on raw frequency rather than batch consistency, since a
// handful of corrections is already worth a rule.
func (m *Miner) mineNegativeReactions(digests []compress.Digest) []Pattern {
	type reactionStats struct {
		freq     int
		sessions int
		examples []string
	}
	stats := make(map[string]*reactionStats)

	for _, d := range digests {
		seen := make(map[string]bool)
		for _, msg := range d.UserLines() {
			for _, form := range negativeForms {
				if !form.re.MatchString(msg) {
					continue
				}
				st := stats[form.label]
				if st == nil {
					st = &reactionStats{}
					stats[form.label] = st
				}
				st.freq++
				if !seen[form.label] {
					seen[form.label] = true
					st.sessions++
				}
				if len(st.examples) < maxExamples {
					st.examples = append(st.examples, clip(msg, 50))
				}
			}
		}
	}

	var patterns []Pattern
	for label, st := range stats {
		if st.freq < m.cfg.MinFrequency {
			continue
		}
		frac := float64(st.sessions) / float64(len(digests))
		sig := "Negative reaction: " + label
		patterns = append(patterns, newPattern(FamilyBehavior, sig, st.freq, st.examples, frac))
	}
	return patterns
}
