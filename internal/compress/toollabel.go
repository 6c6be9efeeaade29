package compress

import (
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/habitd/internal/session"
)

// maxLabelLen bounds a single tool label.
const maxLabelLen = 60

// LabelFunc renders one tool call as a short label. Implementations must
// be pure and must not panic on missing or oddly-typed inputs.
type LabelFunc func(call session.ToolCall) string

// Summarizer maps tool calls to compact labels of the form
// "<ToolName>: <salient-param>". Unknown tools fall back to the bare
// tool name; a summarizer never fails.
type Summarizer struct {
	rules map[string]LabelFunc
}

// NewSummarizer creates a summarizer with the built-in rule set.
func NewSummarizer() *Summarizer {
	s := &Summarizer{rules: make(map[string]LabelFunc)}

	fileRule := func(param string) LabelFunc {
		return func(c session.ToolCall) string {
			return fmt.Sprintf("%s: %s", c.Name, shortenPath(stringInput(c, param), 3))
		}
	}
	s.rules["Read"] = fileRule("file_path")
	s.rules["Write"] = fileRule("file_path")
	s.rules["Edit"] = fileRule("file_path")
	s.rules["NotebookEdit"] = fileRule("notebook_path")

	s.rules["Bash"] = func(c session.ToolCall) string {
		label := "Bash: " + truncate(stringInput(c, "command"), 40)
		if c.Result != nil {
			if c.Result.Success {
				label += " → ✓"
			} else {
				label += " → ✗"
			}
		}
		return label
	}

	searchRule := func(c session.ToolCall) string {
		label := fmt.Sprintf("%s: %q", c.Name, stringInput(c, "pattern"))
		if path := stringInput(c, "path"); path != "" {
			label += " in " + shortenPath(path, 2)
		}
		return label
	}
	s.rules["Grep"] = searchRule
	s.rules["Glob"] = searchRule

	s.rules["Task"] = func(c session.ToolCall) string {
		agent := stringInput(c, "subagent_type")
		if agent == "" {
			agent = "Unknown"
		}
		return fmt.Sprintf("Task(%s): %s", agent, truncate(stringInput(c, "prompt"), 30))
	}

	s.rules["TodoWrite"] = func(c session.ToolCall) string {
		todos, _ := c.Input["todos"].([]any)
		verb := "updated"
		if allPending(todos) {
			verb = "added"
		}
		return fmt.Sprintf("Todo: %d item(s) %s", len(todos), verb)
	}

	s.rules["WebFetch"] = func(c session.ToolCall) string {
		return "WebFetch: " + truncate(stringInput(c, "url"), 40)
	}
	s.rules["WebSearch"] = func(c session.ToolCall) string {
		return fmt.Sprintf("WebSearch: %q", truncate(stringInput(c, "query"), 30))
	}
	s.rules["Skill"] = func(c session.ToolCall) string {
		return "Skill: " + stringInput(c, "skill")
	}

	return s
}

// Register adds or replaces the rule for a tool name.
func (s *Summarizer) Register(name string, fn LabelFunc) {
	s.rules[name] = fn
}

// Label renders one tool call. It never fails: a panicking rule or an
// unknown tool degrades to the bare tool name.
func (s *Summarizer) Label(call session.ToolCall) (label string) {
	defer func() {
		if recover() != nil {
			label = call.Name
		}
	}()

	if fn, ok := s.rules[call.Name]; ok {
		return clampLabel(fn(call))
	}

	// MCP tools: mcp__supabase__execute_sql → Supabase.execute_sql
	if strings.HasPrefix(call.Name, "mcp__") {
		parts := strings.Split(call.Name, "__")
		if len(parts) >= 3 {
			return clampLabel(capitalize(parts[1]) + "." + parts[2])
		}
		return clampLabel(strings.TrimPrefix(call.Name, "mcp__"))
	}

	return clampLabel(call.Name)
}

// stringInput reads a string parameter from a tool call's input mapping,
// tolerating a missing key or a non-string value.
func stringInput(c session.ToolCall, key string) string {
	if c.Input == nil {
		return ""
	}
	v, ok := c.Input[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return fmt.Sprintf("%v", v)
	}
	return s
}

func allPending(todos []any) bool {
	if len(todos) == 0 {
		return false
	}
	for _, item := range todos {
		m, ok := item.(map[string]any)
		if !ok {
			return false
		}
		if status, _ := m["status"].(string); status != "pending" {
			return false
		}
	}
	return true
}

// shortenPath relativizes a path to the nearest recognized project root.
// A "Projects" segment marks the root; without one the last maxDepth
// segments are kept.
func shortenPath(path string, maxDepth int) string {
	if path == "" {
		return ""
	}
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if p == "Projects" && i+1 < len(parts) {
			return strings.Join(parts[i+1:], "/")
		}
	}
	// Drop empty leading segment from absolute paths before depth-trimming.
	if len(parts) > 0 && parts[0] == "" {
		parts = parts[1:]
	}
	if len(parts) > maxDepth {
		parts = parts[len(parts)-maxDepth:]
	}
	return strings.Join(parts, "/")
}

// truncate collapses newlines and caps the text at max runes.
func truncate(text string, max int) string {
	text = strings.ReplaceAll(strings.TrimSpace(text), "\n", " ")
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func clampLabel(label string) string {
	runes := []rune(label)
	if len(runes) <= maxLabelLen {
		return label
	}
	return string(runes[:maxLabelLen])
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
