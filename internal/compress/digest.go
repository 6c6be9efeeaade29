package compress

import (
	"strconv"
	"strings"
	"time"
)

// Digest is the compressed form of one session. Lines alternate between
// "U: <verbatim user text>" and "C: <pipe-joined tool labels or note>".
type Digest struct {
	SessionID string    `json:"session_id"`
	Project   string    `json:"project"`
	CreatedAt time.Time `json:"created_at,omitempty"`

	// Turns is the user-message count of the source session.
	Turns int `json:"turns"`

	Lines []string `json:"lines"`

	// Truncated is set when the byte budget forced dropping tail lines.
	// It is informational, not an error.
	Truncated bool `json:"truncated,omitempty"`
}

// Title is the first user line, shortened, used as the digest heading.
func (d *Digest) Title() string {
	for _, line := range d.Lines {
		if strings.HasPrefix(line, "U: ") {
			return truncate(strings.TrimPrefix(line, "U: "), 50)
		}
	}
	return "Session"
}

// Serialize renders the digest in its on-wire textual form:
//
//	# Session: <title> (<date>)
//	Project: <project>
//	Turns: <n>
//
//	---
//	U: ...
//	C: ...
//	---
func (d *Digest) Serialize() string {
	var b strings.Builder
	b.WriteString(d.header())
	for _, line := range d.Lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString("---\n")
	return b.String()
}

// Size is the serialized byte length.
func (d *Digest) Size() int {
	return len(d.Serialize())
}

func (d *Digest) header() string {
	date := "Unknown"
	if !d.CreatedAt.IsZero() {
		date = d.CreatedAt.Format("2006-01-02")
	}
	var b strings.Builder
	b.WriteString("# Session: ")
	b.WriteString(d.Title())
	b.WriteString(" (")
	b.WriteString(date)
	b.WriteString(")\n")
	b.WriteString("Project: ")
	b.WriteString(d.Project)
	b.WriteByte('\n')
	b.WriteString("Turns: ")
	b.WriteString(strconv.Itoa(d.Turns))
	b.WriteString("\n\n---\n")
	return b.String()
}

// UserLines returns the verbatim user texts in emission order.
func (d *Digest) UserLines() []string {
	var out []string
	for _, line := range d.Lines {
		if strings.HasPrefix(line, "U: ") {
			out = append(out, strings.TrimPrefix(line, "U: "))
		}
	}
	return out
}

// ToolNames parses the tool names out of one "C:" line, in order.
// Free-text assistant notes yield nothing.
func ToolNames(line string) []string {
	content := strings.TrimPrefix(line, "C: ")
	if content == line {
		return nil
	}
	var names []string
	for _, part := range strings.Split(content, " | ") {
		part = strings.TrimSpace(part)
		switch {
		case part == "":
		case strings.HasPrefix(part, "Task("):
			names = append(names, "Task")
		case strings.HasPrefix(part, "Todo:"):
			names = append(names, "TodoWrite")
		case strings.Contains(part, ": "):
			names = append(names, part[:strings.Index(part, ": ")])
		case !strings.ContainsAny(part, " "):
			// Bare label from an unknown or MCP tool.
			names = append(names, part)
		}
	}
	return names
}
