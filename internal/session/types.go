// Package session defines the raw session model for Claude Code work
// sessions and a parser for the JSONL transcript files Claude Code writes
// under ~/.claude/projects. Sessions are read-only inputs to the analysis
// pipeline; nothing in this module mutates them after parsing.
package session

import (
	"fmt"
	"time"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ToolResult is the recorded outcome of a tool invocation.
type ToolResult struct {
	Success bool   `json:"success"`
	Summary string `json:"summary,omitempty"`
}

// ToolCall is a single tool invocation within an assistant step.
type ToolCall struct {
	// Name is the tool name as recorded in the transcript (e.g. "Read",
	// "Bash", or an MCP name like "mcp__supabase__execute_sql").
	Name string `json:"name"`

	// Input is the tool's input mapping. Values are arbitrary JSON.
	Input map[string]any `json:"input,omitempty"`

	// Result is the paired outcome, if one was recorded.
	Result *ToolResult `json:"result,omitempty"`
}

// Turn is one atomic unit of a session: a user message or an assistant
// step carrying optional text and zero or more tool calls.
type Turn struct {
	Role      Role       `json:"role"`
	Text      string     `json:"text,omitempty"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// Session is one continuous recorded interaction, ordered by conversation
// order. Timestamps are non-decreasing across a session.
type Session struct {
	ID        string    `json:"id"`
	Project   string    `json:"project"`
	CreatedAt time.Time `json:"created_at"`
	Turns     []Turn    `json:"turns"`
}

// MalformedSessionError marks a session the pipeline cannot compress:
// zero turns, or a turn with neither text nor tool calls. It is collected
// per session and never aborts a batch.
type MalformedSessionError struct {
	SessionID string
	Reason    string
}

func (e *MalformedSessionError) Error() string {
	return fmt.Sprintf("malformed session %s: %s", e.SessionID, e.Reason)
}

// Validate checks the session against the model invariants. It returns a
// *MalformedSessionError (never another error type) on violation.
func (s *Session) Validate() error {
	if len(s.Turns) == 0 {
		return &MalformedSessionError{SessionID: s.ID, Reason: "no turns"}
	}
	for i, t := range s.Turns {
		if t.Text == "" && len(t.ToolCalls) == 0 {
			return &MalformedSessionError{
				SessionID: s.ID,
				Reason:    fmt.Sprintf("turn %d has neither text nor tool calls", i),
			}
		}
	}
	return nil
}

// UserTurns counts the user messages in the session.
func (s *Session) UserTurns() int {
	n := 0
	for _, t := range s.Turns {
		if t.Role == RoleUser {
			n++
		}
	}
	return n
}

// ToolCallCount counts tool invocations across all assistant steps.
func (s *Session) ToolCallCount() int {
	n := 0
	for _, t := range s.Turns {
		n += len(t.ToolCalls)
	}
	return n
}
