package session

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// minUserTextLen filters out user messages too short to carry intent
// (bare "ok", tool-result acknowledgements, etc.).
const minUserTextLen = 5

// systemTagRe matches paired tag blocks (<system-reminder>...</system-reminder>
// and similar) that Claude Code injects into user messages.
var systemTagRe = regexp.MustCompile(`(?s)<[^>]+>.*?</[^>]+>`)

// jsonlRecord is the raw shape of one Claude Code transcript line.
type jsonlRecord struct {
	UUID      string          `json:"uuid"`
	Type      string          `json:"type"`
	Message   json.RawMessage `json:"message,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
	SessionID string          `json:"sessionId,omitempty"`
}

// recordMessage is the nested message payload.
type recordMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

// contentBlock is one element of a structured content array.
type contentBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	Name      string          `json:"name,omitempty"`
	ID        string          `json:"id,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   json.RawMessage `json:"content,omitempty"`
	IsError   bool            `json:"is_error,omitempty"`
}

// ParseError records a recoverable problem at a specific transcript line.
type ParseError struct {
	Line  int
	Error string
}

// ParseResult holds a parsed session alongside any line-level errors.
type ParseResult struct {
	Session    *Session
	Errors     []ParseError
	ErrorCount int
}

// maxStoredErrors bounds the error list so a corrupt file cannot bloat it.
const maxStoredErrors = 10

// Parser reads Claude Code JSONL transcript files into Sessions.
type Parser struct{}

// NewParser creates a transcript parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseFile reads one JSONL transcript and returns the session it holds.
// Returns partial results on per-line errors rather than failing the file.
// Returns a nil Session if the file holds no usable turns.
func (p *Parser) ParseFile(path string) (*ParseResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening transcript: %w", err)
	}
	defer f.Close()

	result := &ParseResult{}
	sess := &Session{
		ID:      strings.TrimSuffix(filepath.Base(path), ".jsonl"),
		Project: projectLabel(filepath.Base(filepath.Dir(path))),
	}

	// Tool calls awaiting a paired tool_result, keyed by tool_use ID.
	pending := make(map[string]*ToolCall)

	scanner := bufio.NewScanner(f)
	const maxScanTokenSize = 10 * 1024 * 1024
	scanner.Buffer(make([]byte, maxScanTokenSize), maxScanTokenSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		var rec jsonlRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			result.ErrorCount++
			if len(result.Errors) < maxStoredErrors {
				result.Errors = append(result.Errors, ParseError{
					Line:  lineNum,
					Error: fmt.Sprintf("JSON parse error: %v", err),
				})
			}
			continue
		}

		if rec.Type != "user" && rec.Type != "assistant" {
			continue
		}

		if rec.SessionID != "" {
			sess.ID = rec.SessionID
		}
		if sess.CreatedAt.IsZero() && rec.Timestamp != "" {
			if ts, err := time.Parse(time.RFC3339, rec.Timestamp); err == nil {
				sess.CreatedAt = ts
			}
		}

		turn, err := p.parseRecord(rec, pending)
		if err != nil {
			result.ErrorCount++
			if len(result.Errors) < maxStoredErrors {
				result.Errors = append(result.Errors, ParseError{
					Line:  lineNum,
					Error: fmt.Sprintf("record parse error: %v", err),
				})
			}
			continue
		}
		if turn != nil {
			sess.Turns = append(sess.Turns, *turn)
			// Re-key pending on the stored copies so later tool_result
			// blocks mutate the turn we kept, not the scratch value.
			stored := &sess.Turns[len(sess.Turns)-1]
			for i := range stored.ToolCalls {
				if id := toolUseID(rec, i); id != "" {
					pending[id] = &stored.ToolCalls[i]
				}
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning transcript: %w", err)
	}

	if len(sess.Turns) > 0 {
		result.Session = sess
	}
	return result, nil
}

// parseRecord converts one transcript record into a Turn. Records that
// carry only tool results (user-typed carriers for tool_result blocks)
// yield a nil Turn after attaching outcomes to pending calls.
func (p *Parser) parseRecord(rec jsonlRecord, pending map[string]*ToolCall) (*Turn, error) {
	var msg recordMessage
	if err := json.Unmarshal(rec.Message, &msg); err != nil {
		// User messages may be a bare string.
		if rec.Type == "user" {
			var text string
			if err2 := json.Unmarshal(rec.Message, &text); err2 == nil {
				return userTurn(text), nil
			}
		}
		return nil, fmt.Errorf("decoding message: %w", err)
	}

	// Content can be a plain string or a block array.
	var text string
	if err := json.Unmarshal(msg.Content, &text); err == nil {
		if rec.Type == "user" {
			return userTurn(text), nil
		}
		if strings.TrimSpace(text) == "" {
			return nil, nil
		}
		return &Turn{Role: RoleAssistant, Text: strings.TrimSpace(text)}, nil
	}

	var blocks []contentBlock
	if err := json.Unmarshal(msg.Content, &blocks); err != nil {
		return nil, fmt.Errorf("decoding content blocks: %w", err)
	}

	var textParts []string
	var calls []ToolCall
	for _, b := range blocks {
		switch b.Type {
		case "text":
			if strings.TrimSpace(b.Text) != "" {
				textParts = append(textParts, strings.TrimSpace(b.Text))
			}
		case "tool_use":
			call := ToolCall{Name: b.Name}
			var input map[string]any
			if err := json.Unmarshal(b.Input, &input); err == nil {
				call.Input = input
			}
			calls = append(calls, call)
		case "tool_result":
			if tc, ok := pending[b.ToolUseID]; ok {
				tc.Result = &ToolResult{
					Success: !b.IsError,
					Summary: resultSummary(b.Content),
				}
				delete(pending, b.ToolUseID)
			}
		}
	}

	joined := strings.Join(textParts, "\n")
	if rec.Type == "user" {
		if len(calls) > 0 {
			// Unusual shape, but keep the calls rather than dropping them.
			return &Turn{Role: RoleUser, Text: cleanUserText(joined), ToolCalls: calls}, nil
		}
		return userTurn(joined), nil
	}

	if joined == "" && len(calls) == 0 {
		return nil, nil
	}
	return &Turn{Role: RoleAssistant, Text: joined, ToolCalls: calls}, nil
}

// toolUseID re-reads the i-th tool_use block ID from the raw record.
func toolUseID(rec jsonlRecord, i int) string {
	var msg recordMessage
	if err := json.Unmarshal(rec.Message, &msg); err != nil {
		return ""
	}
	var blocks []contentBlock
	if err := json.Unmarshal(msg.Content, &blocks); err != nil {
		return ""
	}
	n := 0
	for _, b := range blocks {
		if b.Type == "tool_use" {
			if n == i {
				return b.ID
			}
			n++
		}
	}
	return ""
}

// userTurn builds a user Turn from raw text, or nil if nothing survives
// tag stripping and the minimum-length filter.
func userTurn(text string) *Turn {
	text = cleanUserText(text)
	if len([]rune(text)) < minUserTextLen {
		return nil
	}
	return &Turn{Role: RoleUser, Text: text}
}

// cleanUserText strips injected tag blocks and surrounding whitespace.
func cleanUserText(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "<") {
		text = strings.TrimSpace(systemTagRe.ReplaceAllString(text, ""))
	}
	return text
}

// resultSummary extracts a short description from a tool_result content
// payload, which may be a string or a block array.
func resultSummary(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return firstLine(s)
	}
	var blocks []contentBlock
	if err := json.Unmarshal(raw, &blocks); err == nil {
		for _, b := range blocks {
			if b.Type == "text" && b.Text != "" {
				return firstLine(b.Text)
			}
		}
	}
	return ""
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	const max = 120
	if len(s) > max {
		s = s[:max]
	}
	return s
}

// projectLabel turns a Claude Code project directory name (a mangled
// absolute path like "-Users-alice-src-myproj") into a short label.
// The last two path segments are kept; anything shorter passes through.
func projectLabel(dir string) string {
	dir = strings.TrimPrefix(dir, "-")
	parts := strings.Split(dir, "-")
	if len(parts) > 2 {
		parts = parts[len(parts)-2:]
	}
	return strings.Join(parts, "/")
}
