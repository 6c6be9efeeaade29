package compress

import (
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/habitd/internal/session"
)

// assistantNoteLen caps tool-free assistant text included in a digest.
const assistantNoteLen = 100

// Compressor turns sessions into digests under a per-session byte budget.
type Compressor struct {
	summarizer *Summarizer
	logger     *zap.Logger
}

// NewCompressor creates a compressor using the given summarizer. A nil
// summarizer gets the built-in rule set.
func NewCompressor(summarizer *Summarizer, logger *zap.Logger) *Compressor {
	if summarizer == nil {
		summarizer = NewSummarizer()
	}
	return &Compressor{summarizer: summarizer, logger: logger}
}

// Compress reduces one session to a digest whose serialized size stays
// within byteBudget. User text is never truncated; when the budget runs
// out, whole tail lines are dropped and Truncated is set — the earliest
// lines are kept because user intent stated early in a session anchors
// the tool activity that follows.
//
// Returns *session.MalformedSessionError for a session with no turns or
// a turn carrying neither text nor tool calls.
func (c *Compressor) Compress(sess *session.Session, byteBudget int) (*Digest, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}

	candidates := c.emitLines(sess)

	d := &Digest{
		SessionID: sess.ID,
		Project:   sess.Project,
		CreatedAt: sess.CreatedAt,
		Turns:     sess.UserTurns(),
	}

	// The header depends on the first user line, which is always the
	// first kept line, so it is stable while lines accumulate.
	for i, line := range candidates {
		d.Lines = append(d.Lines, line)
		if d.Size() > byteBudget {
			d.Lines = d.Lines[:len(d.Lines)-1]
			d.Truncated = true
			c.logger.Debug("digest truncated",
				zap.String("session_id", sess.ID),
				zap.Int("kept_lines", i),
				zap.Int("dropped_lines", len(candidates)-i),
				zap.Int("budget", byteBudget))
			break
		}
	}

	return d, nil
}

// emitLines renders each turn as its digest line, skipping turns that
// produce nothing (e.g. an assistant step whose text is empty).
func (c *Compressor) emitLines(sess *session.Session) []string {
	lines := make([]string, 0, len(sess.Turns))
	for _, turn := range sess.Turns {
		switch turn.Role {
		case session.RoleUser:
			if turn.Text != "" {
				lines = append(lines, "U: "+turn.Text)
			}
		case session.RoleAssistant:
			if len(turn.ToolCalls) > 0 {
				labels := make([]string, len(turn.ToolCalls))
				for i, call := range turn.ToolCalls {
					labels[i] = c.summarizer.Label(call)
				}
				lines = append(lines, "C: "+strings.Join(labels, " | "))
			} else if turn.Text != "" {
				lines = append(lines, "C: "+truncate(turn.Text, assistantNoteLen))
			}
		}
	}
	return lines
}
