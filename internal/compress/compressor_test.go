package compress

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/habitd/internal/session"
)

func refactorSession() *session.Session {
	return &session.Session{
		ID:        "sess-1",
		Project:   "app",
		CreatedAt: time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC),
		Turns: []session.Turn{
			{Role: session.RoleUser, Text: "리팩토링해줘"},
			{Role: session.RoleAssistant, ToolCalls: []session.ToolCall{
				{Name: "Read", Input: map[string]any{"file_path": "src/main.py"}},
			}},
			{Role: session.RoleAssistant, ToolCalls: []session.ToolCall{
				{Name: "Edit", Input: map[string]any{"file_path": "src/main.py"}},
			}},
			{Role: session.RoleUser, Text: "테스트"},
			{Role: session.RoleAssistant, ToolCalls: []session.ToolCall{
				{
					Name:   "Bash",
					Input:  map[string]any{"command": "pytest"},
					Result: &session.ToolResult{Success: true},
				},
			}},
		},
	}
}

func TestCompress_RefactorScenario(t *testing.T) {
	c := NewCompressor(nil, zap.NewNop())

	d, err := c.Compress(refactorSession(), 1024)
	require.NoError(t, err)

	assert.False(t, d.Truncated)
	assert.Equal(t, 2, d.Turns)
	require.Equal(t, []string{
		"U: 리팩토링해줘",
		"C: Read: src/main.py",
		"C: Edit: src/main.py",
		"U: 테스트",
		"C: Bash: pytest → ✓",
	}, d.Lines)
	assert.Equal(t, "C: Bash: pytest → ✓", d.Lines[len(d.Lines)-1])
	assert.LessOrEqual(t, d.Size(), 1024)
}

func TestCompress_Idempotent(t *testing.T) {
	c := NewCompressor(nil, zap.NewNop())
	sess := refactorSession()

	d1, err := c.Compress(sess, 1024)
	require.NoError(t, err)
	d2, err := c.Compress(sess, 1024)
	require.NoError(t, err)

	assert.Equal(t, d1.Serialize(), d2.Serialize())
}

func TestCompress_BudgetMonotonicity(t *testing.T) {
	c := NewCompressor(nil, zap.NewNop())
	sess := refactorSession()

	full, err := c.Compress(sess, 1<<20)
	require.NoError(t, err)

	prev := 0
	prevLines := []string{}
	for _, budget := range []int{120, 150, 200, 300, 1024} {
		d, err := c.Compress(sess, budget)
		require.NoError(t, err)

		assert.LessOrEqual(t, d.Size(), budget, "budget %d", budget)
		assert.GreaterOrEqual(t, d.Size(), prev, "budget %d", budget)

		// A smaller budget's lines are a prefix of a bigger budget's.
		require.LessOrEqual(t, len(prevLines), len(d.Lines))
		assert.Equal(t, prevLines, d.Lines[:len(prevLines)])

		prev = d.Size()
		prevLines = d.Lines
	}
	assert.Equal(t, full.Lines[:len(prevLines)], prevLines)
}

func TestCompress_TruncationDropsTail(t *testing.T) {
	c := NewCompressor(nil, zap.NewNop())
	sess := refactorSession()

	full, err := c.Compress(sess, 1<<20)
	require.NoError(t, err)

	// A budget big enough for the header plus the first two lines only.
	budget := full.Size() - len("U: 테스트\n") - len("C: Bash: pytest → ✓\n") - len("C: Edit: src/main.py\n")
	d, err := c.Compress(sess, budget)
	require.NoError(t, err)

	assert.True(t, d.Truncated)
	require.NotEmpty(t, d.Lines)
	assert.Equal(t, "U: 리팩토링해줘", d.Lines[0])
	// User text is never truncated; only whole lines are dropped.
	for _, line := range d.Lines {
		assert.Contains(t, full.Lines, line)
	}
}

func TestCompress_MalformedSession(t *testing.T) {
	c := NewCompressor(nil, zap.NewNop())

	_, err := c.Compress(&session.Session{ID: "empty"}, 1024)
	var me *session.MalformedSessionError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, "empty", me.SessionID)
}

func TestCompress_AssistantNoteWithoutTools(t *testing.T) {
	c := NewCompressor(nil, zap.NewNop())
	long := ""
	for i := 0; i < 30; i++ {
		long += "all work and no play "
	}
	sess := &session.Session{
		ID: "notes",
		Turns: []session.Turn{
			{Role: session.RoleUser, Text: "설명해줘 자세히"},
			{Role: session.RoleAssistant, Text: long},
		},
	}

	d, err := c.Compress(sess, 4096)
	require.NoError(t, err)
	require.Len(t, d.Lines, 2)
	assert.LessOrEqual(t, len([]rune(d.Lines[1])), len("C: ")+100)
}

func TestDigest_SerializeHeader(t *testing.T) {
	d := &Digest{
		SessionID: "s",
		Project:   "app/web",
		CreatedAt: time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
		Turns:     2,
		Lines:     []string{"U: 배포해줘", "C: Bash: make deploy → ✓"},
	}
	out := d.Serialize()
	assert.Contains(t, out, "# Session: 배포해줘 (2026-08-20)\n")
	assert.Contains(t, out, "Project: app/web\n")
	assert.Contains(t, out, "Turns: 2\n")
	assert.Contains(t, out, "\n---\nU: 배포해줘\nC: Bash: make deploy → ✓\n---\n")
}
