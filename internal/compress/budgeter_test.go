package compress

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/habitd/internal/session"
)

func sessionAt(id string, created time.Time) session.Session {
	return session.Session{
		ID:        id,
		Project:   "t",
		CreatedAt: created,
		Turns: []session.Turn{
			{Role: session.RoleUser, Text: fmt.Sprintf("작업해줘 session %s", id)},
			{Role: session.RoleAssistant, ToolCalls: []session.ToolCall{
				{Name: "Read", Input: map[string]any{"file_path": "a.go"}},
			}},
		},
	}
}

func newBudgeter() *Budgeter {
	return NewBudgeter(NewCompressor(nil, zap.NewNop()), zap.NewNop())
}

func TestSelect_MostRecentFirst(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	sessions := []session.Session{
		sessionAt("old", base),
		sessionAt("newest", base.Add(48*time.Hour)),
		sessionAt("middle", base.Add(24*time.Hour)),
	}

	sel := newBudgeter().Select(sessions, 4096, 1<<20)
	require.Len(t, sel.Digests, 3)
	assert.Equal(t, "newest", sel.Digests[0].SessionID)
	assert.Equal(t, "middle", sel.Digests[1].SessionID)
	assert.Equal(t, "old", sel.Digests[2].SessionID)
	assert.False(t, sel.BudgetExceeded)
}

func TestSelect_NeverSkipsNewerForOlder(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	var sessions []session.Session
	for i := 0; i < 6; i++ {
		sessions = append(sessions, sessionAt(fmt.Sprintf("s%d", i), base.Add(time.Duration(i)*time.Hour)))
	}

	one := newBudgeter().Select([]session.Session{sessions[5]}, 4096, 1<<20)
	require.Len(t, one.Digests, 1)
	sizeOfOne := one.Digests[0].Size()

	// Room for roughly three digests.
	sel := newBudgeter().Select(sessions, 4096, sizeOfOne*3+sizeOfOne/2)
	require.NotEmpty(t, sel.Digests)
	assert.True(t, sel.BudgetExceeded)

	// The selection is a prefix of the newest-first ordering.
	for i, d := range sel.Digests {
		assert.Equal(t, fmt.Sprintf("s%d", 5-i), d.SessionID)
	}
}

func TestSelect_TimestampTieBrokenByID(t *testing.T) {
	ts := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	sessions := []session.Session{
		sessionAt("bbb", ts),
		sessionAt("aaa", ts),
	}

	sel := newBudgeter().Select(sessions, 4096, 1<<20)
	require.Len(t, sel.Digests, 2)
	assert.Equal(t, "aaa", sel.Digests[0].SessionID)
	assert.Equal(t, "bbb", sel.Digests[1].SessionID)
}

func TestSelect_ZeroBudgetIsNotAnError(t *testing.T) {
	sessions := []session.Session{
		sessionAt("s1", time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)),
	}

	sel := newBudgeter().Select(sessions, 4096, 0)
	assert.Empty(t, sel.Digests)
	assert.Empty(t, sel.Malformed)
}

func TestSelect_EmptyInput(t *testing.T) {
	sel := newBudgeter().Select(nil, 4096, 1<<20)
	assert.Empty(t, sel.Digests)
	assert.False(t, sel.BudgetExceeded)
}

func TestSelect_MalformedSessionDoesNotAbortBatch(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	sessions := []session.Session{
		sessionAt("good-new", base.Add(2*time.Hour)),
		{ID: "broken", CreatedAt: base.Add(time.Hour)}, // no turns
		sessionAt("good-old", base),
	}

	sel := newBudgeter().Select(sessions, 4096, 1<<20)
	require.Len(t, sel.Digests, 2)
	assert.Equal(t, "good-new", sel.Digests[0].SessionID)
	assert.Equal(t, "good-old", sel.Digests[1].SessionID)
	require.Len(t, sel.Malformed, 1)
	assert.Equal(t, "broken", sel.Malformed[0].SessionID)
}

func TestSelect_DoesNotMutateInput(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	sessions := []session.Session{
		sessionAt("z-old", base),
		sessionAt("a-new", base.Add(time.Hour)),
	}

	newBudgeter().Select(sessions, 4096, 1<<20)
	assert.Equal(t, "z-old", sessions[0].ID)
	assert.Equal(t, "a-new", sessions[1].ID)
}
