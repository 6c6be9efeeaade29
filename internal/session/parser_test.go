package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeTranscript(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseFile_UserAndAssistantTurns(t *testing.T) {
	dir := t.TempDir()
	path := writeTranscript(t, dir, "abc123.jsonl",
		`{"type":"user","sessionId":"abc123","timestamp":"2026-08-01T10:00:00Z","message":{"role":"user","content":"리팩토링해줘 이 파일"}}`,
		`{"type":"assistant","timestamp":"2026-08-01T10:00:05Z","message":{"role":"assistant","content":[{"type":"tool_use","id":"t1","name":"Read","input":{"file_path":"/home/u/Projects/app/src/main.py"}}]}}`,
		`{"type":"user","timestamp":"2026-08-01T10:00:06Z","message":{"role":"user","content":[{"type":"tool_result","tool_use_id":"t1","content":"file contents"}]}}`,
		`{"type":"assistant","timestamp":"2026-08-01T10:00:10Z","message":{"role":"assistant","content":[{"type":"text","text":"Done refactoring the module."}]}}`,
	)

	p := NewParser()
	pr, err := p.ParseFile(path)
	require.NoError(t, err)
	require.NotNil(t, pr.Session)

	sess := pr.Session
	assert.Equal(t, "abc123", sess.ID)
	assert.Equal(t, time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC), sess.CreatedAt)
	require.Len(t, sess.Turns, 3)

	assert.Equal(t, RoleUser, sess.Turns[0].Role)
	assert.Equal(t, "리팩토링해줘 이 파일", sess.Turns[0].Text)

	require.Len(t, sess.Turns[1].ToolCalls, 1)
	call := sess.Turns[1].ToolCalls[0]
	assert.Equal(t, "Read", call.Name)
	require.NotNil(t, call.Result)
	assert.True(t, call.Result.Success)

	assert.Equal(t, RoleAssistant, sess.Turns[2].Role)
	assert.Equal(t, "Done refactoring the module.", sess.Turns[2].Text)
}

func TestParseFile_ToolResultFailure(t *testing.T) {
	dir := t.TempDir()
	path := writeTranscript(t, dir, "s1.jsonl",
		`{"type":"assistant","message":{"role":"assistant","content":[{"type":"tool_use","id":"t1","name":"Bash","input":{"command":"pytest"}}]}}`,
		`{"type":"user","message":{"role":"user","content":[{"type":"tool_result","tool_use_id":"t1","is_error":true,"content":"2 tests failed"}]}}`,
	)

	pr, err := NewParser().ParseFile(path)
	require.NoError(t, err)
	require.NotNil(t, pr.Session)
	require.Len(t, pr.Session.Turns, 1)

	call := pr.Session.Turns[0].ToolCalls[0]
	require.NotNil(t, call.Result)
	assert.False(t, call.Result.Success)
	assert.Equal(t, "2 tests failed", call.Result.Summary)
}

func TestParseFile_SkipsSystemTagsAndShortMessages(t *testing.T) {
	dir := t.TempDir()
	path := writeTranscript(t, dir, "s2.jsonl",
		`{"type":"user","message":{"role":"user","content":"<system-reminder>injected</system-reminder>"}}`,
		`{"type":"user","message":{"role":"user","content":"ok"}}`,
		`{"type":"user","message":{"role":"user","content":"테스트 돌려봐 주세요"}}`,
	)

	pr, err := NewParser().ParseFile(path)
	require.NoError(t, err)
	require.NotNil(t, pr.Session)
	require.Len(t, pr.Session.Turns, 1)
	assert.Equal(t, "테스트 돌려봐 주세요", pr.Session.Turns[0].Text)
}

func TestParseFile_PartialResultsOnBadLines(t *testing.T) {
	dir := t.TempDir()
	path := writeTranscript(t, dir, "s3.jsonl",
		`{not json at all`,
		`{"type":"user","message":{"role":"user","content":"유효한 메시지입니다"}}`,
	)

	pr, err := NewParser().ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, pr.ErrorCount)
	require.NotNil(t, pr.Session)
	assert.Len(t, pr.Session.Turns, 1)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		session Session
		wantErr bool
	}{
		{
			name:    "no turns",
			session: Session{ID: "s1"},
			wantErr: true,
		},
		{
			name: "empty turn",
			session: Session{ID: "s2", Turns: []Turn{
				{Role: RoleAssistant},
			}},
			wantErr: true,
		},
		{
			name: "valid",
			session: Session{ID: "s3", Turns: []Turn{
				{Role: RoleUser, Text: "hello there"},
				{Role: RoleAssistant, ToolCalls: []ToolCall{{Name: "Read"}}},
			}},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.session.Validate()
			if tt.wantErr {
				var me *MalformedSessionError
				require.Error(t, err)
				require.True(t, errors.As(err, &me))
				assert.Equal(t, tt.session.ID, me.SessionID)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoader_NewestFirstWithTiebreak(t *testing.T) {
	root := t.TempDir()
	proj := filepath.Join(root, "-Users-alice-src-myproj")
	require.NoError(t, os.MkdirAll(proj, 0o755))

	writeTranscript(t, proj, "bbb.jsonl",
		`{"type":"user","sessionId":"bbb","timestamp":"2026-08-02T09:00:00Z","message":{"role":"user","content":"두 번째 세션입니다"}}`,
	)
	writeTranscript(t, proj, "aaa.jsonl",
		`{"type":"user","sessionId":"aaa","timestamp":"2026-08-02T09:00:00Z","message":{"role":"user","content":"첫 번째 세션입니다"}}`,
	)
	writeTranscript(t, proj, "old.jsonl",
		`{"type":"user","sessionId":"old","timestamp":"2026-08-01T09:00:00Z","message":{"role":"user","content":"오래된 세션입니다"}}`,
	)
	writeTranscript(t, proj, "agent-xyz.jsonl",
		`{"type":"user","sessionId":"agent-xyz","timestamp":"2026-08-03T09:00:00Z","message":{"role":"user","content":"subagent transcript"}}`,
	)

	loader := NewLoader(zap.NewNop())
	res, err := loader.Load(LoadOptions{Root: root, ExcludePrefixes: []string{"agent-"}})
	require.NoError(t, err)
	require.Len(t, res.Sessions, 3)

	assert.Equal(t, "aaa", res.Sessions[0].ID)
	assert.Equal(t, "bbb", res.Sessions[1].ID)
	assert.Equal(t, "old", res.Sessions[2].ID)
	assert.Equal(t, "src/myproj", res.Sessions[0].Project)
}
