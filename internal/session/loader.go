package session

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// LoadOptions configures session discovery.
type LoadOptions struct {
	// Root is the session storage root (default ~/.claude/projects layout:
	// one directory per project, one .jsonl transcript per session).
	Root string

	// MaxAge drops sessions older than now-MaxAge. Zero keeps everything.
	MaxAge time.Duration

	// ExcludePrefixes skips transcript files whose base name starts with
	// any of these (subagent transcripts use the "agent-" prefix).
	ExcludePrefixes []string
}

// LoadResult holds loaded sessions plus recoverable per-file errors.
type LoadResult struct {
	Sessions   []Session
	Errors     []ParseError
	ErrorCount int
}

// Loader discovers and parses all session transcripts under a root.
type Loader struct {
	parser *Parser
	logger *zap.Logger
}

// NewLoader creates a session loader.
func NewLoader(logger *zap.Logger) *Loader {
	return &Loader{parser: NewParser(), logger: logger}
}

// Load parses every transcript under opts.Root, newest first. Ties on the
// creation timestamp are broken by session ID so ordering is stable.
// Unreadable or partially corrupt files are reported, not fatal.
func (l *Loader) Load(opts LoadOptions) (*LoadResult, error) {
	pattern := filepath.Join(opts.Root, "*", "*.jsonl")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("globbing transcripts: %w", err)
	}

	var cutoff time.Time
	if opts.MaxAge > 0 {
		cutoff = time.Now().Add(-opts.MaxAge)
	}

	result := &LoadResult{}
	for _, file := range files {
		if excluded(filepath.Base(file), opts.ExcludePrefixes) {
			continue
		}

		pr, err := l.parser.ParseFile(file)
		if err != nil {
			result.ErrorCount++
			if len(result.Errors) < maxStoredErrors {
				result.Errors = append(result.Errors, ParseError{
					Error: fmt.Sprintf("file %s: %v", filepath.Base(file), err),
				})
			}
			continue
		}

		result.ErrorCount += pr.ErrorCount
		for _, e := range pr.Errors {
			if len(result.Errors) < maxStoredErrors {
				result.Errors = append(result.Errors, ParseError{
					Line:  e.Line,
					Error: fmt.Sprintf("file %s: %s", filepath.Base(file), e.Error),
				})
			}
		}

		if pr.Session == nil {
			continue
		}
		if !cutoff.IsZero() && !pr.Session.CreatedAt.IsZero() && pr.Session.CreatedAt.Before(cutoff) {
			continue
		}
		result.Sessions = append(result.Sessions, *pr.Session)
	}

	sort.Slice(result.Sessions, func(i, j int) bool {
		a, b := result.Sessions[i], result.Sessions[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	l.logger.Debug("loaded sessions",
		zap.String("root", opts.Root),
		zap.Int("files", len(files)),
		zap.Int("sessions", len(result.Sessions)),
		zap.Int("errors", result.ErrorCount))

	return result, nil
}

func excluded(base string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(base, p) {
			return true
		}
	}
	return false
}
