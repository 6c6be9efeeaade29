package scrub

import (
	"fmt"
	"strings"

	"github.com/zricethezav/gitleaks/v8/detect"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/habitd/internal/compress"
)

// Config controls scrubbing behavior.
type Config struct {
	// Enabled turns scrubbing off entirely when false.
	Enabled bool
}

// DefaultConfig enables scrubbing.
func DefaultConfig() Config {
	return Config{Enabled: true}
}

// Scrubber redacts secrets in digest lines.
type Scrubber struct {
	cfg      Config
	detector *detect.Detector
	logger   *zap.Logger
}

// NewScrubber builds a scrubber on the default gitleaks ruleset.
func NewScrubber(cfg Config, logger *zap.Logger) (*Scrubber, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	detector, err := detect.NewDetectorDefaultConfig()
	if err != nil {
		return nil, fmt.Errorf("creating secret detector: %w", err)
	}
	return &Scrubber{cfg: cfg, detector: detector, logger: logger}, nil
}

// ScrubDigest returns a copy of the digest with secrets in its lines
// replaced by redaction markers. The input is not mutated.
func (s *Scrubber) ScrubDigest(d compress.Digest) compress.Digest {
	if !s.cfg.Enabled {
		return d
	}

	out := d
	out.Lines = make([]string, len(d.Lines))
	var redacted int
	for i, line := range d.Lines {
		scrubbed, n := s.scrubLine(line)
		out.Lines[i] = scrubbed
		redacted += n
	}
	if redacted > 0 {
		s.logger.Debug("secrets redacted from digest",
			zap.String("session", d.SessionID),
			zap.Int("redactions", redacted))
	}
	return out
}

// ScrubAll scrubs a batch, preserving order.
func (s *Scrubber) ScrubAll(digests []compress.Digest) []compress.Digest {
	if !s.cfg.Enabled {
		return digests
	}
	out := make([]compress.Digest, len(digests))
	for i, d := range digests {
		out[i] = s.ScrubDigest(d)
	}
	return out
}

// scrubLine replaces each detected secret with a marker. Replacement is
// by secret value rather than by reported column, which stays correct
// as earlier replacements shift the line.
func (s *Scrubber) scrubLine(line string) (string, int) {
	findings := s.detector.DetectString(line)
	if len(findings) == 0 {
		return line, 0
	}
	var n int
	for _, f := range findings {
		if f.Secret == "" {
			continue
		}
		marker := "[REDACTED:" + f.RuleID + "]"
		if replaced := strings.ReplaceAll(line, f.Secret, marker); replaced != line {
			line = replaced
			n++
		}
	}
	return line, n
}
