package mining

import (
	"math"
	"regexp"
	"strings"

	"github.com/fyrsmithlabs/habitd/internal/compress"
)

var (
	quotedRe = regexp.MustCompile("`[^`]*`|\"[^\"]*\"|'[^']*'")
	// A path-like token contains a slash or ends in a short file extension.
	pathTokenRe = regexp.MustCompile(`\S*/\S+|\b\S+\.[A-Za-z]{1,5}\b`)
	digitRunRe  = regexp.MustCompile(`\d+`)
	spaceRunRe  = regexp.MustCompile(`\s+`)
)

// suffixForms are common Korean request endings, most specific first.
var suffixForms = []struct {
	re    *regexp.Regexp
	label string
}{
	{regexp.MustCompile(`보여줘$`), "~보여줘"},
	{regexp.MustCompile(`알려줘$`), "~알려줘"},
	{regexp.MustCompile(`확인해$`), "~확인해"},
	{regexp.MustCompile(`수정해$`), "~수정해"},
	{regexp.MustCompile(`추가해$`), "~추가해"},
	{regexp.MustCompile(`해줘$`), "~해줘"},
	{regexp.MustCompile(`해봐$`), "~해봐"},
	{regexp.MustCompile(`할래$`), "~할래"},
	{regexp.MustCompile(`해$`), "~해"},
	{regexp.MustCompile(`줘$`), "~줘"},
}

// prefixForms are deictic openers that point at a file or location.
var prefixForms = []struct {
	re    *regexp.Regexp
	label string
}{
	{regexp.MustCompile(`^이 파일`), "이 파일~"},
	{regexp.MustCompile(`^이것`), "이것~"},
	{regexp.MustCompile(`^이거`), "이거~"},
	{regexp.MustCompile(`^여기`), "여기~"},
	{regexp.MustCompile(`^저거`), "저거~"},
	{regexp.MustCompile(`^@`), "@파일~"},
}

// normalizeTemplate collapses the parts of a prompt that look like
// inserted specifics, so "fix bug in auth.go" and "fix bug in db.go"
// group under one template.
func normalizeTemplate(s string) string {
	s = strings.TrimSpace(s)
	s = quotedRe.ReplaceAllString(s, "<arg>")
	s = pathTokenRe.ReplaceAllString(s, "<path>")
	s = digitRunRe.ReplaceAllString(s, "<n>")
	return spaceRunRe.ReplaceAllString(s, " ")
}

type templateStats struct {
	freq     int
	examples []string
}

func (t *templateStats) add(raw string) {
	t.freq++
	if len(t.examples) < maxExamples {
		t.examples = append(t.examples, clip(raw, 50))
	}
}

// mineTemplates groups user lines three ways: by normalized text, by
// Korean request suffix, and by deictic prefix. Each grouping that
// clears the frequency floor becomes a template pattern.
func (m *Miner) mineTemplates(digests []compress.Digest) []Pattern {
	normalized := make(map[string]*templateStats)
	suffixes := make(map[string]*templateStats)
	prefixes := make(map[string]*templateStats)

	var total int
	for _, d := range digests {
		for _, msg := range d.UserLines() {
			msg = strings.TrimSpace(msg)
			if msg == "" {
				continue
			}
			total++

			key := normalizeTemplate(msg)
			st := normalized[key]
			if st == nil {
				st = &templateStats{}
				normalized[key] = st
			}
			st.add(msg)

			for _, form := range suffixForms {
				if form.re.MatchString(msg) {
					st := suffixes[form.label]
					if st == nil {
						st = &templateStats{}
						suffixes[form.label] = st
					}
					st.add(msg)
					break
				}
			}
			for _, form := range prefixForms {
				if form.re.MatchString(msg) {
					st := prefixes[form.label]
					if st == nil {
						st = &templateStats{}
						prefixes[form.label] = st
					}
					st.add(msg)
					break
				}
			}
		}
	}

	var patterns []Pattern
	for _, group := range []map[string]*templateStats{normalized, suffixes, prefixes} {
		for sig, st := range group {
			if st.freq < m.cfg.MinFrequency {
				continue
			}
			conf := math.Min(1, float64(st.freq)/8)
			patterns = append(patterns, newPattern(FamilyTemplate, sig, st.freq, st.examples, conf))
		}
	}
	sortPatterns(patterns)
	return patterns
}
