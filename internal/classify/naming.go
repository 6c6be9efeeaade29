package classify

import (
	"regexp"
	"strings"

	"github.com/fyrsmithlabs/habitd/internal/mining"
)

// koreanCommands maps frequent Korean request keywords to slash-command
// stems.
var koreanCommands = map[string]string{
	"커밋":    "commit",
	"푸시":    "push",
	"테스트":   "test",
	"빌드":    "build",
	"배포":    "deploy",
	"리팩토링":  "refactor",
	"수정":    "fix",
	"추가":    "add",
	"삭제":    "delete",
	"확인":    "check",
	"분석":    "analyze",
	"요약":    "summarize",
	"정리":    "organize",
	"이 파일":  "file",
	"이거":    "this",
	"여기":    "here",
}

// commandKeywords is the lookup order for extracting a command stem
// from a literal example.
var commandKeywords = []string{
	"리팩토링", "커밋", "푸시", "테스트", "빌드", "배포", "수정", "분석", "요약", "확인", "추가", "정리",
}

var (
	frequentToolRe = regexp.MustCompile(`^Frequent (\S+) tool use$`)
	placeholderRe  = regexp.MustCompile(`<[a-z]+>`)
	slugStripRe    = regexp.MustCompile(`[^a-z0-9-]+`)
)

// suggestedName generates a concrete name for the suggestion: a skill
// slug, a slash command, an agent name, or a CLAUDE.md rule sentence.
func suggestedName(p mining.Pattern, kind Kind) string {
	switch kind {
	case KindSkill:
		return skillName(p)
	case KindSlashCommand:
		return slashName(p)
	case KindAgent:
		return agentName(p)
	default:
		return ruleName(p)
	}
}

// skillName turns "Read → Edit → Bash" into "read-edit-bash".
func skillName(p mining.Pattern) string {
	tools := strings.Split(p.Signature, " → ")
	parts := make([]string, 0, len(tools))
	for _, tool := range tools {
		slug := slugify(tool)
		if slug != "" {
			parts = append(parts, slug)
		}
	}
	if len(parts) == 0 {
		return "custom-skill"
	}
	return strings.Join(parts, "-")
}

func slashName(p mining.Pattern) string {
	sig := p.Signature

	// Suffix templates carry no verb themselves; pull one from the
	// first literal example.
	if strings.HasPrefix(sig, "~") {
		for _, example := range p.Examples {
			for _, kw := range commandKeywords {
				if strings.Contains(example, kw) {
					return "/" + koreanCommands[kw]
				}
			}
		}
		return "/quick-task"
	}

	if strings.HasSuffix(sig, "~") {
		prefix := strings.TrimSpace(strings.TrimSuffix(sig, "~"))
		prefix = strings.TrimPrefix(prefix, "@")
		if cmd, ok := koreanCommands[prefix]; ok {
			return "/" + cmd + "-action"
		}
		return "/file-action"
	}

	// Normalized templates: slug the leading words, placeholders
	// dropped.
	words := strings.Fields(placeholderRe.ReplaceAllString(sig, ""))
	var parts []string
	for _, w := range words {
		if cmd, ok := koreanCommands[strings.TrimSuffix(w, "해줘")]; ok {
			parts = append(parts, cmd)
			continue
		}
		if slug := slugify(w); slug != "" {
			parts = append(parts, slug)
		}
		if len(parts) == 2 {
			break
		}
	}
	if len(parts) == 0 {
		return "/custom-command"
	}
	return "/" + strings.Join(parts, "-")
}

func agentName(p mining.Pattern) string {
	joined := strings.ToLower(p.Signature + " " + strings.Join(p.Examples, " "))
	switch {
	case strings.Contains(joined, "review") || strings.Contains(joined, "리뷰"):
		return "code-reviewer"
	case strings.Contains(joined, "refactor") || strings.Contains(joined, "리팩토링"):
		return "code-refactorer"
	case strings.Contains(joined, "explore") || strings.Contains(joined, "탐색"):
		return "code-explorer"
	case strings.Contains(joined, "test") || strings.Contains(joined, "테스트"):
		return "test-runner"
	case strings.Contains(joined, "debug") || strings.Contains(joined, "디버그"):
		return "debugger"
	default:
		return "custom-agent"
	}
}

func ruleName(p mining.Pattern) string {
	sig := p.Signature
	lower := strings.ToLower(sig)
	switch {
	case strings.Contains(lower, "korean") || strings.Contains(sig, "한글"):
		return "Output language: Korean"
	case strings.Contains(lower, "english"):
		return "Output language: English"
	case strings.Contains(lower, "short sessions"):
		return "Prefer short sessions"
	case strings.Contains(lower, "long sessions"):
		return "Prefer detailed responses"
	}
	if m := frequentToolRe.FindStringSubmatch(sig); m != nil {
		return "Prefer " + m[1] + " tool"
	}
	if sig == "" {
		return "custom-rule"
	}
	// The signature already reads as a rule for the remaining
	// aggregates.
	runes := []rune(sig)
	if len(runes) > 50 {
		return string(runes[:50])
	}
	return sig
}

func slugify(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer("(", "-", ")", "", ".", "-").Replace(s)
	s = slugStripRe.ReplaceAllString(s, "")
	return strings.Trim(s, "-")
}
