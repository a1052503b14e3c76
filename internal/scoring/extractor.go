package scoring

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/anatomyace/anatomy-ace/internal/model"
)

// MaxKeywords caps the number of keywords stored per question.
const MaxKeywords = 10

// KeywordDelimiter separates keywords in the persisted form.
const KeywordDelimiter = ";"

var (
	bracketPattern   = regexp.MustCompile(`\((.*?)\)`)
	latinTermPattern = regexp.MustCompile(`[a-zA-Z][a-zA-Z\s]{2,}`)
	numberRunPattern = regexp.MustCompile(`\d+[\s\p{L}\p{N}_]+`)
	essaySplitter    = regexp.MustCompile(`[,;()]`)
)

// ExtractKeywords derives the persisted keyword string for a reference answer.
// The result is at most MaxKeywords entries joined by KeywordDelimiter.
func ExtractKeywords(answer string, qt model.QuestionType) string {
	return strings.Join(ExtractKeywordList(answer, qt), KeywordDelimiter)
}

// ExtractKeywordList is ExtractKeywords before serialization.
func ExtractKeywordList(answer string, qt model.QuestionType) []string {
	answer = strings.ToLower(answer)

	var candidates []string
	if qt == model.QuestionTypeShortAnswer {
		candidates = shortAnswerCandidates(answer)
	} else {
		candidates = essayCandidates(answer)
	}

	return dedupe(candidates, MaxKeywords)
}

// shortAnswerCandidates seeds with the whole answer, then comma parts and
// bracket contents.
func shortAnswerCandidates(answer string) []string {
	candidates := []string{strings.TrimSpace(answer)}

	for _, part := range strings.Split(answer, ",") {
		candidates = append(candidates, strings.TrimSpace(part))
	}

	return append(candidates, bracketContents(answer)...)
}

func essayCandidates(answer string) []string {
	candidates := bracketContents(answer)

	for _, term := range latinTermPattern.FindAllString(answer, -1) {
		candidates = append(candidates, strings.TrimSpace(term))
	}
	for _, run := range numberRunPattern.FindAllString(answer, -1) {
		candidates = append(candidates, strings.TrimSpace(run))
	}

	for _, part := range essaySplitter.Split(answer, -1) {
		part = strings.TrimSpace(part)
		if utf8.RuneCountInString(part) > 3 && !isNumeric(part) {
			candidates = append(candidates, part)
		}
	}

	return candidates
}

func bracketContents(answer string) []string {
	matches := bracketPattern.FindAllStringSubmatch(answer, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.TrimSpace(m[1]))
	}
	return out
}

// dedupe keeps the first occurrence of every candidate longer than one
// character, in order, up to limit entries.
func dedupe(candidates []string, limit int) []string {
	seen := make(map[string]struct{}, len(candidates))
	kept := make([]string, 0, limit)

	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if utf8.RuneCountInString(c) <= 1 {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		kept = append(kept, c)
		if len(kept) == limit {
			break
		}
	}

	return kept
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// SplitKeywords parses a persisted keyword string into normalized keywords,
// dropping blank entries.
func SplitKeywords(persisted string) []string {
	return splitNonEmpty(strings.ToLower(persisted), KeywordDelimiter)
}

func splitNonEmpty(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
