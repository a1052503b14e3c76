// Package scoring grades free-text answers by keyword matching.
//
// Everything here is a pure function of its arguments: no I/O, no shared
// state, safe to call from any number of goroutines.
package scoring

import (
	"math"
	"regexp"
	"strings"

	"github.com/anatomyace/anatomy-ace/internal/model"
)

// fullCreditRatio is the essay coverage treated as complete.
const fullCreditRatio = 0.99

var (
	numberedSplitPattern  = regexp.MustCompile(`\s*\d+\)\s*|\s*\d+\.\s*`)
	numberedMarkerPattern = regexp.MustCompile(`\d+\)\s*|\d+\.\s*`)
)

// Result is the outcome of grading one submission.
type Result struct {
	IsCorrect bool `json:"is_correct"`
	Score     int  `json:"score"`
}

// CheckAnswer grades userAnswer against q. The score is always within
// [0, q.Points] and IsCorrect implies full points.
func CheckAnswer(userAnswer string, q model.Question) Result {
	if strings.TrimSpace(userAnswer) == "" {
		return Result{}
	}

	user := normalize(userAnswer)
	reference := normalize(q.Answer)
	keywords := Keywords(q)

	if len(keywords) == 0 {
		if user == reference {
			return full(q)
		}
		return Result{}
	}

	switch q.Type {
	case model.QuestionTypeEssay:
		return scoreEssay(user, keywords, q.Points)
	default:
		// Short-answer and unknown types share one policy.
		return scoreShortAnswer(user, reference, keywords, q.Points)
	}
}

// Keywords returns the keyword list used to grade q: the persisted keywords
// when present, otherwise keywords derived from the reference answer.
func Keywords(q model.Question) []string {
	if strings.TrimSpace(q.Keywords) != "" {
		return SplitKeywords(q.Keywords)
	}
	return DeriveKeywords(q.Answer)
}

// DeriveKeywords splits a reference answer into required units: numbered
// items first, then semicolons, then commas, else the whole answer.
func DeriveKeywords(answer string) []string {
	answer = normalize(answer)
	if answer == "" {
		return nil
	}

	items := make([]string, 0)
	for _, item := range numberedSplitPattern.Split(answer, -1) {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	switch {
	case len(items) > 1:
		return items
	case strings.Contains(answer, ";"):
		return splitNonEmpty(answer, ";")
	case strings.Contains(answer, ","):
		return splitNonEmpty(answer, ",")
	default:
		return []string{answer}
	}
}

func scoreShortAnswer(user, reference string, keywords []string, points int) Result {
	if user == reference {
		return Result{IsCorrect: true, Score: points}
	}

	matched := countMatches(user, keywords)
	switch {
	case matched == len(keywords):
		return Result{IsCorrect: true, Score: points}
	case matched > 0:
		return Result{Score: partial(points, float64(matched)/float64(len(keywords)))}
	default:
		return Result{}
	}
}

func scoreEssay(user string, keywords []string, points int) Result {
	matched := countMatches(user, keywords)
	ratio := float64(matched) / float64(len(keywords))

	// Enumerating fewer numbered points than expected caps the coverage.
	if markers := len(numberedMarkerPattern.FindAllString(user, -1)); markers > 0 && markers < len(keywords) {
		ratio = math.Min(ratio, float64(markers)/float64(len(keywords)))
	}

	switch {
	case ratio >= fullCreditRatio:
		return Result{IsCorrect: true, Score: points}
	case matched > 0:
		return Result{Score: partial(points, ratio)}
	default:
		return Result{}
	}
}

func countMatches(user string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(user, normalize(kw)) {
			n++
		}
	}
	return n
}

// partial rounds half away from zero and clamps into [0, points].
func partial(points int, ratio float64) int {
	score := int(math.Round(float64(points) * ratio))
	if score < 0 {
		return 0
	}
	if score > points {
		return points
	}
	return score
}

func full(q model.Question) Result {
	return Result{IsCorrect: true, Score: q.Points}
}

func normalize(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}
