// Package result turns graded answers into totals, tiers and review sets.
package result

import (
	"github.com/google/uuid"

	"github.com/anatomyace/anatomy-ace/internal/model"
)

// Tier thresholds, in percent.
const (
	masterThreshold = 90.0
	goodThreshold   = 70.0
	fairThreshold   = 50.0
)

// Summary aggregates one session's answers.
type Summary struct {
	TotalScore int              `json:"total_score"`
	MaxScore   int              `json:"max_score"`
	Percentage float64          `json:"percentage"`
	Tier       model.ResultTier `json:"tier"`
	Questions  int              `json:"questions"`
	Correct    int              `json:"correct"`
	Partial    int              `json:"partial"`
	Incorrect  int              `json:"incorrect"`
}

// Summarize totals records and classifies the percentage.
func Summarize(records []model.AnswerRecord) Summary {
	s := Summary{Questions: len(records)}

	for _, r := range records {
		s.TotalScore += r.Score
		s.MaxScore += r.MaxScore

		switch {
		case r.IsCorrect:
			s.Correct++
		case r.Score > 0:
			s.Partial++
		default:
			s.Incorrect++
		}
	}

	s.Percentage = Percentage(s.TotalScore, s.MaxScore)
	s.Tier = Classify(s.Percentage)
	return s
}

// Percentage returns score/max as a percentage, 0 when max is 0.
func Percentage(score, max int) float64 {
	if max <= 0 {
		return 0
	}
	return float64(score) / float64(max) * 100
}

// Classify maps a percentage onto a tier.
func Classify(percentage float64) model.ResultTier {
	switch {
	case percentage >= masterThreshold:
		return model.TierMaster
	case percentage >= goodThreshold:
		return model.TierGood
	case percentage >= fairThreshold:
		return model.TierFair
	default:
		return model.TierNeedsPractice
	}
}

// NeedsReview reports whether a record belongs in the review set.
func NeedsReview(r model.AnswerRecord) bool {
	return !r.IsCorrect || r.Score < r.MaxScore
}

// ReviewSet returns the IDs of questions answered wrong or with partial
// credit, in first-seen order.
func ReviewSet(records []model.AnswerRecord) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(records))
	var ids []uuid.UUID

	for _, r := range records {
		if !NeedsReview(r) {
			continue
		}
		if _, ok := seen[r.QuestionID]; ok {
			continue
		}
		seen[r.QuestionID] = struct{}{}
		ids = append(ids, r.QuestionID)
	}
	return ids
}

// Improvement compares a review attempt with the first attempt on the same questions.
type Improvement struct {
	FirstScore       int     `json:"first_score"`
	ReviewScore      int     `json:"review_score"`
	MaxScore         int     `json:"max_score"`
	FirstPercentage  float64 `json:"first_percentage"`
	ReviewPercentage float64 `json:"review_percentage"`
	Delta            float64 `json:"delta"`
	Improved         bool    `json:"improved"`
}

// Compare scores the first attempt over only the questions present in the
// review attempt, so both percentages share a denominator.
func Compare(first, review []model.AnswerRecord) Improvement {
	firstByQuestion := make(map[uuid.UUID]model.AnswerRecord, len(first))
	for _, r := range first {
		firstByQuestion[r.QuestionID] = r
	}

	var imp Improvement
	for _, r := range review {
		imp.ReviewScore += r.Score
		imp.MaxScore += r.MaxScore
		if f, ok := firstByQuestion[r.QuestionID]; ok {
			imp.FirstScore += f.Score
		}
	}

	imp.FirstPercentage = Percentage(imp.FirstScore, imp.MaxScore)
	imp.ReviewPercentage = Percentage(imp.ReviewScore, imp.MaxScore)
	imp.Delta = imp.ReviewPercentage - imp.FirstPercentage
	imp.Improved = imp.Delta > 0
	return imp
}
