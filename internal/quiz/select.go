package quiz

import (
	"math/rand"
	"time"

	"github.com/anatomyace/anatomy-ace/internal/model"
)

// Select draws count questions from pool. count <= 0 takes every question.
// Without shuffle the pool order is kept; a nil seed shuffles by clock.
func Select(pool []model.Question, count int, shuffle bool, seed *int64) []model.Question {
	out := append([]model.Question(nil), pool...)

	if shuffle {
		var r *rand.Rand
		if seed != nil {
			r = rand.New(rand.NewSource(*seed))
		} else {
			r = rand.New(rand.NewSource(time.Now().UnixNano()))
		}
		r.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	}

	if count > 0 && count < len(out) {
		out = out[:count]
	}
	return out
}

// Filter keeps the questions matching f.
func Filter(pool []model.Question, f model.QuestionFilter) []model.Question {
	var out []model.Question
	for _, q := range pool {
		if f.Match(q) {
			out = append(out, q)
		}
	}
	return out
}
