package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionActivity counts sessions started since a point in time.
type SessionActivity struct {
	Started           int64   `json:"started"`
	Finished          int64   `json:"finished"`
	Reviews           int64   `json:"reviews"`
	AveragePercentage float64 `json:"average_percentage"`
}

// QuestionDifficulty is how well a question has been answered so far.
type QuestionDifficulty struct {
	QuestionID   uuid.UUID `json:"question_id"`
	Question     string    `json:"question"`
	Attempts     int64     `json:"attempts"`
	AverageRatio float64   `json:"average_ratio"`
	TimedOut     int64     `json:"timed_out"`
}

// ActivitySnapshot is the admin dashboard view of recent quiz activity.
type ActivitySnapshot struct {
	Since           time.Time            `json:"since"`
	Sessions        SessionActivity      `json:"sessions"`
	Tiers           map[ResultTier]int64 `json:"tiers"`
	HardestQuestions []QuestionDifficulty `json:"hardest_questions"`
}

// MonitorQuery selects the dashboard window in hours.
type MonitorQuery struct {
	Hours int `json:"hours" form:"hours" binding:"omitempty,min=1,max=720"`
}
