package config

import (
	"fmt"

	"github.com/google/uuid"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// QuizSessionKey returns the cache key holding a quiz session's state
func (r *CacheKeyStruct) QuizSessionKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("quiz:session:%s", sessionID)
}

// QuizDraftKey returns the cache key for the unsubmitted answer of a session's current question
func (r *CacheKeyStruct) QuizDraftKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("quiz:session:%s:draft", sessionID)
}

// QuestionPoolKey returns the cache key for the loaded question pool
func (r *CacheKeyStruct) QuestionPoolKey() string {
	return "quiz:questions:pool"
}

// ScoreRateKey returns the cache key counting public scoring calls from ip in the current window
func (r *CacheKeyStruct) ScoreRateKey(ip string, window int64) string {
	return fmt.Sprintf("ratelimit:score:%s:%d", ip, window)
}

var CacheKey = NewCacheKeyStruct()
