package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/anatomyace/anatomy-ace/internal/model"
)

const hardestQuestionLimit = 10

// ActivityStore reads aggregated quiz activity.
type ActivityStore interface {
	SessionActivity(ctx context.Context, since time.Time) (model.SessionActivity, error)
	TierCounts(ctx context.Context, since time.Time) (map[model.ResultTier]int64, error)
	HardestQuestions(ctx context.Context, since time.Time, limit int) ([]model.QuestionDifficulty, error)
}

// MonitorService builds the admin activity dashboard.
type MonitorService struct {
	store ActivityStore
	log   zerolog.Logger
}

// NewMonitorService creates a new MonitorService.
func NewMonitorService(store ActivityStore, log zerolog.Logger) *MonitorService {
	return &MonitorService{
		store: store,
		log:   log.With().Str("component", "monitor_service").Logger(),
	}
}

// Snapshot runs the three dashboard queries concurrently. Session counts are
// required; tiers and hardest questions are best-effort and come back empty
// when their query fails.
func (s *MonitorService) Snapshot(ctx context.Context, since time.Time) (*model.ActivitySnapshot, error) {
	var (
		activity    model.SessionActivity
		tiers       map[model.ResultTier]int64
		hardest     []model.QuestionDifficulty
		activityErr error
		tierErr     error
		hardestErr  error
		wg          sync.WaitGroup
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		activity, activityErr = s.store.SessionActivity(ctx, since)
	}()
	go func() {
		defer wg.Done()
		tiers, tierErr = s.store.TierCounts(ctx, since)
	}()
	go func() {
		defer wg.Done()
		hardest, hardestErr = s.store.HardestQuestions(ctx, since, hardestQuestionLimit)
	}()
	wg.Wait()

	if activityErr != nil {
		return nil, fmt.Errorf("session activity: %w", activityErr)
	}

	snapshot := &model.ActivitySnapshot{
		Since:           since,
		Sessions:        activity,
		Tiers:           map[model.ResultTier]int64{},
		HardestQuestions: []model.QuestionDifficulty{},
	}

	if tierErr != nil {
		s.log.Warn().Err(tierErr).Msg("Tier counts unavailable")
	} else if tiers != nil {
		snapshot.Tiers = tiers
	}

	if hardestErr != nil {
		s.log.Warn().Err(hardestErr).Msg("Hardest questions unavailable")
	} else if hardest != nil {
		snapshot.HardestQuestions = hardest
	}

	return snapshot, nil
}
