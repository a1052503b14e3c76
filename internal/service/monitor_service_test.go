package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/anatomyace/anatomy-ace/internal/model"
)

type fakeActivity struct {
	activity    model.SessionActivity
	activityErr error
	tiers       map[model.ResultTier]int64
	tierErr     error
	hardest     []model.QuestionDifficulty
	hardestErr  error
	gotLimit    int
}

func (f *fakeActivity) SessionActivity(context.Context, time.Time) (model.SessionActivity, error) {
	return f.activity, f.activityErr
}

func (f *fakeActivity) TierCounts(context.Context, time.Time) (map[model.ResultTier]int64, error) {
	return f.tiers, f.tierErr
}

func (f *fakeActivity) HardestQuestions(_ context.Context, _ time.Time, limit int) ([]model.QuestionDifficulty, error) {
	f.gotLimit = limit
	return f.hardest, f.hardestErr
}

func TestMonitorService_Snapshot(t *testing.T) {
	store := &fakeActivity{
		activity: model.SessionActivity{Started: 5, Finished: 3, AveragePercentage: 72.5},
		tiers:    map[model.ResultTier]int64{model.TierGood: 2, model.TierFair: 1},
		hardest:  []model.QuestionDifficulty{{Question: "Longest bone?", Attempts: 4, AverageRatio: 0.25}},
	}
	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	snap, err := NewMonitorService(store, zerolog.Nop()).Snapshot(context.Background(), since)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.Sessions.Started != 5 || snap.Tiers[model.TierGood] != 2 || len(snap.HardestQuestions) != 1 {
		t.Errorf("snapshot = %+v", snap)
	}
	if !snap.Since.Equal(since) || store.gotLimit != hardestQuestionLimit {
		t.Errorf("since = %v limit = %d", snap.Since, store.gotLimit)
	}
}

func TestMonitorService_BestEffortParts(t *testing.T) {
	store := &fakeActivity{
		activity:   model.SessionActivity{Started: 1},
		tierErr:    errors.New("timeout"),
		hardestErr: errors.New("timeout"),
	}

	snap, err := NewMonitorService(store, zerolog.Nop()).Snapshot(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.Tiers == nil || len(snap.Tiers) != 0 || snap.HardestQuestions == nil {
		t.Errorf("best-effort parts = %+v", snap)
	}

	store.activityErr = errors.New("db down")
	if _, err := NewMonitorService(store, zerolog.Nop()).Snapshot(context.Background(), time.Now()); err == nil {
		t.Error("expected error when session activity fails")
	}
}
