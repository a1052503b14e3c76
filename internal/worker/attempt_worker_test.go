package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/anatomyace/anatomy-ace/internal/model"
)

type fakeWriter struct {
	bulkErr   error
	failIDs   map[int]bool
	bulkCalls int
	rows      []model.Attempt
}

func (f *fakeWriter) BulkInsertAttempts(_ context.Context, attempts []model.Attempt) error {
	f.bulkCalls++
	if f.bulkErr != nil {
		return f.bulkErr
	}
	f.rows = append(f.rows, attempts...)
	return nil
}

func (f *fakeWriter) InsertAttempt(_ context.Context, a model.Attempt) error {
	if f.failIDs[a.Position] {
		return errors.New("row failed")
	}
	f.rows = append(f.rows, a)
	return nil
}

func attempts(n int) []model.Attempt {
	id := uuid.New()
	out := make([]model.Attempt, n)
	for i := range out {
		out[i] = model.Attempt{SessionID: id, QuestionID: uuid.New(), Position: i, Score: i, MaxScore: 3}
	}
	return out
}

func TestAttemptWorker_FlushBulk(t *testing.T) {
	w := &fakeWriter{}
	aw := NewAttemptWorker(w, nil, zerolog.Nop())

	aw.flushSafe(context.Background(), attempts(3))

	if w.bulkCalls != 1 || len(w.rows) != 3 {
		t.Errorf("bulk calls = %d, rows = %d", w.bulkCalls, len(w.rows))
	}
}

func TestAttemptWorker_FlushFallback(t *testing.T) {
	w := &fakeWriter{bulkErr: errors.New("deadlock"), failIDs: map[int]bool{1: true}}
	aw := NewAttemptWorker(w, nil, zerolog.Nop())

	aw.flushSafe(context.Background(), attempts(3))

	if len(w.rows) != 2 {
		t.Fatalf("rows = %d, want 2 after fallback", len(w.rows))
	}
	if w.rows[0].Position != 0 || w.rows[1].Position != 2 {
		t.Errorf("fallback rows = %+v", w.rows)
	}
}

func TestAttemptWorker_FlushEmpty(t *testing.T) {
	w := &fakeWriter{}
	NewAttemptWorker(w, nil, zerolog.Nop()).flushSafe(context.Background(), nil)
	if w.bulkCalls != 0 {
		t.Error("empty batch was written")
	}
}

func TestDecodeAttempt(t *testing.T) {
	in := model.Attempt{
		SessionID:   uuid.New(),
		QuestionID:  uuid.New(),
		Position:    4,
		UserAnswer:  "femur",
		IsCorrect:   true,
		Score:       3,
		MaxScore:    3,
		ElapsedMs:   1500,
		SubmittedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	raw, _ := json.Marshal(in)

	got, err := decodeAttempt(string(raw))
	if err != nil {
		t.Fatalf("decodeAttempt: %v", err)
	}
	if got != in {
		t.Errorf("decodeAttempt = %+v, want %+v", got, in)
	}

	if _, err := decodeAttempt("{not json"); err == nil {
		t.Error("garbage decoded without error")
	}
}
