package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/anatomyace/anatomy-ace/internal/config"
	"github.com/anatomyace/anatomy-ace/internal/model"
)

const (
	AttemptBatchSize    = 100
	AttemptBatchTimeout = 2 * time.Second
	AttemptPollTimeout  = 1 * time.Second
)

// AttemptWriter persists graded attempts.
type AttemptWriter interface {
	BulkInsertAttempts(ctx context.Context, attempts []model.Attempt) error
	InsertAttempt(ctx context.Context, a model.Attempt) error
}

// AttemptWorker drains the attempt queue into Postgres in batches.
type AttemptWorker struct {
	writer AttemptWriter
	rdb    *redis.Client
	log    zerolog.Logger
}

func NewAttemptWorker(writer AttemptWriter, rdb *redis.Client, log zerolog.Logger) *AttemptWorker {
	return &AttemptWorker{
		writer: writer,
		rdb:    rdb,
		log:    log.With().Str("component", "attempt_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *AttemptWorker) Start(ctx context.Context) {
	w.log.Info().Msg("AttemptWorker started")

	batch := make([]model.Attempt, 0, AttemptBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= AttemptBatchSize || time.Since(lastFlush) >= AttemptBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", len(batch)).Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, AttemptPollTimeout, config.WorkerKey.PersistAttemptsQueue).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			a, err := decodeAttempt(item[1])
			if err != nil {
				w.log.Error().Err(err).Msg("Invalid attempt payload")
				continue
			}

			batch = append(batch, a)
		}
	}
}

func decodeAttempt(raw string) (model.Attempt, error) {
	var a model.Attempt
	err := json.Unmarshal([]byte(raw), &a)
	return a, err
}

// ----------------------------------------------------------------
// Batch insert with per-row fallback
// ----------------------------------------------------------------

// flushSafe writes batch, falling back to row-by-row inserts and requeueing
// rows that still fail.
func (w *AttemptWorker) flushSafe(ctx context.Context, batch []model.Attempt) {
	if len(batch) == 0 {
		return
	}

	err := w.writer.BulkInsertAttempts(ctx, batch)
	if err == nil {
		w.log.Debug().Int("count", len(batch)).Msg("Attempts persisted")
		return
	}

	w.log.Warn().Err(err).Int("count", len(batch)).Msg("bulk attempt insert failed, using fallback")

	var failed []model.Attempt
	for _, a := range batch {
		if err := w.writer.InsertAttempt(ctx, a); err != nil {
			w.log.Error().
				Err(err).
				Str("session_id", a.SessionID.String()).
				Int("position", a.Position).
				Msg("InsertAttempt failed, requeueing")
			failed = append(failed, a)
		}
	}
	w.requeue(ctx, failed)
}

func (w *AttemptWorker) requeue(ctx context.Context, attempts []model.Attempt) {
	if len(attempts) == 0 || w.rdb == nil {
		return
	}

	pipe := w.rdb.Pipeline()
	for _, a := range attempts {
		raw, err := json.Marshal(a)
		if err != nil {
			continue
		}
		pipe.RPush(ctx, config.WorkerKey.PersistAttemptsQueue, raw)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Error().Err(err).Int("count", len(attempts)).Msg("Requeue failed, attempts dropped")
	}
}
