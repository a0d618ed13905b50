package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/okian/rostr/internal/adapters/mq/queue"
	"github.com/okian/rostr/internal/domain/model"
	"github.com/okian/rostr/pkg/logger"
	"github.com/okian/rostr/pkg/metrics"
)

var errAlreadyPending = errors.New("regrade already pending")

// RegradeResult counts the jobs a regrade request produced.
type RegradeResult struct {
	Queued  int `json:"queued"`
	Pending int `json:"already_pending"`
}

// RegradeTeam queues one regrade job per player of a team the user owns.
// Players with a job still pending are skipped.
func (s *Service) RegradeTeam(ctx context.Context, userID, teamID string) (RegradeResult, error) {
	if _, err := s.ownedTeam(ctx, userID, teamID); err != nil {
		return RegradeResult{}, err
	}
	if !s.running() {
		return RegradeResult{}, newError(ErrNotStarted, "regrade pipeline is not running")
	}
	players, err := s.store.Players(ctx, teamID)
	if err != nil {
		return RegradeResult{}, err
	}

	var res RegradeResult
	for _, p := range players {
		err := s.enqueueRegrade(ctx, p.ID, 0)
		switch {
		case errors.Is(err, errAlreadyPending):
			res.Pending++
		case err != nil:
			return res, err
		default:
			res.Queued++
		}
	}
	s.logger.Info(ctx, "team regrade queued",
		logger.String("team_id", teamID),
		logger.Int("queued", res.Queued),
		logger.Int("pending", res.Pending))
	return res, nil
}

func (s *Service) running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// enqueueRegrade records playerID as pending and queues its job. The
// pending mark is released again if the job cannot be queued.
func (s *Service) enqueueRegrade(ctx context.Context, playerID string, season int) error {
	s.mu.RLock()
	started, pending, q := s.started, s.pending, s.queue
	s.mu.RUnlock()
	if !started {
		return newError(ErrNotStarted, "regrade pipeline is not running")
	}

	if pending.SeenAndRecord(ctx, playerID) {
		metrics.RecordRegradeDuplicate()
		return errAlreadyPending
	}

	job := model.RegradeJob{JobID: uuid.NewString(), PlayerID: playerID, Season: season}
	if err := q.Enqueue(ctx, job); err != nil {
		pending.Unrecord(ctx, playerID)
		if errors.Is(err, queue.ErrFull) {
			return newError(ErrQueueFull, "regrade queue is full, try again later")
		}
		return fmt.Errorf("enqueue regrade for %s: %w", playerID, err)
	}
	s.logger.Debug(ctx, "regrade queued",
		logger.String("job_id", job.JobID),
		logger.String("player_id", playerID))
	return nil
}
