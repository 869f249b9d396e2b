package syncer

import (
	"context"
	"log/slog"
	"time"

	"github.com/livinlefevreloca/stockroom/internal/gateway"
	"github.com/livinlefevreloca/stockroom/internal/ops"
	"github.com/livinlefevreloca/stockroom/internal/queue"
)

// Syncer replays queued operations against the gateway.
//
// Delivery is at-least-once: if an earlier attempt reached the API but its
// reply was lost, the replay applies the operation a second time.
type Syncer struct {
	config  Config
	gateway gateway.Gateway
	store   *queue.Store
	logger  *slog.Logger
	now     func() time.Time

	stats Stats
}

// NewSyncer creates a new syncer with the specified configuration
func NewSyncer(config Config, gw gateway.Gateway, store *queue.Store, logger *slog.Logger) (*Syncer, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return &Syncer{
		config:  config,
		gateway: gw,
		store:   store,
		logger:  logger,
		now:     time.Now,
	}, nil
}

// SyncAll walks the queue from the front, replaying one record at a time.
// A replayed record is removed; the first failure stops the walk and leaves
// that record and everything after it queued in order. The queue is saved
// once, after the walk.
//
// Cancelling ctx stops the walk before the next record; a replay already in
// flight runs to completion and its result is kept.
func (s *Syncer) SyncAll(ctx context.Context) ops.SyncResult {
	if s.store.Len() == 0 {
		s.logger.Debug("no pending operations")
		return ops.SyncResult{Nothing: true}
	}

	s.logger.Info("synchronizing pending operations", "pending", s.store.Len())

	s.stats.Runs++
	s.stats.LastRun = s.now()
	s.stats.LastError = nil

	synced := 0
	for s.store.Len() > 0 {
		if s.config.MaxPerRun > 0 && synced >= s.config.MaxPerRun {
			break
		}

		if err := ctx.Err(); err != nil {
			s.stats.StoppedWalks++
			s.stats.LastError = err
			s.logger.Warn("synchronization interrupted",
				"synced", synced,
				"remaining", s.store.Len())
			break
		}

		op := s.store.At(0)
		if _, err := s.gateway.Do(context.WithoutCancel(ctx), op.Action, op.Params); err != nil {
			s.stats.StoppedWalks++
			s.stats.LastError = err
			s.logger.Warn("replay failed, stopping synchronization",
				"action", op.Action,
				"synced", synced,
				"error", err)
			break
		}

		// the next record shifts into the front
		s.store.RemoveAt(0)
		synced++
	}

	s.stats.Synced += synced

	if err := s.store.Save(ctx); err != nil {
		// Storage still lists the replayed records until the next successful save
		s.logger.Error("failed to save pending queue after synchronization",
			"synced", synced,
			"error", err)
		s.stats.LastError = err
	}

	result := ops.SyncResult{Synced: synced, Remaining: s.store.Len()}
	s.logger.Info("synchronization finished",
		"synced", result.Synced,
		"remaining", result.Remaining)

	return result
}

// GetStats returns current syncer statistics
func (s *Syncer) GetStats() Stats {
	return s.stats
}

// GetConfig returns the syncer configuration
func (s *Syncer) GetConfig() Config {
	return s.config
}
