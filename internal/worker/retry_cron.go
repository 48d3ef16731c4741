package worker

// retry_cron.go
// Background goroutine that re-queues Z reports that were never rendered:
// the enqueue after close is best-effort, so a Redis outage at that moment
// would otherwise leave the close without a PDF.

import (
	"context"
	"time"

	"blendcaja/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = time.Minute
	retryGracePeriod  = 5 * time.Minute
	retryBatchSize    = 20
)

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	CierreRepo repository.CierreRepository
	Dispatcher reporteEnqueuer
}

type reporteEnqueuer interface {
	EnqueueReporteCierre(ctx context.Context, cierreID uuid.UUID) error
}

// StartRetryCron launches a goroutine that ticks every minute until ctx is done.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				requeueReportes(ctx, cfg, time.Now())
			}
		}
	}()
}

// requeueReportes enqueues closes older than the grace period that still have no
// PDF. It returns how many were queued.
func requeueReportes(ctx context.Context, cfg RetryCronConfig, now time.Time) int {
	cierres, err := cfg.CierreRepo.ListSinReporte(ctx, now.Add(-retryGracePeriod), retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query closes without report")
		return 0
	}
	encolados := 0
	for _, c := range cierres {
		if err := cfg.Dispatcher.EnqueueReporteCierre(ctx, c.ID); err != nil {
			log.Warn().Err(err).Str("cierre_id", c.ID.String()).Msg("retry_cron: enqueue failed")
			return encolados
		}
		encolados++
	}
	if encolados > 0 {
		log.Info().Int("count", encolados).Msg("retry_cron: re-queued pending reports")
	}
	return encolados
}
