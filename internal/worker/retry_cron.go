package worker

// retry_cron.go
// Background goroutine that periodically re-attempts PDF generation for
// cierres stuck in reporte_estado='error' with a next_retry_at in the past.
// Checks the SMTP circuit breaker before re-enqueueing emails so a downed
// relay does not refill the email queue with jobs bound to fail.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"almapos/internal/infra"
	"almapos/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10

	// MaxReporteRetries is the number of regeneration attempts before a
	// cierre report lands in the DLQ.
	MaxReporteRetries = 5
)

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	CierreRepo     repository.CierreRepository
	Dispatcher     *Dispatcher
	CB             *infra.CircuitBreaker
	RDB            *redis.Client
	PDFStoragePath string
	CierreEmail    string
}

// StartRetryCron launches a background goroutine that ticks every 30s and
// re-attempts errored cierre reports. It respects the context for graceful
// shutdown.
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
				processRetries(ctx, cfg)
			}
		}
	}()
}

func processRetries(ctx context.Context, cfg RetryCronConfig) {
	now := time.Now()
	cierres, err := cfg.CierreRepo.ListPendingRetries(ctx, now, retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query pending retries")
		return
	}
	if len(cierres) == 0 {
		return
	}

	log.Info().Int("count", len(cierres)).Msg("retry_cron: processing errored reports")

	for i := range cierres {
		cierre := &cierres[i]

		if cierre.RetryCount >= MaxReporteRetries {
			log.Error().
				Str("cierre_id", cierre.ID.String()).
				Int("retries", cierre.RetryCount).
				Msg("retry_cron: max retries exceeded, moving to DLQ")

			payload, _ := json.Marshal(ReporteJobPayload{CierreID: cierre.ID.String()})
			reason := fmt.Sprintf("max retries (%d) exceeded", MaxReporteRetries)
			if cierre.LastError != nil {
				reason = fmt.Sprintf("%s: %s", reason, *cierre.LastError)
			}
			SendToDLQ(ctx, cfg.RDB, QueueReporte, "reporte", payload, reason, cierre.RetryCount)

			// Push next_retry_at far out so the cron stops picking it up;
			// the DLQ entry is the handle for manual intervention.
			_ = cfg.CierreRepo.MarcarReporteError(ctx, cierre.ID, reason, now.AddDate(10, 0, 0))
			continue
		}

		pdfPath, genErr := infra.GenerateCierrePDF(cierre, cfg.PDFStoragePath)
		if genErr != nil {
			nextRetry := now.Add(computeRetryBackoff(cierre.RetryCount + 1))
			if err := cfg.CierreRepo.MarcarReporteError(ctx, cierre.ID, genErr.Error(), nextRetry); err != nil {
				log.Error().Err(err).Str("cierre_id", cierre.ID.String()).Msg("retry_cron: failed to record error state")
			}
			log.Warn().
				Err(genErr).
				Str("cierre_id", cierre.ID.String()).
				Int("retry_count", cierre.RetryCount+1).
				Time("next_retry_at", nextRetry).
				Msg("retry_cron: regeneration failed, scheduled next attempt")
			continue
		}

		if err := cfg.CierreRepo.MarcarReporteGenerado(ctx, cierre.ID, pdfPath); err != nil {
			log.Error().Err(err).Str("cierre_id", cierre.ID.String()).Msg("retry_cron: failed to record generated state")
			continue
		}
		log.Info().
			Str("cierre_id", cierre.ID.String()).
			Int("total_retries", cierre.RetryCount).
			Str("pdf", pdfPath).
			Msg("retry_cron: report generated after retry")

		if cfg.CierreEmail == "" {
			continue
		}
		// Skip the email when the relay is known to be down; the report is
		// on disk either way.
		if cfg.CB.State() == infra.CBOpen {
			log.Debug().Str("cierre_id", cierre.ID.String()).Msg("retry_cron: circuit breaker open, skipping email")
			continue
		}
		emailJob := EmailJobPayload{
			ToEmail: cfg.CierreEmail,
			Subject: fmt.Sprintf("Cierre de caja %s", cierre.Fecha),
			Body:    fmt.Sprintf("Cierre del %s regenerado. Diferencia: $%s", cierre.Fecha, cierre.Diferencia.StringFixed(2)),
			PDFPath: pdfPath,
		}
		if err := cfg.Dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
			log.Warn().Err(err).Str("cierre_id", cierre.ID.String()).Msg("retry_cron: failed to enqueue email")
		}
	}
}
