package worker

// reporte_worker.go
// Processes close-report jobs from QueueReporte: renders the PDF for a
// cierre snapshot, records the result on the cierre row and hands the file
// to the email queue. A failed render marks the cierre reporte_estado=error
// and leaves it for the retry cron — the cierre itself is already committed
// and never rolls back.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"almapos/internal/infra"
	"almapos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ReporteJobPayload is the job envelope sent to QueueReporte.
type ReporteJobPayload struct {
	CierreID string `json:"cierre_id"`
}

// ReporteWorker renders close-report PDFs.
type ReporteWorker struct {
	cierreRepo     repository.CierreRepository
	dispatcher     *Dispatcher
	pdfStoragePath string
	cierreEmail    string
}

func NewReporteWorker(
	cierreRepo repository.CierreRepository,
	dispatcher *Dispatcher,
	pdfStoragePath string,
	cierreEmail string,
) *ReporteWorker {
	return &ReporteWorker{
		cierreRepo:     cierreRepo,
		dispatcher:     dispatcher,
		pdfStoragePath: pdfStoragePath,
		cierreEmail:    cierreEmail,
	}
}

// Process handles a single reporte job:
//  1. Parse ReporteJobPayload from the job envelope
//  2. Fetch the CierreCaja snapshot from DB
//  3. Render the PDF
//  4. Mark reporte_estado generado/error on the cierre row
//  5. Enqueue the email job when a recipient is configured
func (w *ReporteWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ReporteJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("reporte_worker: invalid payload")
		return
	}

	cierreID, err := uuid.Parse(payload.CierreID)
	if err != nil {
		log.Error().Str("cierre_id", payload.CierreID).Msg("reporte_worker: invalid cierre_id")
		return
	}

	cierre, err := w.cierreRepo.FindByID(ctx, cierreID)
	if err != nil {
		log.Error().Err(err).Str("cierre_id", payload.CierreID).Msg("reporte_worker: cierre not found")
		return
	}

	pdfPath, err := infra.GenerateCierrePDF(cierre, w.pdfStoragePath)
	if err != nil {
		log.Error().Err(err).Str("cierre_id", payload.CierreID).Msg("reporte_worker: PDF generation failed")
		nextRetry := time.Now().Add(computeRetryBackoff(cierre.RetryCount + 1))
		if err := w.cierreRepo.MarcarReporteError(ctx, cierreID, err.Error(), nextRetry); err != nil {
			log.Error().Err(err).Str("cierre_id", payload.CierreID).Msg("reporte_worker: failed to record error state")
		}
		return
	}

	if err := w.cierreRepo.MarcarReporteGenerado(ctx, cierreID, pdfPath); err != nil {
		log.Error().Err(err).Str("cierre_id", payload.CierreID).Msg("reporte_worker: failed to record generated state")
		return
	}
	log.Info().Str("pdf", pdfPath).Str("cierre_id", payload.CierreID).Msg("reporte_worker: report generated")

	if w.cierreEmail == "" {
		return
	}
	emailJob := EmailJobPayload{
		ToEmail: w.cierreEmail,
		Subject: fmt.Sprintf("Cierre de caja %s", cierre.Fecha),
		Body: fmt.Sprintf(
			"Cierre del %s\nTeórico: $%s\nDeclarado: $%s\nDiferencia: $%s\n",
			cierre.Fecha,
			cierre.Teorico.StringFixed(2),
			cierre.DeclaradoEfectivo.Add(cierre.DeclaradoDigital).StringFixed(2),
			cierre.Diferencia.StringFixed(2),
		),
		PDFPath: pdfPath,
	}
	if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
		log.Warn().Err(err).Str("cierre_id", payload.CierreID).Msg("reporte_worker: failed to enqueue email")
	}
}

// computeRetryBackoff returns the wait before the next regeneration attempt:
// 1m, 2m, 4m … capped at 30m.
func computeRetryBackoff(retryCount int) time.Duration {
	if retryCount < 1 {
		retryCount = 1
	}
	wait := time.Duration(1<<uint(retryCount-1)) * time.Minute
	if wait > 30*time.Minute {
		wait = 30 * time.Minute
	}
	return wait
}
