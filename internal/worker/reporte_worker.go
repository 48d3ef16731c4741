package worker

// reporte_worker.go
// Processes Z report jobs from QueueReportes: renders the PDF of a close,
// records its path and optionally queues the email delivery.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"blendcaja/internal/infra"
	"blendcaja/internal/model"
	"blendcaja/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ReporteCierrePayload is the job envelope sent to QueueReportes.
type ReporteCierrePayload struct {
	CierreID string `json:"cierre_id"`
}

type emailEnqueuer interface {
	EnqueueEmail(ctx context.Context, payload EmailJobPayload) error
}

// ReporteCierreWorker turns a persisted CierreCaja into its PDF report.
type ReporteCierreWorker struct {
	cierreRepo   repository.CierreRepository
	emails       emailEnqueuer
	storagePath  string
	destinatario string // empty disables email delivery
	render       func(c *model.CierreCaja, storagePath string) (string, error)
}

func NewReporteCierreWorker(cierreRepo repository.CierreRepository, emails emailEnqueuer, storagePath, destinatario string) *ReporteCierreWorker {
	return &ReporteCierreWorker{
		cierreRepo:   cierreRepo,
		emails:       emails,
		storagePath:  storagePath,
		destinatario: destinatario,
		render:       infra.GenerateCierrePDF,
	}
}

// Process handles a single report job. Already rendered closes are skipped, so a
// job queued twice (retry cron + original) sends at most one email.
func (w *ReporteCierreWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ReporteCierrePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("reporte_worker: invalid payload")
		return nil
	}
	id, err := uuid.Parse(payload.CierreID)
	if err != nil {
		log.Error().Str("cierre_id", payload.CierreID).Msg("reporte_worker: invalid cierre_id")
		return nil
	}

	cierre, err := w.cierreRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Error().Str("cierre_id", payload.CierreID).Msg("reporte_worker: cierre not found")
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading cierre: %w", err)
	}
	if cierre.ReportePath != nil {
		log.Debug().Str("cierre_id", payload.CierreID).Msg("reporte_worker: already rendered")
		return nil
	}

	path, err := w.render(cierre, w.storagePath)
	if err != nil {
		return err
	}
	if err := w.cierreRepo.UpdateReportePath(ctx, id, path); err != nil {
		return fmt.Errorf("saving reporte path: %w", err)
	}
	log.Info().Str("pdf", path).Str("cierre_id", payload.CierreID).Msg("reporte_worker: PDF generated")

	if w.destinatario == "" {
		return nil
	}
	job := EmailJobPayload{
		ToEmail: w.destinatario,
		Subject: fmt.Sprintf("Reporte Z — Punto de venta %d — %s", cierre.PuntoDeVenta, cierre.ClosedAt.Format("02/01/2006 15:04")),
		Body:    resumenCierre(cierre),
		PDFPath: path,
	}
	if err := w.emails.EnqueueEmail(ctx, job); err != nil {
		// The PDF is already stored; the email is not worth re-rendering for.
		log.Warn().Err(err).Str("cierre_id", payload.CierreID).Msg("reporte_worker: failed to enqueue email")
	}
	return nil
}

func resumenCierre(c *model.CierreCaja) string {
	s := fmt.Sprintf("Ventas: %d (anuladas %d)\nTotal: %s\nIGTF: %s\nCredito: %s\n",
		c.CantidadVentas, c.CantidadAnuladas, c.TotalVentas.StringFixed(2), c.TotalIGTF.StringFixed(2), c.TotalCredito.StringFixed(2))
	if c.ClasificacionDesvio != nil && c.DesvioPct != nil {
		s += fmt.Sprintf("Desvio: %s%% (%s)\n", c.DesvioPct.StringFixed(2), *c.ClasificacionDesvio)
	}
	return s
}
