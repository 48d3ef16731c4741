package worker

// email_worker.go
// Processes email jobs from QueueEmail.
// Sends the Z report PDF to the configured address via SMTP.

import (
	"context"
	"encoding/json"
	"errors"

	"blendcaja/internal/infra"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	PDFPath string `json:"pdf_path"`
}

// reporteMailer is the part of infra.Mailer the worker uses.
type reporteMailer interface {
	SendReporteCierre(to, subject, body, pdfPath string) error
}

// EmailWorker processes email jobs from QueueEmail.
type EmailWorker struct {
	mailer reporteMailer
}

// NewEmailWorker creates an EmailWorker with the provided SMTP mailer.
func NewEmailWorker(mailer reporteMailer) *EmailWorker {
	return &EmailWorker{mailer: mailer}
}

// Process sends an email with the PDF report as attachment.
func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return nil
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("email_worker: empty to_email, skipping")
		return nil
	}

	if err := w.mailer.SendReporteCierre(payload.ToEmail, payload.Subject, payload.Body, payload.PDFPath); err != nil {
		if errors.Is(err, infra.ErrCircuitOpen) {
			log.Warn().Str("to", payload.ToEmail).Msg("email_worker: smtp circuit open")
		}
		return err
	}
	log.Info().Str("to", payload.ToEmail).Msg("email_worker: reporte de cierre sent")
	return nil
}
