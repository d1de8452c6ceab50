package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

// DocumentGenerator renders and stores the invoice for a bill, recording
// the resulting path. Implemented by the billing service.
type DocumentGenerator interface {
	GenerateDocument(ctx context.Context, billID int64) (string, error)
}

// NewInvoiceDocumentHandler processes TaskTypeInvoiceDocument tasks.
func NewInvoiceDocumentHandler(gen DocumentGenerator, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload InvoiceDocumentPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		path, err := gen.GenerateDocument(ctx, payload.BillID)
		if err != nil {
			logger.Error("invoice document job failed",
				slog.Int64("bill_id", payload.BillID), slog.Any("error", err))
			return err
		}
		logger.Info("invoice document stored",
			slog.Int64("bill_id", payload.BillID), slog.String("path", path))
		return nil
	}
}
