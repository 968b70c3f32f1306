package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"housebudget/internal/amqp"
	"housebudget/internal/extract"
	"housebudget/internal/services"
)

// StatementImporter extracts and stores the rows found in a statement.
type StatementImporter interface {
	ExtractStatement(ctx context.Context, source, text string) (services.ImportReport, error)
}

// ExtractionWorker handles statement jobs delivered over AMQP
type ExtractionWorker struct {
	importer   StatementImporter
	jobTimeout time.Duration

	processed atomic.Int64
	stored    atomic.Int64
	dropped   atomic.Int64
}

func NewExtractionWorker(importer StatementImporter, jobTimeout time.Duration) *ExtractionWorker {
	if jobTimeout <= 0 {
		jobTimeout = 2 * time.Minute
	}
	return &ExtractionWorker{importer: importer, jobTimeout: jobTimeout}
}

// HandleExtraction processes one job. Unusable assistant output counts as
// an empty result and is not retried; transport and store failures are
// returned so the delivery can be requeued. A failed batch whose rows could
// not all be rolled back is logged and not retried.
func (w *ExtractionWorker) HandleExtraction(ctx context.Context, msg *amqp.ExtractionMessage) error {
	ctx, cancel := context.WithTimeout(ctx, w.jobTimeout)
	defer cancel()

	start := time.Now()
	slog.InfoContext(ctx, "Processing extraction job",
		"job_id", msg.JobID,
		"source", msg.Source,
		"queued_for", start.Sub(msg.Timestamp).Round(time.Millisecond))

	report, err := w.importer.ExtractStatement(ctx, msg.Source, msg.Text)
	w.processed.Add(1)
	w.stored.Add(int64(report.Accepted()))

	if err != nil {
		if errors.Is(err, extract.ErrNotAList) || errors.Is(err, extract.ErrEmptyReply) {
			w.dropped.Add(1)
			slog.WarnContext(ctx, "Assistant output unusable, job yields no rows",
				"job_id", msg.JobID,
				"error", err)
			return nil
		}
		if report.Accepted() > 0 {
			// A retry would store these rows a second time.
			w.dropped.Add(1)
			slog.ErrorContext(ctx, "Extraction job partially stored, not retried",
				"job_id", msg.JobID,
				"ids", report.IDs,
				"error", err)
			return nil
		}
		return err
	}

	slog.InfoContext(ctx, "Extraction job finished",
		"job_id", msg.JobID,
		"accepted", report.Accepted(),
		"rejected", len(report.Rejected),
		"duration", time.Since(start).Round(time.Millisecond))
	return nil
}

// Stats reports jobs handled, rows stored and jobs dropped since start.
func (w *ExtractionWorker) Stats() (processed, stored, dropped int64) {
	return w.processed.Load(), w.stored.Load(), w.dropped.Load()
}
