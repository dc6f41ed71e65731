package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"lifeline/pkg/platform/audit/store/postgres"
)

// Outbox is the relay view of the audit outbox.
type Outbox interface {
	FetchUnpublished(ctx context.Context, limit int) ([]postgres.Entry, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

// Producer delivers one message to the broker.
type Producer interface {
	Produce(ctx context.Context, key string, value []byte) error
}

// Worker drains the audit outbox to the broker on an interval. Rows are
// marked published only after the broker acknowledged them, so delivery is
// at-least-once.
type Worker struct {
	outbox    Outbox
	producer  Producer
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
}

func NewWorker(outbox Outbox, producer Producer, logger *slog.Logger, interval time.Duration) *Worker {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Worker{outbox: outbox, producer: producer, logger: logger, interval: interval, batchSize: 100}
}

// Run relays until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.RelayOnce(ctx); err != nil {
				w.logger.WarnContext(ctx, "audit outbox relay failed", "error", err)
			}
		}
	}
}

// RelayOnce publishes one batch and returns how many rows were marked.
func (w *Worker) RelayOnce(ctx context.Context) (int, error) {
	entries, err := w.outbox.FetchUnpublished(ctx, w.batchSize)
	if err != nil {
		return 0, err
	}
	done := make([]uuid.UUID, 0, len(entries))
	var produceErr error
	for _, e := range entries {
		if err := w.producer.Produce(ctx, e.Key, e.Payload); err != nil {
			produceErr = err
			break
		}
		done = append(done, e.ID)
	}
	if err := w.outbox.MarkPublished(ctx, done, time.Now()); err != nil {
		return 0, err
	}
	return len(done), produceErr
}
