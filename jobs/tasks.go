package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/mycoledger/mycoledger/internal/documents"
	jobmetrics "github.com/mycoledger/mycoledger/internal/jobs"
	"github.com/mycoledger/mycoledger/internal/platform/httpx"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDocumentEmail renders a sales document and mails it.
	TaskDocumentEmail = "documents:email"
)

// DocumentEmailPayload identifies the document and its recipient.
type DocumentEmailPayload struct {
	SaleID string `json:"sale_id"`
	Type   string `json:"type"`
	To     string `json:"to"`
}

// NewDocumentEmailTask constructs an Asynq task.
func NewDocumentEmailTask(payload DocumentEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDocumentEmail, data,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(5),
		asynq.Timeout(time.Minute)), nil
}

// DocumentDeliverer renders and sends one document.
type DocumentDeliverer interface {
	Deliver(ctx context.Context, saleID string, docType documents.DocumentType, to string) error
}

// DocumentEmailJob handles TaskDocumentEmail.
type DocumentEmailJob struct {
	documents DocumentDeliverer
	metrics   *jobmetrics.Metrics
	logger    *slog.Logger
}

// NewDocumentEmailJob wires the job dependencies.
func NewDocumentEmailJob(docs DocumentDeliverer, metrics *jobmetrics.Metrics, logger *slog.Logger) *DocumentEmailJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentEmailJob{documents: docs, metrics: metrics, logger: logger}
}

// Handle processes one task. Malformed payloads and documents that can never be
// produced are not retried.
func (j *DocumentEmailJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	tracker := j.metrics.Track(TaskDocumentEmail)
	defer func() { err = tracker.End(err) }()

	var payload DocumentEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}
	docType, err := documents.ParseType(payload.Type)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if err := j.documents.Deliver(ctx, payload.SaleID, docType, payload.To); err != nil {
		if errors.Is(err, documents.ErrNotViewable) || errors.Is(err, httpx.ErrNotFound) {
			j.logger.Warn("drop document email", slog.String("sale_id", payload.SaleID), slog.Any("error", err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}
	j.metrics.AddDelivery(string(docType))
	return nil
}
