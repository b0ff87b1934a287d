package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"

	"github.com/mycoledger/mycoledger/internal/documents"
)

// dedupWindow suppresses repeat sends of the same document to the same address.
const dedupWindow = 10 * time.Minute

// Client submits jobs to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) (*Client, error) {
	return &Client{client: asynq.NewClient(redisOpts)}, nil
}

// EnqueueDocumentEmail queues delivery of a sales document. A duplicate
// request inside dedupWindow is accepted without enqueueing again.
func (c *Client) EnqueueDocumentEmail(ctx context.Context, saleID string, docType documents.DocumentType, to string) error {
	task, err := NewDocumentEmailTask(DocumentEmailPayload{SaleID: saleID, Type: string(docType), To: to})
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.Unique(dedupWindow))
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	return err
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
