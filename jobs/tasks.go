package jobs

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeInvoiceDocument renders and stores the PDF for a saved bill.
	TaskTypeInvoiceDocument = "invoice:document"
)

// InvoiceDocumentPayload identifies the bill to render.
type InvoiceDocumentPayload struct {
	BillID int64 `json:"bill_id"`
}

// NewInvoiceDocumentTask constructs an Asynq task.
func NewInvoiceDocumentTask(payload InvoiceDocumentPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeInvoiceDocument, data, asynq.Queue(QueueDefault)), nil
}

// Client submits jobs to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) (*Client, error) {
	client := asynq.NewClient(redisOpts)
	return &Client{client: client}, nil
}

// EnqueueInvoiceDocument enqueues rendering of the invoice for a bill.
func (c *Client) EnqueueInvoiceDocument(ctx context.Context, billID int64) error {
	task, err := NewInvoiceDocumentTask(InvoiceDocumentPayload{BillID: billID})
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault), asynq.MaxRetry(5))
	return err
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
