package shared

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DocType distinguishes the numbered document families.
type DocType string

const (
	DocTypeBill      DocType = "BILL"
	DocTypeQuotation DocType = "QTN"
	DocTypeOrder     DocType = "ORD"
)

// NumberSource mints a fresh document number on every call. Callers treat
// the result as an opaque unique string; gaps are acceptable.
type NumberSource interface {
	NextNumber(ctx context.Context, docType DocType) (string, error)
}

// SequenceNumberSource issues numbers from the document_sequences table,
// one monotonically increasing counter per document type and month.
type SequenceNumberSource struct {
	pool *pgxpool.Pool
}

// NewSequenceNumberSource constructs a SequenceNumberSource.
func NewSequenceNumberSource(pool *pgxpool.Pool) *SequenceNumberSource {
	return &SequenceNumberSource{pool: pool}
}

// NextNumber mints the next number for docType, e.g. BILL-2608-0042.
func (s *SequenceNumberSource) NextNumber(ctx context.Context, docType DocType) (string, error) {
	now := time.Now()
	period := now.Format("200601")
	var seq int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO document_sequences (doc_type, period, seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (doc_type, period)
		DO UPDATE SET seq = document_sequences.seq + 1
		RETURNING seq
	`, string(docType), period).Scan(&seq)
	if err != nil {
		return "", fmt.Errorf("shared: next number: %w", err)
	}
	return fmt.Sprintf("%s-%s-%04d", docType, now.Format("0601"), seq), nil
}
