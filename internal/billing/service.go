package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/partsdesk/partsdesk/internal/shared"
)

var (
	// ErrSaveIncomplete means the bill number was minted but the rows did
	// not all land. The number is burnt; the caller should retry the save.
	ErrSaveIncomplete = errors.New("billing: bill save incomplete")
	// ErrOverpayment means a payment would push the remaining balance
	// below zero.
	ErrOverpayment = errors.New("billing: payment exceeds remaining balance")
)

// DocumentEnqueuer schedules background rendering of the invoice PDF.
type DocumentEnqueuer interface {
	EnqueueInvoiceDocument(ctx context.Context, billID int64) error
}

// DocumentRenderer produces the printable invoice for a bill.
type DocumentRenderer interface {
	RenderInvoice(bill Bill) ([]byte, error)
}

// DocumentStore persists and retrieves rendered documents by path.
type DocumentStore interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
	Open(ctx context.Context, path string) ([]byte, error)
}

// Service implements bill creation, settlement and document retrieval.
type Service struct {
	repo     Repository
	numbers  shared.NumberSource
	audit    shared.AuditRecorder
	enqueuer DocumentEnqueuer
	renderer DocumentRenderer
	store    DocumentStore
	validate *validator.Validate
	log      *slog.Logger

	defaultCGSTRate float64
	defaultSGSTRate float64
}

// NewService wires the billing service.
func NewService(
	repo Repository,
	numbers shared.NumberSource,
	audit shared.AuditRecorder,
	enqueuer DocumentEnqueuer,
	renderer DocumentRenderer,
	store DocumentStore,
	log *slog.Logger,
	defaultCGSTRate, defaultSGSTRate float64,
) *Service {
	return &Service{
		repo:            repo,
		numbers:         numbers,
		audit:           audit,
		enqueuer:        enqueuer,
		renderer:        renderer,
		store:           store,
		validate:        shared.NewValidator(),
		log:             log,
		defaultCGSTRate: defaultCGSTRate,
		defaultSGSTRate: defaultSGSTRate,
	}
}

// Save validates the request, derives all line amounts and totals, mints a
// bill number and persists the header plus lines in one transaction. The
// number is minted outside the transaction, so a failed insert burns it.
func (s *Service) Save(ctx context.Context, op shared.Operator, req CreateBillRequest) (*Bill, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	lines := make([]BillLineItem, 0, len(req.Lines))
	for i, lr := range req.Lines {
		cgstRate := s.defaultCGSTRate
		if lr.CGSTRate != nil {
			cgstRate = *lr.CGSTRate
		}
		sgstRate := s.defaultSGSTRate
		if lr.SGSTRate != nil {
			sgstRate = *lr.SGSTRate
		}
		amounts := ComputeLine(lr.Quantity, lr.Rate, cgstRate, sgstRate)
		lines = append(lines, BillLineItem{
			Description:  lr.Description,
			HSNCode:      lr.HSNCode,
			Quantity:     lr.Quantity,
			Unit:         lr.Unit,
			Rate:         lr.Rate,
			TaxableValue: amounts.TaxableValue,
			CGSTRate:     cgstRate,
			SGSTRate:     sgstRate,
			CGSTAmount:   amounts.CGSTAmount,
			SGSTAmount:   amounts.SGSTAmount,
			TotalAmount:  amounts.TotalAmount,
			LineOrder:    i + 1,
		})
	}

	totals, err := Aggregate(lines)
	if err != nil {
		return nil, err
	}

	number, err := s.numbers.NextNumber(ctx, shared.DocTypeBill)
	if err != nil {
		return nil, fmt.Errorf("billing: mint number: %w", err)
	}

	bill := Bill{
		BillNumber:      number,
		BillDate:        req.BillDate,
		PartyName:       req.PartyName,
		PartyAddress:    req.PartyAddress,
		PartyGSTIN:      req.PartyGSTIN,
		PartyPhone:      shared.NormalizePhone(req.PartyPhone),
		PlaceOfSupply:   req.PlaceOfSupply,
		Subtotal:        totals.Subtotal,
		CGSTAmount:      totals.CGSTAmount,
		SGSTAmount:      totals.SGSTAmount,
		TotalAmount:     totals.Total,
		RemainingAmount: totals.Total,
		CreatedBy:       op.ID,
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		id, err := tx.CreateBill(ctx, bill)
		if err != nil {
			return err
		}
		bill.ID = id
		for i := range lines {
			lines[i].BillID = id
			lineID, err := tx.InsertLine(ctx, lines[i])
			if err != nil {
				return err
			}
			lines[i].ID = lineID
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSaveIncomplete, number, err)
	}
	bill.Lines = lines

	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  op.ID,
		Action:   "bill.created",
		Entity:   "bill",
		EntityID: bill.BillNumber,
		Meta: map[string]any{
			"bill_id":      bill.ID,
			"party_name":   bill.PartyName,
			"total_amount": bill.TotalAmount,
			"line_count":   len(bill.Lines),
		},
	}); err != nil {
		s.log.Warn("audit record failed", slog.String("bill", bill.BillNumber), slog.Any("error", err))
	}

	if s.enqueuer != nil {
		if err := s.enqueuer.EnqueueInvoiceDocument(ctx, bill.ID); err != nil {
			// The invoice can still be produced on demand, so a queue outage
			// does not fail the save.
			s.log.Warn("enqueue invoice document failed", slog.Int64("bill_id", bill.ID), slog.Any("error", err))
		}
	}

	return &bill, nil
}

// Get returns one bill with its lines.
func (s *Service) Get(ctx context.Context, id int64) (*Bill, error) {
	return s.repo.Get(ctx, id)
}

// List returns bills matching the filter plus the unfiltered match count.
func (s *Service) List(ctx context.Context, req ListBillsRequest) ([]Bill, int, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, req)
}

// Delete removes a bill and, via cascade, its lines and payments. Only
// administrators may delete issued invoices.
func (s *Service) Delete(ctx context.Context, op shared.Operator, id int64) error {
	if !op.Admin {
		return shared.ErrForbidden
	}
	bill, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  op.ID,
		Action:   "bill.deleted",
		Entity:   "bill",
		EntityID: bill.BillNumber,
		Meta:     map[string]any{"bill_id": id, "total_amount": bill.TotalAmount},
	}); err != nil {
		s.log.Warn("audit record failed", slog.String("bill", bill.BillNumber), slog.Any("error", err))
	}
	return nil
}

// RecordPayment registers a settlement against the bill and reduces the
// remaining balance. The balance never goes negative.
func (s *Service) RecordPayment(ctx context.Context, op shared.Operator, billID int64, req RecordPaymentRequest) (*BillPayment, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	if req.PaidOn.IsZero() {
		req.PaidOn = time.Now()
	}

	var payment BillPayment
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		bill, err := tx.Get(ctx, billID)
		if err != nil {
			return err
		}
		if req.Amount > bill.RemainingAmount {
			return fmt.Errorf("%w: remaining %.2f, got %.2f", ErrOverpayment, bill.RemainingAmount, req.Amount)
		}
		payment = BillPayment{
			BillID:     billID,
			Amount:     req.Amount,
			Method:     req.Method,
			PaidOn:     req.PaidOn,
			Note:       req.Note,
			RecordedBy: op.ID,
		}
		id, err := tx.InsertPayment(ctx, payment)
		if err != nil {
			return err
		}
		payment.ID = id
		remaining := decimal.NewFromFloat(bill.RemainingAmount).
			Sub(decimal.NewFromFloat(req.Amount)).Round(2)
		return tx.UpdateRemaining(ctx, billID, remaining.InexactFloat64())
	})
	if err != nil {
		return nil, err
	}

	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  op.ID,
		Action:   "bill.payment_recorded",
		Entity:   "bill",
		EntityID: fmt.Sprintf("%d", billID),
		Meta:     map[string]any{"amount": req.Amount, "method": string(req.Method)},
	}); err != nil {
		s.log.Warn("audit record failed", slog.Int64("bill_id", billID), slog.Any("error", err))
	}
	return &payment, nil
}

// Payments lists the settlements recorded against a bill.
func (s *Service) Payments(ctx context.Context, billID int64) ([]BillPayment, error) {
	if _, err := s.repo.Get(ctx, billID); err != nil {
		return nil, err
	}
	return s.repo.ListPayments(ctx, billID)
}

// Document returns the rendered invoice PDF, generating and storing it first
// when the background job has not produced one yet.
func (s *Service) Document(ctx context.Context, billID int64) ([]byte, error) {
	bill, err := s.repo.Get(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill.DocumentPath != nil {
		data, err := s.store.Open(ctx, *bill.DocumentPath)
		if err == nil {
			return data, nil
		}
		s.log.Warn("stored invoice unreadable, regenerating",
			slog.String("path", *bill.DocumentPath), slog.Any("error", err))
	}
	if _, err := s.GenerateDocument(ctx, billID); err != nil {
		return nil, err
	}
	bill, err = s.repo.Get(ctx, billID)
	if err != nil {
		return nil, err
	}
	return s.store.Open(ctx, *bill.DocumentPath)
}

// GenerateDocument renders the invoice, stores it and records the path on
// the bill. Used by both the background worker and the on-demand fallback.
func (s *Service) GenerateDocument(ctx context.Context, billID int64) (string, error) {
	bill, err := s.repo.Get(ctx, billID)
	if err != nil {
		return "", err
	}
	data, err := s.renderer.RenderInvoice(*bill)
	if err != nil {
		return "", fmt.Errorf("billing: render invoice %s: %w", bill.BillNumber, err)
	}
	path, err := s.store.Save(ctx, fmt.Sprintf("%s.pdf", bill.BillNumber), data)
	if err != nil {
		return "", fmt.Errorf("billing: store invoice %s: %w", bill.BillNumber, err)
	}
	if err := s.repo.SetDocumentPath(ctx, billID, path); err != nil {
		return "", err
	}
	return path, nil
}
