package quotations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/partsdesk/partsdesk/internal/shared"
)

// ErrAlreadyResolved means the quotation is no longer pending.
var ErrAlreadyResolved = errors.New("quotations: quotation already resolved")

// OrderSpawner creates the active order an accepted quotation turns into.
// Implemented by the orders service; a port here keeps the packages from
// importing each other.
type OrderSpawner interface {
	SpawnFromQuotation(ctx context.Context, q Quotation, acceptedBy int64) (int64, error)
}

// Service implements the quotation lifecycle.
type Service struct {
	repo     Repository
	numbers  shared.NumberSource
	audit    shared.AuditRecorder
	spawner  OrderSpawner
	validate *validator.Validate
	log      *slog.Logger
}

// NewService wires the quotations service.
func NewService(repo Repository, numbers shared.NumberSource, audit shared.AuditRecorder, spawner OrderSpawner, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		numbers:  numbers,
		audit:    audit,
		spawner:  spawner,
		validate: shared.NewValidator(),
		log:      log,
	}
}

// Create registers a pending quotation with its items.
func (s *Service) Create(ctx context.Context, op shared.Operator, req CreateQuotationRequest) (*Quotation, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	number, err := s.numbers.NextNumber(ctx, shared.DocTypeQuotation)
	if err != nil {
		return nil, fmt.Errorf("quotations: mint number: %w", err)
	}

	total := decimal.Zero
	items := make([]QuotationItem, 0, len(req.Items))
	for i, ir := range req.Items {
		total = total.Add(decimal.NewFromFloat(ir.Price).Mul(decimal.NewFromInt(int64(ir.Quantity))))
		items = append(items, QuotationItem{
			ProductID: ir.ProductID,
			Name:      ir.Name,
			Quantity:  ir.Quantity,
			Price:     ir.Price,
			LineOrder: i + 1,
		})
	}

	q := Quotation{
		QuotationNumber: number,
		CustomerName:    req.CustomerName,
		CustomerPhone:   shared.NormalizePhone(req.CustomerPhone),
		CustomerAddress: req.CustomerAddress,
		Vehicle:         req.Vehicle,
		Status:          StatusPending,
		TotalAmount:     total.Round(2).InexactFloat64(),
		Notes:           req.Notes,
		CreatedBy:       op.ID,
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		id, err := tx.Create(ctx, q)
		if err != nil {
			return err
		}
		q.ID = id
		for i := range items {
			items[i].QuotationID = id
			itemID, err := tx.InsertItem(ctx, items[i])
			if err != nil {
				return err
			}
			items[i].ID = itemID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	q.Items = items

	s.recordAudit(ctx, op, "quotation.created", q.QuotationNumber, map[string]any{
		"quotation_id": q.ID,
		"customer":     q.CustomerName,
		"item_count":   len(q.Items),
	})
	return &q, nil
}

// Get returns one quotation with its items.
func (s *Service) Get(ctx context.Context, id int64) (*Quotation, error) {
	return s.repo.Get(ctx, id)
}

// List returns quotations matching the filter plus the match count.
func (s *Service) List(ctx context.Context, req ListQuotationsRequest) ([]Quotation, int, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, req)
}

// Accept moves a pending quotation to accepted and spawns exactly one
// active order carrying copies of the items. A quotation that already left
// pending is rejected, so repeated accept calls cannot fan out orders.
func (s *Service) Accept(ctx context.Context, op shared.Operator, id int64) (*Quotation, error) {
	q, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if Terminal(q.Status) {
		return nil, fmt.Errorf("%w: %s is %s", ErrAlreadyResolved, q.QuotationNumber, q.Status)
	}

	orderID, err := s.spawner.SpawnFromQuotation(ctx, *q, op.ID)
	if err != nil {
		return nil, fmt.Errorf("quotations: spawn order: %w", err)
	}

	if err := s.repo.Resolve(ctx, id, StatusAccepted, op.ID, &orderID, ""); err != nil {
		if errors.Is(err, ErrNotFound) {
			// Lost the race with another accept or decline. The spawned
			// order is orphaned and needs manual cleanup.
			s.log.Error("quotation resolved concurrently after order spawn",
				slog.Int64("quotation_id", id), slog.Int64("order_id", orderID))
			return nil, ErrAlreadyResolved
		}
		return nil, err
	}

	s.recordAudit(ctx, op, "quotation.accepted", q.QuotationNumber, map[string]any{
		"quotation_id": id,
		"order_id":     orderID,
	})
	return s.repo.Get(ctx, id)
}

// Decline moves a pending quotation to declined.
func (s *Service) Decline(ctx context.Context, op shared.Operator, id int64, req DeclineQuotationRequest) (*Quotation, error) {
	q, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if Terminal(q.Status) {
		return nil, fmt.Errorf("%w: %s is %s", ErrAlreadyResolved, q.QuotationNumber, q.Status)
	}

	if err := s.repo.Resolve(ctx, id, StatusDeclined, op.ID, nil, req.Reason); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrAlreadyResolved
		}
		return nil, err
	}

	s.recordAudit(ctx, op, "quotation.declined", q.QuotationNumber, map[string]any{
		"quotation_id": id,
		"reason":       req.Reason,
	})
	return s.repo.Get(ctx, id)
}

// Delete removes a quotation. Administrators only.
func (s *Service) Delete(ctx context.Context, op shared.Operator, id int64) error {
	if !op.Admin {
		return shared.ErrForbidden
	}
	q, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, op, "quotation.deleted", q.QuotationNumber, map[string]any{"quotation_id": id})
	return nil
}

func (s *Service) recordAudit(ctx context.Context, op shared.Operator, action, number string, meta map[string]any) {
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  op.ID,
		Action:   action,
		Entity:   "quotation",
		EntityID: number,
		Meta:     meta,
	}); err != nil {
		s.log.Warn("audit record failed", slog.String("action", action), slog.Any("error", err))
	}
}
