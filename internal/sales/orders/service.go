package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/partsdesk/partsdesk/internal/sales/quotations"
	"github.com/partsdesk/partsdesk/internal/shared"
)

var (
	// ErrBadTransition means the requested status move goes backwards or
	// targets an unknown status.
	ErrBadTransition = errors.New("orders: invalid status transition")
	// ErrPickingClosed means item pick state can no longer change.
	ErrPickingClosed = errors.New("orders: picking is closed for this order")
)

// Service implements the active order lifecycle.
type Service struct {
	repo     Repository
	numbers  shared.NumberSource
	audit    shared.AuditRecorder
	validate *validator.Validate
	log      *slog.Logger
}

// NewService wires the orders service.
func NewService(repo Repository, numbers shared.NumberSource, audit shared.AuditRecorder, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		numbers:  numbers,
		audit:    audit,
		validate: shared.NewValidator(),
		log:      log,
	}
}

// Create registers a direct order that did not come from a quotation. It
// starts in picking with no item picked.
func (s *Service) Create(ctx context.Context, op shared.Operator, req CreateOrderRequest) (*ActiveOrder, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	items := make([]OrderItem, 0, len(req.Items))
	for i, ir := range req.Items {
		items = append(items, OrderItem{
			ProductID: ir.ProductID,
			Name:      ir.Name,
			Quantity:  ir.Quantity,
			Price:     ir.Price,
			LineOrder: i + 1,
		})
	}
	return s.create(ctx, op.ID, ActiveOrder{
		CustomerName:    req.CustomerName,
		CustomerPhone:   shared.NormalizePhone(req.CustomerPhone),
		CustomerAddress: req.CustomerAddress,
		Notes:           req.Notes,
	}, items)
}

// SpawnFromQuotation creates the order an accepted quotation turns into.
// Every quotation item is copied over unpicked.
func (s *Service) SpawnFromQuotation(ctx context.Context, q quotations.Quotation, acceptedBy int64) (int64, error) {
	items := make([]OrderItem, 0, len(q.Items))
	for i, qi := range q.Items {
		items = append(items, OrderItem{
			ProductID: qi.ProductID,
			Name:      qi.Name,
			Quantity:  qi.Quantity,
			Price:     qi.Price,
			LineOrder: i + 1,
		})
	}
	quotationID := q.ID
	order, err := s.create(ctx, acceptedBy, ActiveOrder{
		QuotationID:     &quotationID,
		CustomerName:    q.CustomerName,
		CustomerPhone:   q.CustomerPhone,
		CustomerAddress: q.CustomerAddress,
		Notes:           q.Notes,
	}, items)
	if err != nil {
		return 0, err
	}
	return order.ID, nil
}

func (s *Service) create(ctx context.Context, createdBy int64, order ActiveOrder, items []OrderItem) (*ActiveOrder, error) {
	number, err := s.numbers.NextNumber(ctx, shared.DocTypeOrder)
	if err != nil {
		return nil, fmt.Errorf("orders: mint number: %w", err)
	}
	order.OrderNumber = number
	order.Status = StatusPicking
	order.CreatedBy = createdBy

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	order.TotalAmount = total.Round(2).InexactFloat64()

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		id, err := tx.Create(ctx, order)
		if err != nil {
			return err
		}
		order.ID = id
		for i := range items {
			items[i].OrderID = id
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
	order.Items = items

	s.recordAudit(ctx, createdBy, "order.created", order.OrderNumber, map[string]any{
		"order_id":     order.ID,
		"quotation_id": order.QuotationID,
		"item_count":   len(items),
	})
	return &order, nil
}

// Get returns one order with its items.
func (s *Service) Get(ctx context.Context, id int64) (*ActiveOrder, error) {
	return s.repo.Get(ctx, id)
}

// List returns orders matching the filter plus the match count.
func (s *Service) List(ctx context.Context, req ListOrdersRequest) ([]ActiveOrder, int, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, req)
}

// SetStatus advances an order. Moves only go forward; jumping over a stage
// is allowed, going back is not.
func (s *Service) SetStatus(ctx context.Context, op shared.Operator, id int64, status OrderStatus) (*ActiveOrder, error) {
	if !ValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrBadTransition, status)
	}
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(order.Status, status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrBadTransition, order.Status, status)
	}
	if status == StatusReady && !order.FullyPicked() {
		s.log.Warn("order marked ready before all items picked",
			slog.String("order", order.OrderNumber),
			slog.Int("picked", order.PickedCount()),
			slog.Int("items", len(order.Items)))
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, op.ID, "order.status_changed", order.OrderNumber, map[string]any{
		"order_id": id,
		"from":     string(order.Status),
		"to":       string(status),
	})
	return s.repo.Get(ctx, id)
}

// PickItem toggles the picked state of one item, stamping who and when.
// Pick state freezes once the order has been dispatched.
func (s *Service) PickItem(ctx context.Context, op shared.Operator, orderID, itemID int64, picked bool) (*ActiveOrder, error) {
	order, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == StatusDispatched || order.Status == StatusCompleted {
		return nil, fmt.Errorf("%w: order is %s", ErrPickingClosed, order.Status)
	}

	var pickedBy *int64
	var pickedAt *time.Time
	if picked {
		now := time.Now()
		pickedBy = &op.ID
		pickedAt = &now
	}
	if err := s.repo.SetItemPicked(ctx, orderID, itemID, picked, pickedBy, pickedAt); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, orderID)
}

// Delete removes an order. Administrators only.
func (s *Service) Delete(ctx context.Context, op shared.Operator, id int64) error {
	if !op.Admin {
		return shared.ErrForbidden
	}
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, op.ID, "order.deleted", order.OrderNumber, map[string]any{"order_id": id})
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action, number string, meta map[string]any) {
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "order",
		EntityID: number,
		Meta:     meta,
	}); err != nil {
		s.log.Warn("audit record failed", slog.String("action", action), slog.Any("error", err))
	}
}
