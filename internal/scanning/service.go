package scanning

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/partsdesk/partsdesk/internal/catalog"
)

// ProductPort is the slice of the catalog the scanner needs.
type ProductPort interface {
	Get(ctx context.Context, id int64) (*catalog.Product, error)
	GetByCode(ctx context.Context, code string) (*catalog.Product, error)
	SetStock(ctx context.Context, id int64, stock int) error
	SetLocation(ctx context.Context, id int64, location string) error
	SetFlagged(ctx context.Context, id int64, flagged bool, note string) error
}

// ScanRequest describes one scan event. Payload takes precedence over
// ProductID when both are present. Quantity is the magnitude for sold and
// stock_up and the signed delta for custom_adjust.
type ScanRequest struct {
	Payload     string     `json:"payload,omitempty"`
	ProductID   int64      `json:"product_id,omitempty"`
	Action      ScanAction `json:"action"`
	Quantity    int        `json:"quantity,omitempty"`
	NewLocation string     `json:"new_location,omitempty"`
	Note        string     `json:"note,omitempty"`
}

// ScanResult carries the product state after the scan plus the history row
// that recorded it.
type ScanResult struct {
	Product *catalog.Product `json:"product"`
	Record  ScanRecord       `json:"record"`
}

// Service applies scan actions to products and appends their history.
type Service struct {
	products ProductPort
	history  HistoryRepository
	log      *slog.Logger
}

// NewService wires the scanning service.
func NewService(products ProductPort, history HistoryRepository, log *slog.Logger) *Service {
	return &Service{products: products, history: history, log: log}
}

// Resolve looks up the product a scanned label refers to. The database row
// wins over the snapshot printed in the label.
func (s *Service) Resolve(ctx context.Context, rawPayload string) (*catalog.Product, error) {
	payload, err := ParseQRPayload(rawPayload)
	if err != nil {
		return nil, err
	}
	return s.lookup(ctx, payload)
}

func (s *Service) lookup(ctx context.Context, payload QRPayload) (*catalog.Product, error) {
	if payload.ID != 0 {
		p, err := s.products.Get(ctx, payload.ID)
		if err == nil {
			return p, nil
		}
		if payload.Code == "" {
			return nil, err
		}
		// Stale label after a re-import: fall through to the code.
	}
	return s.products.GetByCode(ctx, payload.Code)
}

// Scan applies one action. The product row is always re-read first so the
// mutation works from current stock, not the label's print-time snapshot.
// The history append happens after the product update and is not rolled
// back on failure; a missed history row is preferable to a lost sale.
func (s *Service) Scan(ctx context.Context, operatorID int64, req ScanRequest) (*ScanResult, error) {
	if !ValidAction(req.Action) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAction, req.Action)
	}

	product, err := s.resolveRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	rec := ScanRecord{
		ProductID:  product.ID,
		Action:     req.Action,
		OldStock:   product.Stock,
		StockAfter: product.Stock,
		Location:   product.Location,
		Note:       req.Note,
		OperatorID: operatorID,
	}

	switch req.Action {
	case ActionView:
		// Read-only scan, recorded for the trail but mutates nothing.

	case ActionSold:
		qty := req.Quantity
		if qty <= 0 {
			qty = 1
		}
		newStock := product.Stock - qty
		if newStock < 0 {
			newStock = 0
		}
		if err := s.products.SetStock(ctx, product.ID, newStock); err != nil {
			return nil, err
		}
		product.Stock = newStock
		rec.QtyChange = -qty
		rec.StockAfter = newStock

	case ActionStockUp:
		if req.Quantity <= 0 {
			return nil, fmt.Errorf("%w: stock_up needs a positive quantity", ErrInvalidAction)
		}
		newStock := product.Stock + req.Quantity
		if err := s.products.SetStock(ctx, product.ID, newStock); err != nil {
			return nil, err
		}
		product.Stock = newStock
		rec.QtyChange = req.Quantity
		rec.StockAfter = newStock

	case ActionCustomAdjust:
		if req.Quantity == 0 {
			return nil, fmt.Errorf("%w: custom_adjust needs a non-zero quantity", ErrInvalidAction)
		}
		newStock := product.Stock + req.Quantity
		if newStock < 0 {
			newStock = 0
		}
		if err := s.products.SetStock(ctx, product.ID, newStock); err != nil {
			return nil, err
		}
		product.Stock = newStock
		// The trail classifies a manual adjustment by its direction.
		if req.Quantity > 0 {
			rec.Action = ActionStockUp
		} else {
			rec.Action = ActionSold
		}
		rec.QtyChange = req.Quantity
		rec.StockAfter = newStock

	case ActionRelocate:
		if req.NewLocation == "" {
			return nil, fmt.Errorf("%w: location_change needs a new location", ErrInvalidAction)
		}
		if req.NewLocation == product.Location {
			return nil, ErrSameLocation
		}
		from := product.Location
		if err := s.products.SetLocation(ctx, product.ID, req.NewLocation); err != nil {
			return nil, err
		}
		product.Location = req.NewLocation
		rec.Location = req.NewLocation
		if _, err := s.history.AppendMove(ctx, LocationMove{
			ProductID:    product.ID,
			FromLocation: from,
			ToLocation:   req.NewLocation,
			OperatorID:   operatorID,
		}); err != nil {
			s.log.Warn("location history append failed",
				slog.Int64("product_id", product.ID), slog.Any("error", err))
		}

	case ActionFlag, ActionUnflag:
		flagged := req.Action == ActionFlag
		note := ""
		if flagged {
			note = req.Note
		}
		if err := s.products.SetFlagged(ctx, product.ID, flagged, note); err != nil {
			return nil, err
		}
		product.Flagged = flagged
		product.FlagNote = note
	}

	id, err := s.history.AppendScan(ctx, rec)
	if err != nil {
		s.log.Warn("scan history append failed",
			slog.Int64("product_id", product.ID), slog.String("action", string(req.Action)),
			slog.Any("error", err))
	} else {
		rec.ID = id
	}

	return &ScanResult{Product: product, Record: rec}, nil
}

func (s *Service) resolveRequest(ctx context.Context, req ScanRequest) (*catalog.Product, error) {
	if req.Payload != "" {
		return s.Resolve(ctx, req.Payload)
	}
	if req.ProductID != 0 {
		return s.products.Get(ctx, req.ProductID)
	}
	return nil, fmt.Errorf("%w: no payload or product_id", ErrBadPayload)
}

// History returns the most recent scan rows for a product.
func (s *Service) History(ctx context.Context, productID int64, limit int) ([]ScanRecord, error) {
	if _, err := s.products.Get(ctx, productID); err != nil {
		return nil, err
	}
	return s.history.ListScans(ctx, productID, limit)
}

// LocationHistory returns the most recent relocation rows for a product.
func (s *Service) LocationHistory(ctx context.Context, productID int64, limit int) ([]LocationMove, error) {
	if _, err := s.products.Get(ctx, productID); err != nil {
		return nil, err
	}
	return s.history.ListMoves(ctx, productID, limit)
}
