package catalog

import (
	"context"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/partsdesk/partsdesk/internal/shared"
)

// Service implements product catalog maintenance.
type Service struct {
	repo     Repository
	audit    shared.AuditRecorder
	validate *validator.Validate
	log      *slog.Logger
}

// NewService wires the catalog service.
func NewService(repo Repository, audit shared.AuditRecorder, log *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, validate: shared.NewValidator(), log: log}
}

// Create registers a new product.
func (s *Service) Create(ctx context.Context, op shared.Operator, req CreateProductRequest) (*Product, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	p := Product{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		HSNCode:     req.HSNCode,
		Price:       req.Price,
		Stock:       req.Stock,
		Location:    req.Location,
	}
	id, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, op, "product.created", p.Code, map[string]any{"product_id": id})
	return s.repo.Get(ctx, id)
}

// Update replaces the editable fields of a product.
func (s *Service) Update(ctx context.Context, op shared.Operator, id int64, req UpdateProductRequest) (*Product, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	p := Product{
		ID:          id,
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		HSNCode:     req.HSNCode,
		Price:       req.Price,
		Stock:       req.Stock,
		Location:    req.Location,
		Flagged:     req.Flagged,
		FlagNote:    req.FlagNote,
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, op, "product.updated", p.Code, map[string]any{"product_id": id})
	return s.repo.Get(ctx, id)
}

// Get returns one product by ID.
func (s *Service) Get(ctx context.Context, id int64) (*Product, error) {
	return s.repo.Get(ctx, id)
}

// GetByCode returns one product by its QR code value.
func (s *Service) GetByCode(ctx context.Context, code string) (*Product, error) {
	return s.repo.GetByCode(ctx, code)
}

// List returns products matching the filter plus the match count.
func (s *Service) List(ctx context.Context, req ListProductsRequest) ([]Product, int, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, req)
}

// Delete removes a product. Administrators only.
func (s *Service) Delete(ctx context.Context, op shared.Operator, id int64) error {
	if !op.Admin {
		return shared.ErrForbidden
	}
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, op, "product.deleted", p.Code, map[string]any{"product_id": id})
	return nil
}

func (s *Service) recordAudit(ctx context.Context, op shared.Operator, action, code string, meta map[string]any) {
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  op.ID,
		Action:   action,
		Entity:   "product",
		EntityID: code,
		Meta:     meta,
	}); err != nil {
		s.log.Warn("audit record failed", slog.String("action", action), slog.Any("error", err))
	}
}
