package quotations

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/partsdesk/partsdesk/internal/platform/db"
)

// ErrNotFound indicates a missing quotation.
var ErrNotFound = errors.New("quotations: quotation not found")

// Repository persists quotations and their items.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Create(ctx context.Context, q Quotation) (int64, error)
	InsertItem(ctx context.Context, item QuotationItem) (int64, error)
	Get(ctx context.Context, id int64) (*Quotation, error)
	List(ctx context.Context, req ListQuotationsRequest) ([]Quotation, int, error)
	// Resolve moves a pending quotation to a terminal status. It reports
	// ErrNotFound when the row is missing or no longer pending, which makes
	// double-acceptance impossible.
	Resolve(ctx context.Context, id int64, status QuotationStatus, resolvedBy int64, orderID *int64, reason string) error
	Delete(ctx context.Context, id int64) error
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

func (r *repository) Create(ctx context.Context, q Quotation) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO quotations (quotation_number, customer_name, customer_phone, customer_address,
		                        vehicle, status, total_amount, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, q.QuotationNumber, q.CustomerName, q.CustomerPhone, q.CustomerAddress,
		q.Vehicle, string(q.Status), q.TotalAmount, q.Notes, q.CreatedBy).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("quotations: create: %w", err)
	}
	return id, nil
}

func (r *repository) InsertItem(ctx context.Context, item QuotationItem) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO quotation_items (quotation_id, product_id, name, quantity, price, line_order)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, item.QuotationID, item.ProductID, item.Name, item.Quantity, item.Price, item.LineOrder).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("quotations: insert item: %w", err)
	}
	return id, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Quotation, error) {
	var q Quotation
	var status string
	err := r.db.QueryRow(ctx, `
		SELECT id, quotation_number, customer_name, customer_phone, customer_address,
		       vehicle, status, total_amount, notes, order_id, decline_reason,
		       created_by, resolved_by, resolved_at, created_at, updated_at
		FROM quotations WHERE id = $1
	`, id).Scan(&q.ID, &q.QuotationNumber, &q.CustomerName, &q.CustomerPhone, &q.CustomerAddress,
		&q.Vehicle, &status, &q.TotalAmount, &q.Notes, &q.OrderID, &q.DeclineReason,
		&q.CreatedBy, &q.ResolvedBy, &q.ResolvedAt, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("quotations: get: %w", err)
	}
	q.Status = QuotationStatus(status)

	rows, err := r.db.Query(ctx, `
		SELECT id, quotation_id, product_id, name, quantity, price, line_order
		FROM quotation_items WHERE quotation_id = $1 ORDER BY line_order, id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("quotations: get items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var item QuotationItem
		if err := rows.Scan(&item.ID, &item.QuotationID, &item.ProductID, &item.Name,
			&item.Quantity, &item.Price, &item.LineOrder); err != nil {
			return nil, fmt.Errorf("quotations: scan item: %w", err)
		}
		q.Items = append(q.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *repository) List(ctx context.Context, req ListQuotationsRequest) ([]Quotation, int, error) {
	where := "WHERE TRUE"
	var args []interface{}
	argPos := 1
	if req.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, string(req.Status))
		argPos++
	}
	if req.Customer != "" {
		where += fmt.Sprintf(" AND customer_name ILIKE $%d", argPos)
		args = append(args, "%"+req.Customer+"%")
		argPos++
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM quotations "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("quotations: count: %w", err)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`
		SELECT id, quotation_number, customer_name, customer_phone, customer_address,
		       vehicle, status, total_amount, notes, order_id, decline_reason,
		       created_by, resolved_by, resolved_at, created_at, updated_at
		FROM quotations
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, where, argPos, argPos+1)
	args = append(args, limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("quotations: list: %w", err)
	}
	defer rows.Close()

	var out []Quotation
	for rows.Next() {
		var q Quotation
		var status string
		if err := rows.Scan(&q.ID, &q.QuotationNumber, &q.CustomerName, &q.CustomerPhone,
			&q.CustomerAddress, &q.Vehicle, &status, &q.TotalAmount, &q.Notes, &q.OrderID, &q.DeclineReason,
			&q.CreatedBy, &q.ResolvedBy, &q.ResolvedAt, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("quotations: scan: %w", err)
		}
		q.Status = QuotationStatus(status)
		out = append(out, q)
	}
	return out, total, rows.Err()
}

func (r *repository) Resolve(ctx context.Context, id int64, status QuotationStatus, resolvedBy int64, orderID *int64, reason string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE quotations
		SET status = $1, resolved_by = $2, resolved_at = NOW(), order_id = $3,
		    decline_reason = $4, updated_at = NOW()
		WHERE id = $5 AND status = 'pending'
	`, string(status), resolvedBy, orderID, reason, id)
	if err != nil {
		return fmt.Errorf("quotations: resolve: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM quotations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("quotations: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
