package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/partsdesk/partsdesk/internal/platform/db"
)

var (
	// ErrNotFound indicates a missing order.
	ErrNotFound = errors.New("orders: order not found")
	// ErrItemNotFound indicates a missing order item.
	ErrItemNotFound = errors.New("orders: order item not found")
)

// Repository persists active orders and their items.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Create(ctx context.Context, o ActiveOrder) (int64, error)
	InsertItem(ctx context.Context, item OrderItem) (int64, error)
	Get(ctx context.Context, id int64) (*ActiveOrder, error)
	List(ctx context.Context, req ListOrdersRequest) ([]ActiveOrder, int, error)
	UpdateStatus(ctx context.Context, id int64, status OrderStatus) error
	SetItemPicked(ctx context.Context, orderID, itemID int64, picked bool, pickedBy *int64, pickedAt *time.Time) error
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

func (r *repository) Create(ctx context.Context, o ActiveOrder) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO active_orders (order_number, quotation_id, customer_name, customer_phone,
		                           customer_address, status, total_amount, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, o.OrderNumber, o.QuotationID, o.CustomerName, o.CustomerPhone,
		o.CustomerAddress, string(o.Status), o.TotalAmount, o.Notes, o.CreatedBy).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("orders: create: %w", err)
	}
	return id, nil
}

func (r *repository) InsertItem(ctx context.Context, item OrderItem) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO order_items (order_id, product_id, name, quantity, price, is_picked, line_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, item.OrderID, item.ProductID, item.Name, item.Quantity, item.Price, item.IsPicked, item.LineOrder).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("orders: insert item: %w", err)
	}
	return id, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*ActiveOrder, error) {
	var o ActiveOrder
	var status string
	err := r.db.QueryRow(ctx, `
		SELECT id, order_number, quotation_id, customer_name, customer_phone, customer_address,
		       status, total_amount, notes, created_by, created_at, updated_at
		FROM active_orders WHERE id = $1
	`, id).Scan(&o.ID, &o.OrderNumber, &o.QuotationID, &o.CustomerName, &o.CustomerPhone,
		&o.CustomerAddress, &status, &o.TotalAmount, &o.Notes, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("orders: get: %w", err)
	}
	o.Status = OrderStatus(status)

	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, product_id, name, quantity, price, is_picked, picked_by, picked_at, line_order
		FROM order_items WHERE order_id = $1 ORDER BY line_order, id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("orders: get items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Name, &item.Quantity,
			&item.Price, &item.IsPicked, &item.PickedBy, &item.PickedAt, &item.LineOrder); err != nil {
			return nil, fmt.Errorf("orders: scan item: %w", err)
		}
		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) List(ctx context.Context, req ListOrdersRequest) ([]ActiveOrder, int, error) {
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
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM active_orders "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("orders: count: %w", err)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`
		SELECT id, order_number, quotation_id, customer_name, customer_phone, customer_address,
		       status, total_amount, notes, created_by, created_at, updated_at
		FROM active_orders
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, where, argPos, argPos+1)
	args = append(args, limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("orders: list: %w", err)
	}
	defer rows.Close()

	var out []ActiveOrder
	for rows.Next() {
		var o ActiveOrder
		var status string
		if err := rows.Scan(&o.ID, &o.OrderNumber, &o.QuotationID, &o.CustomerName, &o.CustomerPhone,
			&o.CustomerAddress, &status, &o.TotalAmount, &o.Notes, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("orders: scan: %w", err)
		}
		o.Status = OrderStatus(status)
		out = append(out, o)
	}
	return out, total, rows.Err()
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status OrderStatus) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE active_orders SET status = $1, updated_at = NOW() WHERE id = $2
	`, string(status), id)
	if err != nil {
		return fmt.Errorf("orders: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) SetItemPicked(ctx context.Context, orderID, itemID int64, picked bool, pickedBy *int64, pickedAt *time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE order_items SET is_picked = $1, picked_by = $2, picked_at = $3
		WHERE id = $4 AND order_id = $5
	`, picked, pickedBy, pickedAt, itemID, orderID)
	if err != nil {
		return fmt.Errorf("orders: set item picked: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM active_orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("orders: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
