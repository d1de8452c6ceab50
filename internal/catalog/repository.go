package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound indicates a missing product.
	ErrNotFound = errors.New("catalog: product not found")
	// ErrDuplicateCode indicates the QR code value is already taken.
	ErrDuplicateCode = errors.New("catalog: product code already exists")
)

// Repository persists products.
type Repository interface {
	Create(ctx context.Context, p Product) (int64, error)
	Update(ctx context.Context, p Product) error
	Get(ctx context.Context, id int64) (*Product, error)
	GetByCode(ctx context.Context, code string) (*Product, error)
	List(ctx context.Context, req ListProductsRequest) ([]Product, int, error)
	SetStock(ctx context.Context, id int64, stock int) error
	SetLocation(ctx context.Context, id int64, location string) error
	// SetFlagged stores the note alongside the flag; unflagging clears it.
	SetFlagged(ctx context.Context, id int64, flagged bool, note string) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const productColumns = `id, code, name, description, hsn_code, price, stock, location, flagged, flag_note, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Description, &p.HSNCode, &p.Price,
		&p.Stock, &p.Location, &p.Flagged, &p.FlagNote, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("catalog: scan product: %w", err)
	}
	return &p, nil
}

func (r *repository) Create(ctx context.Context, p Product) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO products (code, name, description, hsn_code, price, stock, location, flagged)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, p.Code, p.Name, p.Description, p.HSNCode, p.Price, p.Stock, p.Location, p.Flagged).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicateCode
		}
		return 0, fmt.Errorf("catalog: create product: %w", err)
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, p Product) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE products
		SET code = $1, name = $2, description = $3, hsn_code = $4, price = $5,
		    stock = $6, location = $7, flagged = $8, flag_note = $9, updated_at = NOW()
		WHERE id = $10
	`, p.Code, p.Name, p.Description, p.HSNCode, p.Price, p.Stock, p.Location, p.Flagged, p.FlagNote, p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateCode
		}
		return fmt.Errorf("catalog: update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Product, error) {
	return scanProduct(r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns), id))
}

func (r *repository) GetByCode(ctx context.Context, code string) (*Product, error) {
	return scanProduct(r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM products WHERE code = $1`, productColumns), code))
}

func (r *repository) List(ctx context.Context, req ListProductsRequest) ([]Product, int, error) {
	where := "WHERE TRUE"
	var args []interface{}
	argPos := 1
	if req.Search != "" {
		where += fmt.Sprintf(" AND (name ILIKE $%d OR code ILIKE $%d)", argPos, argPos)
		args = append(args, "%"+req.Search+"%")
		argPos++
	}
	if req.Location != "" {
		where += fmt.Sprintf(" AND location = $%d", argPos)
		args = append(args, req.Location)
		argPos++
	}
	if req.Flagged != nil {
		where += fmt.Sprintf(" AND flagged = $%d", argPos)
		args = append(args, *req.Flagged)
		argPos++
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM products "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("catalog: count products: %w", err)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT %s FROM products %s ORDER BY name LIMIT $%d OFFSET $%d`,
		productColumns, where, argPos, argPos+1)
	args = append(args, limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("catalog: list products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.Description, &p.HSNCode, &p.Price,
			&p.Stock, &p.Location, &p.Flagged, &p.FlagNote, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("catalog: scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

func (r *repository) SetStock(ctx context.Context, id int64, stock int) error {
	return r.setColumn(ctx, id, `UPDATE products SET stock = $1, updated_at = NOW() WHERE id = $2`, stock)
}

func (r *repository) SetLocation(ctx context.Context, id int64, location string) error {
	return r.setColumn(ctx, id, `UPDATE products SET location = $1, updated_at = NOW() WHERE id = $2`, location)
}

func (r *repository) SetFlagged(ctx context.Context, id int64, flagged bool, note string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET flagged = $1, flag_note = $2, updated_at = NOW() WHERE id = $3`,
		flagged, note, id)
	if err != nil {
		return fmt.Errorf("catalog: update product flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) setColumn(ctx context.Context, id int64, query string, value interface{}) error {
	tag, err := r.pool.Exec(ctx, query, value, id)
	if err != nil {
		return fmt.Errorf("catalog: update product column: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("catalog: delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
