package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/partsdesk/partsdesk/internal/platform/db"
)

// ErrNotFound indicates a missing bill.
var ErrNotFound = errors.New("billing: bill not found")

// Repository persists bills, lines and payments.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	CreateBill(ctx context.Context, bill Bill) (int64, error)
	InsertLine(ctx context.Context, line BillLineItem) (int64, error)
	Get(ctx context.Context, id int64) (*Bill, error)
	List(ctx context.Context, req ListBillsRequest) ([]Bill, int, error)
	Delete(ctx context.Context, id int64) error
	InsertPayment(ctx context.Context, payment BillPayment) (int64, error)
	ListPayments(ctx context.Context, billID int64) ([]BillPayment, error)
	UpdateRemaining(ctx context.Context, billID int64, remaining float64) error
	SetDocumentPath(ctx context.Context, billID int64, path string) error
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

func (r *repository) CreateBill(ctx context.Context, b Bill) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO bills (bill_number, bill_date, party_name, party_address, party_gstin,
		                   party_phone, place_of_supply, subtotal, cgst_amount, sgst_amount,
		                   total_amount, remaining_amount, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`, b.BillNumber, b.BillDate, b.PartyName, b.PartyAddress, b.PartyGSTIN,
		b.PartyPhone, b.PlaceOfSupply, b.Subtotal, b.CGSTAmount, b.SGSTAmount,
		b.TotalAmount, b.RemainingAmount, b.CreatedBy).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("billing: create bill: %w", err)
	}
	return id, nil
}

func (r *repository) InsertLine(ctx context.Context, line BillLineItem) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO bill_line_items (bill_id, description, hsn_code, quantity, unit, rate,
		                             taxable_value, cgst_rate, sgst_rate, cgst_amount,
		                             sgst_amount, total_amount, line_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`, line.BillID, line.Description, line.HSNCode, line.Quantity, string(line.Unit), line.Rate,
		line.TaxableValue, line.CGSTRate, line.SGSTRate, line.CGSTAmount,
		line.SGSTAmount, line.TotalAmount, line.LineOrder).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("billing: insert line: %w", err)
	}
	return id, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Bill, error) {
	var b Bill
	err := r.db.QueryRow(ctx, `
		SELECT id, bill_number, bill_date, party_name, party_address, party_gstin,
		       party_phone, place_of_supply, subtotal, cgst_amount, sgst_amount,
		       total_amount, remaining_amount, document_path, created_by, created_at
		FROM bills WHERE id = $1
	`, id).Scan(&b.ID, &b.BillNumber, &b.BillDate, &b.PartyName, &b.PartyAddress, &b.PartyGSTIN,
		&b.PartyPhone, &b.PlaceOfSupply, &b.Subtotal, &b.CGSTAmount, &b.SGSTAmount,
		&b.TotalAmount, &b.RemainingAmount, &b.DocumentPath, &b.CreatedBy, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("billing: get bill: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, bill_id, description, hsn_code, quantity, unit, rate, taxable_value,
		       cgst_rate, sgst_rate, cgst_amount, sgst_amount, total_amount, line_order
		FROM bill_line_items WHERE bill_id = $1 ORDER BY line_order, id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("billing: get lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var line BillLineItem
		var unit string
		if err := rows.Scan(&line.ID, &line.BillID, &line.Description, &line.HSNCode,
			&line.Quantity, &unit, &line.Rate, &line.TaxableValue,
			&line.CGSTRate, &line.SGSTRate, &line.CGSTAmount, &line.SGSTAmount,
			&line.TotalAmount, &line.LineOrder); err != nil {
			return nil, fmt.Errorf("billing: scan line: %w", err)
		}
		line.Unit = Unit(unit)
		b.Lines = append(b.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) List(ctx context.Context, req ListBillsRequest) ([]Bill, int, error) {
	conditions := []string{"TRUE"}
	var args []interface{}
	argPos := 1

	if req.PartyName != nil {
		conditions = append(conditions, fmt.Sprintf("party_name ILIKE $%d", argPos))
		args = append(args, "%"+*req.PartyName+"%")
		argPos++
	}
	if req.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("bill_date >= $%d", argPos))
		args = append(args, *req.DateFrom)
		argPos++
	}
	if req.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("bill_date <= $%d", argPos))
		args = append(args, *req.DateTo)
		argPos++
	}
	if req.Unpaid {
		conditions = append(conditions, "remaining_amount > 0")
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	var total int
	if err := r.db.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM bills %s", whereClause), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("billing: count bills: %w", err)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`
		SELECT id, bill_number, bill_date, party_name, party_address, party_gstin,
		       party_phone, place_of_supply, subtotal, cgst_amount, sgst_amount,
		       total_amount, remaining_amount, document_path, created_by, created_at
		FROM bills
		%s
		ORDER BY bill_date DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argPos, argPos+1)
	args = append(args, limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("billing: list bills: %w", err)
	}
	defer rows.Close()

	var bills []Bill
	for rows.Next() {
		var b Bill
		if err := rows.Scan(&b.ID, &b.BillNumber, &b.BillDate, &b.PartyName, &b.PartyAddress,
			&b.PartyGSTIN, &b.PartyPhone, &b.PlaceOfSupply, &b.Subtotal, &b.CGSTAmount,
			&b.SGSTAmount, &b.TotalAmount, &b.RemainingAmount, &b.DocumentPath,
			&b.CreatedBy, &b.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("billing: scan bill: %w", err)
		}
		bills = append(bills, b)
	}
	return bills, total, rows.Err()
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM bills WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("billing: delete bill: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) InsertPayment(ctx context.Context, p BillPayment) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO bill_payments (bill_id, amount, method, paid_on, note, recorded_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, p.BillID, p.Amount, string(p.Method), p.PaidOn, p.Note, p.RecordedBy).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("billing: insert payment: %w", err)
	}
	return id, nil
}

func (r *repository) ListPayments(ctx context.Context, billID int64) ([]BillPayment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, bill_id, amount, method, paid_on, note, recorded_by, created_at
		FROM bill_payments WHERE bill_id = $1 ORDER BY paid_on, id
	`, billID)
	if err != nil {
		return nil, fmt.Errorf("billing: list payments: %w", err)
	}
	defer rows.Close()

	var payments []BillPayment
	for rows.Next() {
		var p BillPayment
		var method string
		if err := rows.Scan(&p.ID, &p.BillID, &p.Amount, &method, &p.PaidOn, &p.Note,
			&p.RecordedBy, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("billing: scan payment: %w", err)
		}
		p.Method = PaymentMethod(method)
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *repository) UpdateRemaining(ctx context.Context, billID int64, remaining float64) error {
	tag, err := r.db.Exec(ctx, `UPDATE bills SET remaining_amount = $1 WHERE id = $2`, remaining, billID)
	if err != nil {
		return fmt.Errorf("billing: update remaining: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) SetDocumentPath(ctx context.Context, billID int64, path string) error {
	tag, err := r.db.Exec(ctx, `UPDATE bills SET document_path = $1 WHERE id = $2`, path, billID)
	if err != nil {
		return fmt.Errorf("billing: set document path: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
