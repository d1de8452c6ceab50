package scanning

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// HistoryRepository appends and reads the immutable scan trails. Rows are
// never updated or deleted.
type HistoryRepository interface {
	AppendScan(ctx context.Context, rec ScanRecord) (int64, error)
	AppendMove(ctx context.Context, move LocationMove) (int64, error)
	ListScans(ctx context.Context, productID int64, limit int) ([]ScanRecord, error)
	ListMoves(ctx context.Context, productID int64, limit int) ([]LocationMove, error)
}

type historyRepository struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository constructs the PostgreSQL-backed HistoryRepository.
func NewHistoryRepository(pool *pgxpool.Pool) HistoryRepository {
	return &historyRepository{pool: pool}
}

func (r *historyRepository) AppendScan(ctx context.Context, rec ScanRecord) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO product_scan_history (product_id, action, qty_change, old_stock, stock_after, location, note, operator_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, rec.ProductID, string(rec.Action), rec.QtyChange, rec.OldStock, rec.StockAfter, rec.Location, rec.Note, rec.OperatorID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("scanning: append scan: %w", err)
	}
	return id, nil
}

func (r *historyRepository) AppendMove(ctx context.Context, move LocationMove) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO location_history (product_id, from_location, to_location, operator_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, move.ProductID, move.FromLocation, move.ToLocation, move.OperatorID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("scanning: append move: %w", err)
	}
	return id, nil
}

func (r *historyRepository) ListScans(ctx context.Context, productID int64, limit int) ([]ScanRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, product_id, action, qty_change, old_stock, stock_after, location, note, operator_id, scanned_at
		FROM product_scan_history
		WHERE product_id = $1
		ORDER BY scanned_at DESC, id DESC
		LIMIT $2
	`, productID, limit)
	if err != nil {
		return nil, fmt.Errorf("scanning: list scans: %w", err)
	}
	defer rows.Close()

	var records []ScanRecord
	for rows.Next() {
		var rec ScanRecord
		var action string
		if err := rows.Scan(&rec.ID, &rec.ProductID, &action, &rec.QtyChange, &rec.OldStock,
			&rec.StockAfter, &rec.Location, &rec.Note, &rec.OperatorID, &rec.ScannedAt); err != nil {
			return nil, fmt.Errorf("scanning: scan record: %w", err)
		}
		rec.Action = ScanAction(action)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *historyRepository) ListMoves(ctx context.Context, productID int64, limit int) ([]LocationMove, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, product_id, from_location, to_location, operator_id, moved_at
		FROM location_history
		WHERE product_id = $1
		ORDER BY moved_at DESC, id DESC
		LIMIT $2
	`, productID, limit)
	if err != nil {
		return nil, fmt.Errorf("scanning: list moves: %w", err)
	}
	defer rows.Close()

	var moves []LocationMove
	for rows.Next() {
		var m LocationMove
		if err := rows.Scan(&m.ID, &m.ProductID, &m.FromLocation, &m.ToLocation,
			&m.OperatorID, &m.MovedAt); err != nil {
			return nil, fmt.Errorf("scanning: scan move: %w", err)
		}
		moves = append(moves, m)
	}
	return moves, rows.Err()
}
