package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mycoledger/mycoledger/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence for sales records.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const recordColumns = `id, customer_id, customer_name, customer_email, customer_phone,
total_amount, payment_method, status, date_created, invoice_id`

// NextInvoiceID allocates the next invoice number.
func (r *Repository) NextInvoiceID(ctx context.Context) (string, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT nextval('sales_invoice_seq')`).Scan(&n); err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%06d", n), nil
}

// Insert writes the record and its lines in one transaction.
func (r *Repository) Insert(ctx context.Context, rec Record) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return insertRecord(ctx, tx, rec, false)
	})
}

// Upsert replaces a record by id. Used by the legacy ledger import.
func (r *Repository) Upsert(ctx context.Context, rec Record) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM sales_line_items WHERE sale_id = $1`, rec.ID); err != nil {
			return err
		}
		return insertRecord(ctx, tx, rec, true)
	})
}

func insertRecord(ctx context.Context, q db.Querier, rec Record, replace bool) error {
	sql := `INSERT INTO sales_records (` + recordColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if replace {
		sql += ` ON CONFLICT (id) DO UPDATE SET customer_id = EXCLUDED.customer_id,
customer_name = EXCLUDED.customer_name, customer_email = EXCLUDED.customer_email,
customer_phone = EXCLUDED.customer_phone, total_amount = EXCLUDED.total_amount,
payment_method = EXCLUDED.payment_method, status = EXCLUDED.status,
date_created = EXCLUDED.date_created, invoice_id = EXCLUDED.invoice_id, updated_at = NOW()`
	}
	_, err := q.Exec(ctx, sql,
		rec.ID, rec.CustomerID, rec.CustomerName, rec.CustomerEmail, rec.CustomerPhone,
		rec.TotalAmount, string(rec.PaymentMethod), string(rec.Status), rec.DateCreated, rec.InvoiceID)
	if err != nil {
		return fmt.Errorf("insert sales record: %w", err)
	}
	for i, it := range rec.Items {
		_, err := q.Exec(ctx, `INSERT INTO sales_line_items (sale_id, line_no, product_id, product_label, packaging, quantity, unit_price)
VALUES ($1, $2, $3, $4, $5, $6, $7)`, rec.ID, i+1, it.ProductID, it.ProductLabel, it.Packaging, it.Quantity, it.UnitPrice)
		if err != nil {
			return fmt.Errorf("insert sales line %d: %w", i+1, err)
		}
	}
	return nil
}

// Get loads one record with its lines.
func (r *Repository) Get(ctx context.Context, id string) (Record, error) {
	rec, err := scanRecord(r.pool.QueryRow(ctx, `SELECT `+recordColumns+` FROM sales_records WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	lines, err := r.lines(ctx, []string{id})
	if err != nil {
		return Record{}, err
	}
	rec.Items = lines[id]
	return rec, nil
}

// List returns every record, newest first.
func (r *Repository) List(ctx context.Context) ([]Record, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+recordColumns+` FROM sales_records ORDER BY date_created DESC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	recs := []Record{}
	ids := []string{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
		ids = append(ids, rec.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	lines, err := r.lines(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range recs {
		recs[i].Items = lines[recs[i].ID]
	}
	return recs, nil
}

// SetStatus performs a compare-and-set on the status column.
func (r *Repository) SetStatus(ctx context.Context, id string, from, to Status) (Record, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE sales_records SET status = $3, updated_at = NOW()
WHERE id = $1 AND status = $2`, id, string(from), string(to))
	if err != nil {
		return Record{}, err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM sales_records WHERE id = $1)`, id).Scan(&exists); err != nil {
			return Record{}, err
		}
		if !exists {
			return Record{}, ErrNotFound
		}
		return Record{}, ErrStaleStatus
	}
	return r.Get(ctx, id)
}

func (r *Repository) lines(ctx context.Context, ids []string) (map[string][]LineItem, error) {
	out := make(map[string][]LineItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT sale_id, product_id, product_label, packaging, quantity, unit_price
FROM sales_line_items WHERE sale_id = ANY($1) ORDER BY sale_id, line_no`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var saleID string
		var it LineItem
		if err := rows.Scan(&saleID, &it.ProductID, &it.ProductLabel, &it.Packaging, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, err
		}
		out[saleID] = append(out[saleID], it)
	}
	return out, rows.Err()
}

func scanRecord(row pgx.Row) (Record, error) {
	var (
		rec           Record
		method, state string
	)
	err := row.Scan(&rec.ID, &rec.CustomerID, &rec.CustomerName, &rec.CustomerEmail, &rec.CustomerPhone,
		&rec.TotalAmount, &method, &state, &rec.DateCreated, &rec.InvoiceID)
	if err != nil {
		return Record{}, err
	}
	rec.PaymentMethod = PaymentMethod(method)
	rec.Status = Status(state)
	return rec, nil
}
