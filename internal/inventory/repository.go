package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mycoledger/mycoledger/internal/platform/db"
)

// Repository persists inventory data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations used by service.
type TxRepository interface {
	LockGroupOf(ctx context.Context, productID string) ([]FinishedGood, error)
	AdjustGood(ctx context.Context, goodID string, delta int) error
	InsertReservation(ctx context.Context, res Reservation) error
	ListReservations(ctx context.Context, saleID string) ([]Reservation, error)
	DeleteReservations(ctx context.Context, saleID string) error
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes the callback inside repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil || r.pool == nil {
		return errors.New("inventory repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

const finishedGoodColumns = `id, recipe_name, packaging_type, quantity, COALESCE(selling_price, 0), produced_at`

// ListFinishedGoods returns every batch ordered by production time.
func (r *Repository) ListFinishedGoods(ctx context.Context) ([]FinishedGood, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+finishedGoodColumns+` FROM finished_goods ORDER BY produced_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGoods(rows)
}

// ListItems returns raw material and packaging stock.
func (r *Repository) ListItems(ctx context.Context) ([]Item, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, type, quantity, threshold, unit, COALESCE(unit_cost, 0), COALESCE(supplier, '')
FROM inventory_items ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Item{}
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Type, &it.Quantity, &it.Threshold, &it.Unit, &it.UnitCost, &it.Supplier); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// UpsertFinishedGood inserts or replaces a batch.
func (r *Repository) UpsertFinishedGood(ctx context.Context, g FinishedGood) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO finished_goods (id, recipe_name, packaging_type, quantity, selling_price, produced_at)
VALUES ($1, $2, $3, $4, NULLIF($5::numeric, 0), $6)
ON CONFLICT (id) DO UPDATE SET recipe_name = EXCLUDED.recipe_name, packaging_type = EXCLUDED.packaging_type,
	quantity = EXCLUDED.quantity, selling_price = EXCLUDED.selling_price`,
		g.ID, g.RecipeName, g.PackagingType, g.Quantity, g.SellingPrice, g.ProducedAt)
	return err
}

func (t *txRepository) LockGroupOf(ctx context.Context, productID string) ([]FinishedGood, error) {
	rows, err := t.tx.Query(ctx, `SELECT `+finishedGoodColumns+` FROM finished_goods
WHERE (recipe_name, packaging_type) = (SELECT recipe_name, packaging_type FROM finished_goods WHERE id = $1)
ORDER BY produced_at ASC, id ASC
FOR UPDATE`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	goods, err := scanGoods(rows)
	if err != nil {
		return nil, err
	}
	if len(goods) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	return goods, nil
}

func (t *txRepository) AdjustGood(ctx context.Context, goodID string, delta int) error {
	tag, err := t.tx.Exec(ctx, `UPDATE finished_goods SET quantity = quantity + $2 WHERE id = $1 AND quantity + $2 >= 0`, goodID, delta)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrInsufficientStock, goodID)
	}
	return nil
}

func (t *txRepository) InsertReservation(ctx context.Context, res Reservation) error {
	_, err := t.tx.Exec(ctx, `INSERT INTO stock_reservations (sale_id, good_id, quantity, created_at) VALUES ($1, $2, $3, NOW())`,
		res.SaleID, res.GoodID, res.Quantity)
	return err
}

func (t *txRepository) ListReservations(ctx context.Context, saleID string) ([]Reservation, error) {
	rows, err := t.tx.Query(ctx, `SELECT sale_id, good_id, quantity FROM stock_reservations WHERE sale_id = $1 ORDER BY good_id`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Reservation{}
	for rows.Next() {
		var res Reservation
		if err := rows.Scan(&res.SaleID, &res.GoodID, &res.Quantity); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func (t *txRepository) DeleteReservations(ctx context.Context, saleID string) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM stock_reservations WHERE sale_id = $1`, saleID)
	return err
}

func scanGoods(rows pgx.Rows) ([]FinishedGood, error) {
	goods := []FinishedGood{}
	for rows.Next() {
		var g FinishedGood
		if err := rows.Scan(&g.ID, &g.RecipeName, &g.PackagingType, &g.Quantity, &g.SellingPrice, &g.ProducedAt); err != nil {
			return nil, err
		}
		goods = append(goods, g)
	}
	return goods, rows.Err()
}
