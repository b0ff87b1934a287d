package crm

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists customers in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const customerColumns = `id, name, email, contact, address, type, status, join_date`

// ListCustomers returns the directory ordered by name.
func (r *Repository) ListCustomers(ctx context.Context) ([]Customer, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetCustomer loads one customer.
func (r *Repository) GetCustomer(ctx context.Context, id string) (Customer, error) {
	c, err := scanCustomer(r.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Customer{}, ErrNotFound
	}
	return c, err
}

// UpsertCustomer inserts or replaces a customer.
func (r *Repository) UpsertCustomer(ctx context.Context, c Customer) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO customers (`+customerColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email,
contact = EXCLUDED.contact, address = EXCLUDED.address, type = EXCLUDED.type, status = EXCLUDED.status`,
		c.ID, c.Name, c.Email, c.Contact, c.Address, string(c.Type), c.Status, c.JoinDate)
	return err
}

func scanCustomer(row pgx.Row) (Customer, error) {
	var c Customer
	var typ string
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Contact, &c.Address, &typ, &c.Status, &c.JoinDate); err != nil {
		return Customer{}, err
	}
	c.Type = CustomerType(typ)
	return c, nil
}
