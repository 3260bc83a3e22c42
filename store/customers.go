package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
)

type Customers struct {
	db *bun.DB
}

func NewCustomers(db *bun.DB) *Customers {
	return &Customers{db: db}
}

func (r *Customers) ByID(ctx context.Context, id int64) (*Customer, error) {
	c := new(Customer)
	err := r.db.NewSelect().Model(c).Where("id = ?", id).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

func (r *Customers) ByPhone(ctx context.Context, phone string) (*Customer, error) {
	c := new(Customer)
	err := r.db.NewSelect().Model(c).Where("phone = ?", phone).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

// Create inserts the customer. Two sessions registering the same phone at
// once race on the unique constraint; the loser resolves to the winner's
// row instead of failing.
func (r *Customers) Create(ctx context.Context, c *Customer) (*Customer, error) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	_, err := r.db.NewInsert().
		Model(c).
		On("CONFLICT (phone) DO NOTHING").
		Exec(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) && !isUniqueViolation(err) {
		return nil, err
	}
	if err != nil || c.ID == 0 {
		return r.ByPhone(ctx, c.Phone)
	}
	return c, nil
}

func (r *Customers) UpdateAddress(ctx context.Context, id int64, c *Customer) error {
	_, err := r.db.NewUpdate().
		Model((*Customer)(nil)).
		Set("cep = ?", c.CEP).
		Set("address = ?", c.Address).
		Set("number = ?", c.Number).
		Set("complement = ?", c.Complement).
		Set("neighborhood = ?", c.Neighborhood).
		Set("city = ?", c.City).
		Set("state = ?", c.State).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	return err
}
