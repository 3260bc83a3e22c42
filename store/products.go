package store

import (
	"context"
	"strings"

	"github.com/uptrace/bun"
)

type Products struct {
	db *bun.DB
}

func NewProducts(db *bun.DB) *Products {
	return &Products{db: db}
}

func (r *Products) Active(ctx context.Context) ([]Product, error) {
	var products []Product
	err := r.db.NewSelect().
		Model(&products).
		Where("active").
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *Products) ByID(ctx context.Context, id int64) (*Product, error) {
	p := new(Product)
	err := r.db.NewSelect().Model(p).Where("id = ?", id).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (r *Products) SearchActive(ctx context.Context, query string) ([]Product, error) {
	var products []Product
	err := r.db.NewSelect().
		Model(&products).
		Where("active").
		Where("lower(name) LIKE ?", "%"+strings.ToLower(query)+"%").
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return products, nil
}
