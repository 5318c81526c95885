package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type Repository interface {
	ListActive(ctx context.Context) ([]Product, error)
	// ListAll includes inactive products, for the admin catalog view.
	ListAll(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, productID string) (*Product, error)
}

type repo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repo{db: db}
}

const productColumns = `id, name, description, long_description, price, image_url,
	category, weight, stock_quantity, is_active, created_at`

func (r *repo) ListActive(ctx context.Context) ([]Product, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+productColumns+`
         FROM products WHERE is_active = TRUE ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return products, nil
}

func (r *repo) ListAll(ctx context.Context) ([]Product, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+productColumns+`
         FROM products ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return products, nil
}

func (r *repo) GetByID(ctx context.Context, productID string) (*Product, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+`
         FROM products WHERE id = $1`,
		productID,
	)

	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (Product, error) {
	var p Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.LongDescription, &p.Price,
		&p.ImageURL, &p.Category, &p.Weight, &p.StockQuantity, &p.IsActive,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, err
		}
		return Product{}, fmt.Errorf("scan product: %w", err)
	}
	return p, nil
}
