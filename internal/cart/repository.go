package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mimasafoods/storefront/internal/catalog"
)

var ErrItemNotFound = errors.New("cart item not found")

type Repository interface {
	// AddItem inserts a cart row or increments the quantity of the existing
	// (session, product) row. The increment happens in the database so two
	// racing tabs cannot lose an update.
	AddItem(ctx context.Context, sessionID, productID string, quantity int) (*Item, error)
	UpdateQuantity(ctx context.Context, itemID string, quantity int) error
	RemoveItem(ctx context.Context, itemID string) error
	ListBySession(ctx context.Context, sessionID string) ([]Item, error)
	ClearSession(ctx context.Context, sessionID string) error
}

type repo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repo{db: db}
}

func (r *repo) AddItem(ctx context.Context, sessionID, productID string, quantity int) (*Item, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", quantity)
	}

	var it Item
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO cart_items (id, session_id, product_id, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (session_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = NOW()
		RETURNING id, session_id, product_id, quantity, updated_at
	`, uuid.NewString(), sessionID, productID, quantity).
		Scan(&it.ID, &it.SessionID, &it.ProductID, &it.Quantity, &it.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert cart item: %w", err)
	}

	return &it, nil
}

func (r *repo) UpdateQuantity(ctx context.Context, itemID string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", quantity)
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE cart_items SET quantity = $1, updated_at = NOW() WHERE id = $2
	`, quantity, itemID)
	if err != nil {
		return fmt.Errorf("update cart item: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *repo) RemoveItem(ctx context.Context, itemID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *repo) ListBySession(ctx context.Context, sessionID string) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			ci.id, ci.session_id, ci.product_id, ci.quantity, ci.updated_at,
			p.id, p.name, p.description, p.price, p.image_url, p.category,
			p.weight, p.stock_quantity, p.is_active
		FROM cart_items ci
		LEFT JOIN products p ON p.id = ci.product_id
		WHERE ci.session_id = $1
		ORDER BY ci.created_at
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("select cart items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var (
			it       Item
			pID      sql.NullString
			pName    sql.NullString
			pDesc    sql.NullString
			pPrice   decimal.NullDecimal
			pImage   sql.NullString
			pCat     sql.NullString
			pWeight  sql.NullString
			pStock   sql.NullInt64
			pActive  sql.NullBool
		)
		if err := rows.Scan(
			&it.ID, &it.SessionID, &it.ProductID, &it.Quantity, &it.UpdatedAt,
			&pID, &pName, &pDesc, &pPrice, &pImage, &pCat, &pWeight, &pStock, &pActive,
		); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}

		if pID.Valid {
			it.Product = &catalog.Product{
				ID:            pID.String,
				Name:          pName.String,
				Description:   pDesc.String,
				Price:         pPrice.Decimal,
				ImageURL:      pImage.String,
				Category:      catalog.Category(pCat.String),
				Weight:        pWeight.String,
				StockQuantity: int(pStock.Int64),
				IsActive:      pActive.Bool,
			}
		}

		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return items, nil
}

func (r *repo) ClearSession(ctx context.Context, sessionID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
