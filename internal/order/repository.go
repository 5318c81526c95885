package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var ErrNotFound = errors.New("order not found")

type Repository interface {
	// CreateWithItems persists the order and its items and clears the
	// originating session's cart, all in one transaction. Either everything
	// lands or nothing does.
	CreateWithItems(ctx context.Context, o *Order, sessionID string) error
	// FindByPaymentID returns the order already recorded for a gateway
	// payment, or nil. Used to make order commits idempotent.
	FindByPaymentID(ctx context.Context, gatewayPaymentID string) (*Order, error)
	GetByID(ctx context.Context, orderID string) (*Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*Order, error)
	List(ctx context.Context, limit int) ([]Order, error)
	UpdateStatus(ctx context.Context, orderID string, status Status) (*Order, error)
}

type repo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repo{db: db}
}

// IsDuplicatePayment reports whether err is the unique-constraint violation
// raised when a second order is inserted for the same gateway payment.
func IsDuplicatePayment(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" && pqErr.Constraint == "orders_gateway_payment_id_key"
	}
	return false
}

func (r *repo) CreateWithItems(ctx context.Context, o *Order, sessionID string) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = StatusPaid
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (
			id, order_number, customer_name, customer_email, customer_phone,
			shipping_address, pin_code, subtotal, shipping_charge, total_amount,
			status, merchant_reference, gateway_order_id, gateway_payment_id,
			gateway_signature, payment_status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING created_at
	`,
		o.ID, o.OrderNumber, o.CustomerName, o.CustomerEmail, o.CustomerPhone,
		o.ShippingAddress, o.PinCode, o.Subtotal, o.ShippingCharge, o.TotalAmount,
		o.Status, o.MerchantReference, o.GatewayOrderID, o.GatewayPaymentID,
		o.GatewaySignature, o.PaymentStatus,
	).Scan(&o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, it := range o.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, product_name, product_price, quantity, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`,
			uuid.NewString(), o.ID, it.ProductID, it.ProductName, it.ProductPrice,
			it.Quantity, it.Subtotal,
		)
		if err != nil {
			return fmt.Errorf("insert order_item: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM cart_items WHERE session_id = $1`, sessionID,
	); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

const orderColumns = `id, order_number, customer_name, customer_email, customer_phone,
	shipping_address, pin_code, subtotal, shipping_charge, total_amount, status,
	merchant_reference, gateway_order_id, gateway_payment_id, gateway_signature,
	payment_status, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
		&o.ShippingAddress, &o.PinCode, &o.Subtotal, &o.ShippingCharge, &o.TotalAmount,
		&o.Status, &o.MerchantReference, &o.GatewayOrderID, &o.GatewayPaymentID,
		&o.GatewaySignature, &o.PaymentStatus, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Order{}, err
		}
		return Order{}, fmt.Errorf("scan order: %w", err)
	}
	return o, nil
}

func (r *repo) FindByPaymentID(ctx context.Context, gatewayPaymentID string) (*Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE gateway_payment_id = $1`,
		gatewayPaymentID,
	)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if err := r.loadItems(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repo) GetByID(ctx context.Context, orderID string) (*Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`,
		orderID,
	)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if err := r.loadItems(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repo) GetByNumber(ctx context.Context, orderNumber string) (*Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE order_number = $1`,
		orderNumber,
	)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if err := r.loadItems(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repo) List(ctx context.Context, limit int) ([]Order, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return orders, nil
}

func (r *repo) UpdateStatus(ctx context.Context, orderID string, status Status) (*Order, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2
		RETURNING `+orderColumns,
		status, orderID,
	)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *repo) loadItems(ctx context.Context, o *Order) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, product_name, product_price, quantity, subtotal
		FROM order_items WHERE order_id = $1
	`, o.ID)
	if err != nil {
		return fmt.Errorf("select order_items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ProductID, &it.ProductName, &it.ProductPrice, &it.Quantity, &it.Subtotal); err != nil {
			return fmt.Errorf("scan order_item: %w", err)
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows: %w", err)
	}
	return nil
}
