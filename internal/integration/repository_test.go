package integration

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mimasafoods/storefront/internal/cart"
	"github.com/mimasafoods/storefront/internal/cartconfig"
	"github.com/mimasafoods/storefront/internal/catalog"
	"github.com/mimasafoods/storefront/internal/order"
	"github.com/mimasafoods/storefront/internal/sequence"
	"github.com/mimasafoods/storefront/internal/testutil"
)

func seedProduct(t *testing.T, db *sql.DB, name, price string) string {
	t.Helper()
	id := uuid.NewString()
	_, err := db.Exec(`
		INSERT INTO products (id, name, price, category, is_active)
		VALUES ($1, $2, $3, 'gravy', TRUE)
	`, id, name, price)
	require.NoError(t, err)
	return id
}

func TestCartUpsertIncrementsQuantity(t *testing.T) {
	db := testutil.StartPostgres(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	productID := seedProduct(t, db, "Butter Chicken Gravy", "249.00")
	repo := cart.NewRepository(db)

	first, err := repo.AddItem(ctx, "sess-1", productID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Quantity)

	second, err := repo.AddItem(ctx, "sess-1", productID, 3)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Quantity)

	items, err := repo.ListBySession(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Product)
	assert.True(t, items[0].Product.Price.Equal(decimal.RequireFromString("249.00")))
}

func TestCartListSurvivesDeletedProduct(t *testing.T) {
	db := testutil.StartPostgres(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	productID := seedProduct(t, db, "Tandoori Marinade", "179.50")
	repo := cart.NewRepository(db)

	_, err := repo.AddItem(ctx, "sess-2", productID, 1)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, productID)
	require.NoError(t, err)

	items, err := repo.ListBySession(ctx, "sess-2")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].Product)
}

func sampleOrder(paymentID string) *order.Order {
	return &order.Order{
		OrderNumber:       "ORD-20260829-" + paymentID[len(paymentID)-4:],
		CustomerName:      "Asha Rao",
		CustomerEmail:     "asha@example.com",
		CustomerPhone:     "9876543210",
		ShippingAddress:   "12 Lake View Road, Bengaluru",
		PinCode:           "560001",
		Subtotal:          decimal.RequireFromString("299.00"),
		ShippingCharge:    decimal.RequireFromString("50.00"),
		TotalAmount:       decimal.RequireFromString("349.00"),
		Status:            order.StatusPaid,
		MerchantReference: uuid.NewString(),
		GatewayOrderID:    "order_" + paymentID,
		GatewayPaymentID:  paymentID,
		GatewaySignature:  "sig",
		PaymentStatus:     "captured",
		Items: []order.Item{{
			ProductID:    uuid.NewString(),
			ProductName:  "Butter Chicken Gravy",
			ProductPrice: decimal.RequireFromString("299.00"),
			Quantity:     1,
			Subtotal:     decimal.RequireFromString("299.00"),
		}},
	}
}

func TestOrderCommitClearsCartAndRejectsDuplicatePayment(t *testing.T) {
	db := testutil.StartPostgres(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	productID := seedProduct(t, db, "Chettinad Powder", "129.00")
	carts := cart.NewRepository(db)
	_, err := carts.AddItem(ctx, "sess-3", productID, 2)
	require.NoError(t, err)

	orders := order.NewRepository(db)
	o := sampleOrder("pay_1001")
	require.NoError(t, orders.CreateWithItems(ctx, o, "sess-3"))

	items, err := carts.ListBySession(ctx, "sess-3")
	require.NoError(t, err)
	assert.Empty(t, items)

	dup := sampleOrder("pay_1001")
	dup.OrderNumber = "ORD-20260829-9999"
	dup.MerchantReference = uuid.NewString()
	err = orders.CreateWithItems(ctx, dup, "sess-3")
	require.Error(t, err)
	assert.True(t, order.IsDuplicatePayment(err))

	existing, err := orders.FindByPaymentID(ctx, "pay_1001")
	require.NoError(t, err)
	require.NotNil(t, existing)
	assert.Equal(t, o.OrderNumber, existing.OrderNumber)
	require.Len(t, existing.Items, 1)
}

func TestOrderGetByNumberAndStatusUpdate(t *testing.T) {
	db := testutil.StartPostgres(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	orders := order.NewRepository(db)
	o := sampleOrder("pay_2001")
	require.NoError(t, orders.CreateWithItems(ctx, o, "sess-4"))

	fetched, err := orders.GetByNumber(ctx, o.OrderNumber)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.True(t, fetched.TotalAmount.Equal(o.TotalAmount))

	updated, err := orders.UpdateStatus(ctx, fetched.ID, order.StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, order.StatusShipped, updated.Status)
}

func TestSequencePerPartition(t *testing.T) {
	db := testutil.StartPostgres(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	seq := sequence.NewRepository(db)

	n1, err := seq.NextSequence(ctx, "20260829")
	require.NoError(t, err)
	n2, err := seq.NextSequence(ctx, "20260829")
	require.NoError(t, err)
	other, err := seq.NextSequence(ctx, "20260830")
	require.NoError(t, err)

	assert.Equal(t, int64(1), n1)
	assert.Equal(t, int64(2), n2)
	assert.Equal(t, int64(1), other)
}

func TestConfigSeededAndUpdatable(t *testing.T) {
	db := testutil.StartPostgres(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	cfg := cartconfig.NewRepository(db)

	shipping, err := cfg.Get(ctx, cartconfig.NameShipping)
	require.NoError(t, err)
	require.NotNil(t, shipping)
	assert.Equal(t, "50", shipping.Value)

	require.NoError(t, cfg.Upsert(ctx, cartconfig.NameShipping, "75"))
	shipping, err = cfg.Get(ctx, cartconfig.NameShipping)
	require.NoError(t, err)
	assert.Equal(t, "75", shipping.Value)
}

func TestCatalogListActiveHidesInactive(t *testing.T) {
	db := testutil.StartPostgres(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	seedProduct(t, db, "Visible Gravy", "100.00")
	inactiveID := seedProduct(t, db, "Retired Gravy", "90.00")
	_, err := db.ExecContext(ctx, `UPDATE products SET is_active = FALSE WHERE id = $1`, inactiveID)
	require.NoError(t, err)

	repo := catalog.NewRepository(db)
	products, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Visible Gravy", products[0].Name)
}
