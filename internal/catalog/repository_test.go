package catalog

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var productCols = []string{
	"id", "name", "description", "long_description", "price", "image_url",
	"category", "weight", "stock_quantity", "is_active", "created_at",
}

func TestListActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery("SELECT .+ FROM products WHERE is_active = TRUE").
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow("p-1", "Butter Chicken Gravy", "rich gravy", "", "249.00",
				"/img/bcg.jpg", "gravy", "250g", 40, true, now).
			AddRow("p-2", "Tandoori Marinade", "smoky marinade", "", "179.50",
				"/img/tm.jpg", "marinade", "200g", 15, true, now))

	r := NewRepository(db)
	products, err := r.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "Butter Chicken Gravy", products[0].Name)
	assert.Equal(t, CategoryGravy, products[0].Category)
	assert.True(t, products[0].Price.Equal(decimal.RequireFromString("249.00")))
	assert.Equal(t, CategoryMarinade, products[1].Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAllIncludesInactive(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery("SELECT .+ FROM products ORDER BY name").
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow("p-1", "Butter Chicken Gravy", "rich gravy", "", "249.00",
				"/img/bcg.jpg", "gravy", "250g", 40, true, now).
			AddRow("p-3", "Retired Powder", "", "", "99.00",
				"", "powder", "100g", 0, false, now))

	r := NewRepository(db)
	products, err := r.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.False(t, products[1].IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id = $1")).
		WithArgs("p-1").
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow("p-1", "Butter Chicken Gravy", "rich gravy", "", "249.00",
				"/img/bcg.jpg", "gravy", "250g", 40, true, time.Now()))

	r := NewRepository(db)
	p, err := r.GetByID(context.Background(), "p-1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "p-1", p.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id = $1")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(productCols))

	r := NewRepository(db)
	p, err := r.GetByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestCategoryValid(t *testing.T) {
	assert.True(t, CategoryGravy.Valid())
	assert.True(t, CategoryMarinade.Valid())
	assert.True(t, CategoryPowder.Valid())
	assert.False(t, Category("snacks").Valid())
	assert.False(t, Category("").Valid())
}
