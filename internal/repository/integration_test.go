package repository

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"shop-api/internal/database"
	"shop-api/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var (
	integrationOnce sync.Once
	integrationDB   *sql.DB
	integrationErr  error
)

// postgresDB starts one postgres container for the package and applies the
// goose migrations. Tests are skipped without a working container runtime.
func postgresDB(t *testing.T) *sql.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	integrationOnce.Do(func() {
		ctx := context.Background()

		container, err := postgres.Run(
			ctx,
			"postgres:15",
			postgres.WithDatabase("testdb"),
			postgres.WithUsername("user"),
			postgres.WithPassword("password"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second)),
		)
		if err != nil {
			integrationErr = err
			return
		}

		connStr, err := container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			integrationErr = err
			return
		}

		integrationDB, integrationErr = sql.Open("pgx", connStr)
		if integrationErr != nil {
			return
		}

		integrationErr = database.RunMigrations(ctx, integrationDB, "../../migrations", zap.NewNop())
	})

	require.NoError(t, integrationErr)
	return integrationDB
}

func TestIntegration_OrderLifecycle(t *testing.T) {
	db := postgresDB(t)
	ctx := context.Background()

	users := NewUserRepository(db)
	categories := NewCategoryRepository(db)
	products := NewProductRepository(db)
	orders := NewOrderRepository(db)

	user := &domain.User{
		ID:           uuid.New(),
		Name:         "Grace",
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "$2a$10$hash",
		Phone:        "555-0100",
		CreatedAt:    time.Now(),
	}
	require.NoError(t, users.Create(ctx, user))

	dup := *user
	dup.ID = uuid.New()
	assert.ErrorIs(t, users.Create(ctx, &dup), ErrUserAlreadyExists)

	category := &domain.Category{ID: uuid.New(), Name: "Tools", CreatedAt: time.Now()}
	require.NoError(t, categories.Create(ctx, category))

	product := &domain.Product{
		ID:          uuid.New(),
		Name:        "Hammer",
		Description: "Steel hammer",
		Images:      []string{"front.png", "side.png"},
		Price:       decimal.RequireFromString("12.50"),
		CategoryID:  category.ID,
		StockCount:  5,
		IsFeatured:  true,
		DateCreated: time.Now(),
	}
	require.NoError(t, products.Create(ctx, product))

	prices, err := products.FindPrices(ctx, []uuid.UUID{product.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, prices, 1)
	assert.True(t, product.Price.Equal(prices[product.ID]))

	listed, err := products.List(ctx, domain.ProductFilter{CategoryIDs: []uuid.UUID{category.ID}, Search: "hAmMeR"})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, []string{"front.png", "side.png"}, listed[0].Images)

	order := &domain.Order{
		ID:               uuid.New(),
		ShippingAddress1: "1 Main St",
		City:             "Springfield",
		Postcode:         "12345",
		Country:          "US",
		Phone:            "555-0100",
		Status:           domain.OrderStatusPending,
		TotalPrice:       decimal.RequireFromString("25.00"),
		UserID:           user.ID,
		DateOrdered:      time.Now(),
		OrderItems: []*domain.OrderItem{
			{ID: uuid.New(), ProductID: product.ID, Quantity: 2},
		},
	}
	require.NoError(t, orders.Create(ctx, order))

	found, err := orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, found.User)
	assert.Equal(t, "Grace", found.User.Name)
	require.Len(t, found.OrderItems, 1)
	require.NotNil(t, found.OrderItems[0].Product)
	require.NotNil(t, found.OrderItems[0].Product.Category)
	assert.Equal(t, "Tools", found.OrderItems[0].Product.Category.Name)

	// Deleting the category leaves the product with a dangling reference.
	require.NoError(t, categories.Delete(ctx, category.ID))
	orphan, err := products.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, category.ID, orphan.CategoryID)
	assert.Nil(t, orphan.Category)

	require.NoError(t, orders.UpdateStatus(ctx, order.ID, domain.OrderStatusPending, domain.OrderStatusShipped))
	assert.ErrorIs(t, orders.UpdateStatus(ctx, order.ID, domain.OrderStatusPending, domain.OrderStatusCancelled), ErrOrderStatusChanged)

	require.NoError(t, orders.Delete(ctx, order.ID))
	_, err = orders.FindByID(ctx, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.ErrorIs(t, orders.Delete(ctx, order.ID), ErrOrderNotFound)

	var remaining int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM order_items WHERE order_id = $1`, order.ID).Scan(&remaining))
	assert.Zero(t, remaining)
}

func TestIntegration_OrderCreateIsAtomic(t *testing.T) {
	db := postgresDB(t)
	ctx := context.Background()
	orders := NewOrderRepository(db)

	order := &domain.Order{
		ID:               uuid.New(),
		ShippingAddress1: "1 Main St",
		City:             "Springfield",
		Postcode:         "12345",
		Country:          "US",
		Phone:            "555-0100",
		Status:           domain.OrderStatusPending,
		UserID:           uuid.New(),
		DateOrdered:      time.Now(),
		OrderItems: []*domain.OrderItem{
			{ID: uuid.New(), ProductID: uuid.New(), Quantity: 1},
			// Violates the quantity check.
			{ID: uuid.New(), ProductID: uuid.New(), Quantity: 0},
		},
	}

	require.Error(t, orders.Create(ctx, order))

	_, err := orders.FindByID(ctx, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
