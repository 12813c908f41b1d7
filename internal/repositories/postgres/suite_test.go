package postgres_test

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	domain "github.com/nueve-shop/api/internal/domain"
	"github.com/nueve-shop/api/internal/platform/config"
	platform "github.com/nueve-shop/api/internal/platform/postgres"
)

const migrationScript = "../../../migrations/0001_init.up.sql"

// startPostgres boots a throwaway PostgreSQL container for the suite.
func startPostgres(ctx context.Context) (testcontainers.Container, string, error) {
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("nueve_shop_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, "", fmt.Errorf("postgres.Run: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return container, "", fmt.Errorf("container.ConnectionString: %w", err)
	}

	return container, connStr, nil
}

// newTestDB opens a pool against the container and applies the schema. Going
// through platform.New keeps the decimal codec registration identical to
// production.
func newTestDB(ctx context.Context, connStr string) (*platform.DB, error) {
	db, err := platform.New(ctx, config.DatabaseConfig{
		URL:            connStr,
		MaxConns:       8,
		ConnectTimeout: 10 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("platform.New: %w", err)
	}

	script, err := os.ReadFile(migrationScript)
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile: %w", err)
	}
	if _, err := db.Querier(ctx).Exec(ctx, string(script)); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return db, nil
}

func truncateAll(ctx context.Context, db *platform.DB) error {
	_, err := db.Querier(ctx).Exec(ctx,
		`TRUNCATE cart_items, wishlists, order_items, orders, addresses, products, categories`)
	return err
}

func fakeProduct(stock int) domain.Product {
	return domain.Product{
		ID:            "prd_" + gofakeit.UUID(),
		Name:          gofakeit.ProductName(),
		Description:   gofakeit.Sentence(8),
		Price:         decimal.NewFromFloat(gofakeit.Price(10, 900)).Round(2),
		Sizes:         []string{"S", "M", "L"},
		Colors:        []string{gofakeit.Color()},
		Images:        []string{gofakeit.URL()},
		Rating:        decimal.NewFromFloat(4.2),
		ReviewCount:   gofakeit.Number(0, 500),
		StockQuantity: stock,
		IsActive:      true,
	}
}

func fakeAddress(userID string) domain.Address {
	return domain.Address{
		ID:           "adr_" + gofakeit.UUID(),
		UserID:       userID,
		Name:         gofakeit.Name(),
		Phone:        gofakeit.Phone(),
		AddressLine1: gofakeit.Street(),
		City:         gofakeit.City(),
		State:        gofakeit.State(),
		Pincode:      "560001",
	}
}
