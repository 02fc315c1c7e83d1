package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"shopkart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container and connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	// Get connection string
	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	// Create schema
	createSchema(t, pool)

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// createSchema creates the database schema for testing.
func createSchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	schema := `
		CREATE TABLE IF NOT EXISTS products (
			id UUID PRIMARY KEY,
			shop_id UUID NOT NULL,
			name VARCHAR(255) NOT NULL,
			price DECIMAL(12, 2) NOT NULL,
			category VARCHAR(100) NOT NULL DEFAULT '',
			is_published BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS carts (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			state VARCHAR(20) NOT NULL DEFAULT 'active',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS discounts (
			id UUID PRIMARY KEY,
			shop_id UUID NOT NULL,
			code VARCHAR(50) NOT NULL,
			name VARCHAR(255) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			type VARCHAR(20) NOT NULL CHECK (type IN ('fixed_amount', 'percentage')),
			value DECIMAL(12, 2) NOT NULL,
			max_value DECIMAL(12, 2),
			start_date TIMESTAMPTZ NOT NULL,
			end_date TIMESTAMPTZ NOT NULL,
			max_uses INTEGER NOT NULL DEFAULT 0,
			uses_count INTEGER NOT NULL DEFAULT 0,
			max_uses_per_user INTEGER NOT NULL DEFAULT 0,
			min_order_value DECIMAL(12, 2) NOT NULL DEFAULT 0,
			applies_to VARCHAR(20) NOT NULL CHECK (applies_to IN ('all_products', 'specific_products')),
			product_ids UUID[],
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (shop_id, code)
		);

		CREATE TABLE IF NOT EXISTS discount_usages (
			discount_id UUID NOT NULL REFERENCES discounts(id) ON DELETE CASCADE,
			user_id UUID NOT NULL,
			used_count INTEGER NOT NULL DEFAULT 0,
			last_used_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (discount_id, user_id)
		);

		CREATE TABLE IF NOT EXISTS inventories (
			product_id UUID PRIMARY KEY REFERENCES products(id) ON DELETE CASCADE,
			shop_id UUID NOT NULL,
			stock INTEGER NOT NULL CHECK (stock >= 0),
			reserved INTEGER NOT NULL DEFAULT 0 CHECK (reserved >= 0),
			location VARCHAR(100) NOT NULL DEFAULT '',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS product_locks (
			key VARCHAR(100) PRIMARY KEY,
			token VARCHAR(100) NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL
		);

		CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			cart_id UUID NOT NULL,
			total_price DECIMAL(12, 2) NOT NULL,
			total_discount DECIMAL(12, 2) NOT NULL,
			fee_ship DECIMAL(12, 2) NOT NULL DEFAULT 0,
			total_checkout DECIMAL(12, 2) NOT NULL,
			shipping JSONB,
			payment JSONB,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS order_groups (
			id UUID PRIMARY KEY,
			order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			shop_id UUID NOT NULL,
			discount_code VARCHAR(50),
			raw_price DECIMAL(12, 2) NOT NULL,
			discount_amount DECIMAL(12, 2) NOT NULL DEFAULT 0,
			price_after_discount DECIMAL(12, 2) NOT NULL
		);

		CREATE TABLE IF NOT EXISTS order_items (
			id UUID PRIMARY KEY,
			group_id UUID NOT NULL REFERENCES order_groups(id) ON DELETE CASCADE,
			product_id UUID NOT NULL REFERENCES products(id),
			price DECIMAL(12, 2) NOT NULL,
			quantity INTEGER NOT NULL CHECK (quantity > 0)
		);

		CREATE INDEX IF NOT EXISTS idx_discounts_shop_code ON discounts(shop_id, code);
		CREATE INDEX IF NOT EXISTS idx_order_groups_order_id ON order_groups(order_id);
		CREATE INDEX IF NOT EXISTS idx_order_items_group_id ON order_items(group_id);
	`

	_, err := pool.Exec(ctx, schema)
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
}

// SeedProduct inserts a published product with stock and returns its ID.
func SeedProduct(t *testing.T, pool *pgxpool.Pool, shopID uuid.UUID, price decimal.Decimal, stock int) uuid.UUID {
	t.Helper()

	ctx := context.Background()
	productID := uuid.New()
	priceF, _ := price.Float64()

	_, err := pool.Exec(ctx,
		`INSERT INTO products (id, shop_id, name, price, category, is_published)
		 VALUES ($1, $2, $3, $4, 'test', TRUE)`,
		productID, shopID, "Product "+productID.String()[:8], priceF,
	)
	if err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO inventories (product_id, shop_id, stock, reserved, location)
		 VALUES ($1, $2, $3, 0, 'main')`,
		productID, shopID, stock,
	)
	if err != nil {
		t.Fatalf("failed to seed inventory: %v", err)
	}

	return productID
}

// SeedCart inserts an active cart for the user and returns its ID.
func SeedCart(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID) uuid.UUID {
	t.Helper()

	cartID := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO carts (id, user_id, state) VALUES ($1, $2, 'active')`,
		cartID, userID,
	)
	if err != nil {
		t.Fatalf("failed to seed cart: %v", err)
	}

	return cartID
}

// SeedDiscount inserts a discount rule built from the given model.
func SeedDiscount(t *testing.T, pool *pgxpool.Pool, d *model.Discount) {
	t.Helper()

	ctx := context.Background()

	var maxValue *float64
	if d.MaxValue != nil {
		v, _ := d.MaxValue.Float64()
		maxValue = &v
	}
	value, _ := d.Value.Float64()
	minOrder, _ := d.MinOrderValue.Float64()

	_, err := pool.Exec(ctx,
		`INSERT INTO discounts (
			id, shop_id, code, name, description, type, value, max_value,
			start_date, end_date, max_uses, uses_count, max_uses_per_user,
			min_order_value, applies_to, product_ids, is_active, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NOW(), NOW())`,
		d.ID, d.ShopID, d.Code, d.Name, d.Description, string(d.Type), value, maxValue,
		d.StartDate, d.EndDate, d.MaxUses, d.UsesCount, d.MaxUsesPerUser,
		minOrder, string(d.AppliesTo), d.ProductIDs, d.IsActive,
	)
	if err != nil {
		t.Fatalf("failed to seed discount %s: %v", d.Code, err)
	}
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{
		"order_items", "order_groups", "orders", "product_locks",
		"discount_usages", "discounts", "inventories", "carts", "products",
	}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
