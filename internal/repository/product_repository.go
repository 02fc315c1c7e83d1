package repository

import (
	"context"
	"fmt"

	"shopkart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

// GetAll retrieves all published products with pagination support.
func (r *productRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	query := `
		SELECT id, shop_id, name, price, category, is_published, created_at
		FROM products
		WHERE is_published = TRUE
		ORDER BY name
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// GetByShop retrieves published products belonging to a shop.
func (r *productRepository) GetByShop(ctx context.Context, shopID uuid.UUID, limit, offset int) ([]model.Product, error) {
	query := `
		SELECT id, shop_id, name, price, category, is_published, created_at
		FROM products
		WHERE shop_id = $1 AND is_published = TRUE
		ORDER BY name
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, shopID, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Str("shop_id", shopID.String()).
			Msg("failed to query shop products")
		return nil, fmt.Errorf("failed to query shop products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// GetByIDs retrieves the published subset of the given product IDs.
func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query := `
		SELECT id, shop_id, name, price, category, is_published, created_at
		FROM products
		WHERE id = ANY($1) AND is_published = TRUE
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products by id")
		return nil, fmt.Errorf("failed to query products by id: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func collectProducts(rows pgx.Rows) ([]model.Product, error) {
	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := `
		SELECT id, shop_id, name, price, category, is_published, created_at
		FROM products
		WHERE id = $1
	`

	row := r.pool.QueryRow(ctx, query, id)
	p, err := scanProduct(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("product_id", id.String()).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return &p, nil
}

// CheckProductsAvailable re-prices the requested line items from the
// catalogue. The returned items carry the server-side price, not the price
// the client claimed. Unknown or unpublished products are dropped.
func (r *productRepository) CheckProductsAvailable(ctx context.Context, items []model.LineItem) ([]model.LineItem, error) {
	if len(items) == 0 {
		return []model.LineItem{}, nil
	}

	ids := make([]uuid.UUID, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}

	query := `
		SELECT id, price
		FROM products
		WHERE id = ANY($1) AND is_published = TRUE
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query sellable products")
		return nil, fmt.Errorf("failed to query sellable products: %w", err)
	}
	defer rows.Close()

	prices := make(map[uuid.UUID]decimal.Decimal, len(items))
	for rows.Next() {
		var id uuid.UUID
		var price float64
		if err := rows.Scan(&id, &price); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product price row")
			return nil, fmt.Errorf("failed to scan product price: %w", err)
		}
		prices[id] = decimal.NewFromFloat(price)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product price rows")
		return nil, fmt.Errorf("error iterating product prices: %w", err)
	}

	checked := make([]model.LineItem, 0, len(items))
	for _, item := range items {
		price, ok := prices[item.ProductID]
		if !ok {
			r.logger.Warn().
				Str("product_id", item.ProductID.String()).
				Msg("product not sellable, dropped from checkout")
			continue
		}
		checked = append(checked, model.LineItem{
			ProductID: item.ProductID,
			Price:     price,
			Quantity:  item.Quantity,
		})
	}

	return checked, nil
}

// scanProduct scans a product row. Prices are stored as numeric and read
// through float64 before conversion to decimal.
func scanProduct(row pgx.Row) (model.Product, error) {
	var p model.Product
	var price float64
	err := row.Scan(&p.ID, &p.ShopID, &p.Name, &price, &p.Category, &p.IsPublished, &p.CreatedAt)
	if err != nil {
		return model.Product{}, err
	}
	p.Price = decimal.NewFromFloat(price)
	return p, nil
}
