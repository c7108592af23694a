package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogService manages the product catalog.
type CatalogService interface {
	ListProducts(ctx context.Context, includeInactive bool) ([]Product, error)
	GetProduct(ctx context.Context, id int) (*Product, error)
	CreateProduct(ctx context.Context, in ProductInput) (*Product, error)
	UpdateProduct(ctx context.Context, id int, in ProductInput) (*Product, error)
	// DeactivateProduct soft-deletes a product. Existing orders and custom prices keep their reference.
	DeactivateProduct(ctx context.Context, id int) error
}

type catalogService struct {
	pool *pgxpool.Pool
}

func NewCatalogService(pool *pgxpool.Pool) CatalogService {
	return &catalogService{pool: pool}
}

const productColumns = `id, name, description, base_price, unit, is_active, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.BasePrice, &p.Unit, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *catalogService) ListProducts(ctx context.Context, includeInactive bool) ([]Product, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE is_active OR $1
		ORDER BY name
	`, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (s *catalogService) GetProduct(ctx context.Context, id int) (*Product, error) {
	return getProduct(ctx, s.pool, id)
}

// getProduct loads one product through any querier so order creation can share the lookup.
func getProduct(ctx context.Context, q pgxQuerier, id int) (*Product, error) {
	p, err := scanProduct(q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err, "product", id)
	}
	return p, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	if err := ValidateStruct(in); err != nil {
		return nil, err
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	p, err := scanProduct(s.pool.QueryRow(ctx, `
		INSERT INTO products (name, description, base_price, unit, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+productColumns,
		strings.TrimSpace(in.Name), in.Description, in.basePrice(), string(in.unit()), active,
	))
	if err != nil {
		if uniqueViolation(err, "") {
			return nil, Conflictf("product %q already exists", in.Name)
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return p, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id int, in ProductInput) (*Product, error) {
	if err := ValidateStruct(in); err != nil {
		return nil, err
	}

	p, err := scanProduct(s.pool.QueryRow(ctx, `
		UPDATE products
		SET name = $2, description = $3, base_price = $4, unit = $5,
		    is_active = COALESCE($6, is_active), updated_at = now()
		WHERE id = $1
		RETURNING `+productColumns,
		id, strings.TrimSpace(in.Name), in.Description, in.basePrice(), string(in.unit()), in.IsActive,
	))
	if err != nil {
		if uniqueViolation(err, "") {
			return nil, Conflictf("product %q already exists", in.Name)
		}
		return nil, notFoundOr(err, "product", id)
	}
	return p, nil
}

func (s *catalogService) DeactivateProduct(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx, `UPDATE products SET is_active = false, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return NotFoundf("product %d not found", id)
	}
	return nil
}
