package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/condoops/incident-service/internal/domain"
)

// ProductRepository encapsulates spare-part persistence.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	ListByBuilding(ctx context.Context, buildingID string) ([]domain.Product, error)
	UpdateStock(ctx context.Context, id string, stock int) error
}

type productRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository instantiates repository.
func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &productRepository{pool: pool}
}

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	const query = `
        INSERT INTO products (building_id, name, unit, stock, min_stock)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return querier(ctx, r.pool).QueryRow(ctx, query,
		product.BuildingID,
		product.Name,
		product.Unit,
		product.Stock,
		product.MinStock,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	const query = `
        SELECT id, building_id, name, unit, stock, min_stock, created_at, updated_at
        FROM products WHERE id=$1`
	var product domain.Product
	if err := querier(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&product.ID,
		&product.BuildingID,
		&product.Name,
		&product.Unit,
		&product.Stock,
		&product.MinStock,
		&product.CreatedAt,
		&product.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) ListByBuilding(ctx context.Context, buildingID string) ([]domain.Product, error) {
	const query = `
        SELECT id, building_id, name, unit, stock, min_stock, created_at, updated_at
        FROM products WHERE building_id=$1 ORDER BY name`
	rows, err := querier(ctx, r.pool).Query(ctx, query, buildingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		var product domain.Product
		if err := rows.Scan(
			&product.ID,
			&product.BuildingID,
			&product.Name,
			&product.Unit,
			&product.Stock,
			&product.MinStock,
			&product.CreatedAt,
			&product.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, product)
	}
	return result, rows.Err()
}

func (r *productRepository) UpdateStock(ctx context.Context, id string, stock int) error {
	cmd, err := querier(ctx, r.pool).Exec(ctx,
		`UPDATE products SET stock=$1, updated_at=NOW() WHERE id=$2`, stock, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
