package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/condoops/incident-service/internal/domain"
)

// StockMovementRepository encapsulates stock movement persistence.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *domain.StockMovement) error
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]domain.StockMovement, error)
}

type stockMovementRepository struct {
	pool *pgxpool.Pool
}

// NewStockMovementRepository instantiates repository.
func NewStockMovementRepository(pool *pgxpool.Pool) StockMovementRepository {
	return &stockMovementRepository{pool: pool}
}

func (r *stockMovementRepository) Create(ctx context.Context, movement *domain.StockMovement) error {
	const query = `
        INSERT INTO stock_movements (product_id, kind, quantity, actor_id, note)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return querier(ctx, r.pool).QueryRow(ctx, query,
		movement.ProductID,
		movement.Kind,
		movement.Quantity,
		movement.ActorID,
		movement.Note,
	).Scan(&movement.ID, &movement.CreatedAt)
}

func (r *stockMovementRepository) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]domain.StockMovement, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, product_id, kind, quantity, actor_id, note, created_at
        FROM stock_movements WHERE product_id=$1
        ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := querier(ctx, r.pool).Query(ctx, query, productID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StockMovement
	for rows.Next() {
		var movement domain.StockMovement
		if err := rows.Scan(
			&movement.ID,
			&movement.ProductID,
			&movement.Kind,
			&movement.Quantity,
			&movement.ActorID,
			&movement.Note,
			&movement.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, movement)
	}
	return result, rows.Err()
}
