package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/condoops/incident-service/internal/domain"
)

// BuildingRepository encapsulates building persistence.
type BuildingRepository interface {
	Create(ctx context.Context, building *domain.Building) error
	GetByID(ctx context.Context, id string) (*domain.Building, error)
	List(ctx context.Context, ids []string) ([]domain.Building, error)
}

type buildingRepository struct {
	pool *pgxpool.Pool
}

// NewBuildingRepository instantiates repository.
func NewBuildingRepository(pool *pgxpool.Pool) BuildingRepository {
	return &buildingRepository{pool: pool}
}

func (r *buildingRepository) Create(ctx context.Context, building *domain.Building) error {
	const query = `
        INSERT INTO buildings (name, address, active)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return querier(ctx, r.pool).QueryRow(ctx, query,
		building.Name,
		building.Address,
		building.Active,
	).Scan(&building.ID, &building.CreatedAt, &building.UpdatedAt)
}

func (r *buildingRepository) GetByID(ctx context.Context, id string) (*domain.Building, error) {
	const query = `
        SELECT id, name, address, active, created_at, updated_at
        FROM buildings WHERE id=$1`
	var building domain.Building
	if err := querier(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&building.ID,
		&building.Name,
		&building.Address,
		&building.Active,
		&building.CreatedAt,
		&building.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &building, nil
}

// List returns buildings limited to ids; nil ids means all buildings.
func (r *buildingRepository) List(ctx context.Context, ids []string) ([]domain.Building, error) {
	query := `SELECT id, name, address, active, created_at, updated_at FROM buildings`
	args := []any{}
	if ids != nil {
		query += ` WHERE id = ANY($1)`
		args = append(args, ids)
	}
	query += ` ORDER BY name`

	rows, err := querier(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Building
	for rows.Next() {
		var building domain.Building
		if err := rows.Scan(
			&building.ID,
			&building.Name,
			&building.Address,
			&building.Active,
			&building.CreatedAt,
			&building.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, building)
	}
	return result, rows.Err()
}
