package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/condoops/incident-service/internal/domain"
)

// VisitRepository encapsulates visit persistence. Linked incident ids are
// materialized from the incidents table, not stored on the visit row.
type VisitRepository interface {
	Create(ctx context.Context, visit *domain.Visit) error
	Update(ctx context.Context, visit *domain.Visit) error
	GetByID(ctx context.Context, id string) (*domain.Visit, error)
	Delete(ctx context.Context, id string) error
	ListByBuildings(ctx context.Context, buildingIDs []string, limit, offset int) ([]domain.Visit, error)
}

type visitRepository struct {
	pool *pgxpool.Pool
}

// NewVisitRepository instantiates repository.
func NewVisitRepository(pool *pgxpool.Pool) VisitRepository {
	return &visitRepository{pool: pool}
}

func (r *visitRepository) Create(ctx context.Context, visit *domain.Visit) error {
	const query = `
        INSERT INTO visits (building_id, company_id, scheduled_at, notes, status)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return querier(ctx, r.pool).QueryRow(ctx, query,
		visit.BuildingID,
		visit.CompanyID,
		visit.ScheduledAt,
		visit.Notes,
		visit.Status,
	).Scan(&visit.ID, &visit.CreatedAt, &visit.UpdatedAt)
}

func (r *visitRepository) Update(ctx context.Context, visit *domain.Visit) error {
	const query = `
        UPDATE visits SET company_id=$1, scheduled_at=$2, notes=$3, status=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := querier(ctx, r.pool).Exec(ctx, query,
		visit.CompanyID,
		visit.ScheduledAt,
		visit.Notes,
		visit.Status,
		visit.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *visitRepository) GetByID(ctx context.Context, id string) (*domain.Visit, error) {
	const query = `
        SELECT id, building_id, company_id, scheduled_at, notes, status, created_at, updated_at
        FROM visits WHERE id=$1`
	var visit domain.Visit
	if err := querier(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&visit.ID,
		&visit.BuildingID,
		&visit.CompanyID,
		&visit.ScheduledAt,
		&visit.Notes,
		&visit.Status,
		&visit.CreatedAt,
		&visit.UpdatedAt,
	); err != nil {
		return nil, err
	}
	ids, err := r.linkedIncidents(ctx, visit.ID)
	if err != nil {
		return nil, err
	}
	visit.IncidentIDs = ids
	return &visit, nil
}

func (r *visitRepository) Delete(ctx context.Context, id string) error {
	cmd, err := querier(ctx, r.pool).Exec(ctx, `DELETE FROM visits WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *visitRepository) ListByBuildings(ctx context.Context, buildingIDs []string, limit, offset int) ([]domain.Visit, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := `
        SELECT id, building_id, company_id, scheduled_at, notes, status, created_at, updated_at
        FROM visits`
	args := []any{}
	if buildingIDs != nil {
		query += ` WHERE building_id = ANY($1)`
		args = append(args, buildingIDs)
	}
	query += fmt.Sprintf(` ORDER BY scheduled_at DESC LIMIT %d OFFSET %d`, limit, offset)

	rows, err := querier(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Visit
	for rows.Next() {
		var visit domain.Visit
		if err := rows.Scan(
			&visit.ID,
			&visit.BuildingID,
			&visit.CompanyID,
			&visit.ScheduledAt,
			&visit.Notes,
			&visit.Status,
			&visit.CreatedAt,
			&visit.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, visit)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range result {
		ids, err := r.linkedIncidents(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].IncidentIDs = ids
	}
	return result, nil
}

func (r *visitRepository) linkedIncidents(ctx context.Context, visitID string) ([]string, error) {
	rows, err := querier(ctx, r.pool).Query(ctx,
		`SELECT id FROM incidents WHERE visit_id=$1 ORDER BY created_at`, visitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

