package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/condoops/incident-service/internal/domain"
)

// CommentRepository encapsulates the append-only incident comment trail.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	ListByIncident(ctx context.Context, incidentID string) ([]domain.Comment, error)
}

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository instantiates repository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	const query = `
        INSERT INTO comments (incident_id, author_id, body, is_system)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return querier(ctx, r.pool).QueryRow(ctx, query,
		comment.IncidentID,
		comment.AuthorID,
		comment.Body,
		comment.System,
	).Scan(&comment.ID, &comment.CreatedAt)
}

func (r *commentRepository) ListByIncident(ctx context.Context, incidentID string) ([]domain.Comment, error) {
	const query = `
        SELECT id, incident_id, author_id, body, is_system, created_at
        FROM comments WHERE incident_id=$1 ORDER BY created_at`
	rows, err := querier(ctx, r.pool).Query(ctx, query, incidentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Comment
	for rows.Next() {
		var comment domain.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.IncidentID,
			&comment.AuthorID,
			&comment.Body,
			&comment.System,
			&comment.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, comment)
	}
	return result, rows.Err()
}
