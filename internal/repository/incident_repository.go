package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/condoops/incident-service/internal/domain"
)

// IncidentFilter captures listing parameters. BuildingIDs scopes the result to
// the caller's effective building set; nil means unrestricted.
type IncidentFilter struct {
	BuildingIDs  []string
	ReportedByID *string
	AssigneeID   *string
	Statuses     []domain.IncidentStatus
	Priorities   []domain.IncidentPriority
	ServiceType  *domain.ServiceType
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	Limit        int
	Offset       int
}

// IncidentRepository encapsulates incident persistence.
type IncidentRepository interface {
	Create(ctx context.Context, incident *domain.Incident) error
	Update(ctx context.Context, incident *domain.Incident) error
	GetByID(ctx context.Context, id string) (*domain.Incident, error)
	Delete(ctx context.Context, id string) error
	ListWithFilter(ctx context.Context, filter IncidentFilter) ([]domain.Incident, error)
	ListByVisit(ctx context.Context, visitID string) ([]domain.Incident, error)
	CountByBuilding(ctx context.Context, buildingID string, reportedByID *string) (map[domain.IncidentStatus]int, error)
}

type incidentRepository struct {
	pool *pgxpool.Pool
}

// NewIncidentRepository instantiates repository.
func NewIncidentRepository(pool *pgxpool.Pool) IncidentRepository {
	return &incidentRepository{pool: pool}
}

const incidentColumns = `id, building_id, reported_by_id, service_type, description, priority, status,
       assignee_id, visit_id, verified_description, resolution_kind, closing_comment, rejection_reason,
       assigned_at, verified_at, escalated_at, rejected_at, closed_at, created_at, updated_at`

func (r *incidentRepository) Create(ctx context.Context, incident *domain.Incident) error {
	const query = `
        INSERT INTO incidents (building_id, reported_by_id, service_type, description, priority, status)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return querier(ctx, r.pool).QueryRow(ctx, query,
		incident.BuildingID,
		incident.ReportedByID,
		incident.ServiceType,
		incident.Description,
		incident.Priority,
		incident.Status,
	).Scan(&incident.ID, &incident.CreatedAt, &incident.UpdatedAt)
}

func (r *incidentRepository) Update(ctx context.Context, incident *domain.Incident) error {
	const query = `
        UPDATE incidents SET service_type=$1, description=$2, priority=$3, status=$4, assignee_id=$5,
            visit_id=$6, verified_description=$7, resolution_kind=$8, closing_comment=$9, rejection_reason=$10,
            assigned_at=$11, verified_at=$12, escalated_at=$13, rejected_at=$14, closed_at=$15, updated_at=NOW()
        WHERE id=$16`
	cmd, err := querier(ctx, r.pool).Exec(ctx, query,
		incident.ServiceType,
		incident.Description,
		incident.Priority,
		incident.Status,
		incident.AssigneeID,
		incident.VisitID,
		incident.VerifiedDescription,
		incident.ResolutionKind,
		incident.ClosingComment,
		incident.RejectionReason,
		incident.AssignedAt,
		incident.VerifiedAt,
		incident.EscalatedAt,
		incident.RejectedAt,
		incident.ClosedAt,
		incident.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *incidentRepository) GetByID(ctx context.Context, id string) (*domain.Incident, error) {
	query := fmt.Sprintf(`SELECT %s FROM incidents WHERE id=$1`, incidentColumns)
	var incident domain.Incident
	if err := scanIncident(querier(ctx, r.pool).QueryRow(ctx, query, id), &incident); err != nil {
		return nil, err
	}
	return &incident, nil
}

func (r *incidentRepository) Delete(ctx context.Context, id string) error {
	cmd, err := querier(ctx, r.pool).Exec(ctx, `DELETE FROM incidents WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *incidentRepository) ListWithFilter(ctx context.Context, filter IncidentFilter) ([]domain.Incident, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if len(filter.BuildingIDs) > 0 {
		args = append(args, filter.BuildingIDs)
		clauses = append(clauses, fmt.Sprintf("building_id = ANY($%d)", len(args)))
	}
	if filter.ReportedByID != nil {
		args = append(args, *filter.ReportedByID)
		clauses = append(clauses, fmt.Sprintf("reported_by_id=$%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("assignee_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.ServiceType != nil {
		args = append(args, *filter.ServiceType)
		clauses = append(clauses, fmt.Sprintf("service_type=$%d", len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	// URGENTE before NORMAL, newest first within a tier.
	query := fmt.Sprintf(`SELECT %s FROM incidents WHERE %s
        ORDER BY CASE priority WHEN 'URGENTE' THEN 0 ELSE 1 END, created_at DESC
        LIMIT %d OFFSET %d`,
		incidentColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := querier(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIncidents(rows)
}

func (r *incidentRepository) ListByVisit(ctx context.Context, visitID string) ([]domain.Incident, error) {
	query := fmt.Sprintf(`SELECT %s FROM incidents WHERE visit_id=$1 ORDER BY created_at`, incidentColumns)
	rows, err := querier(ctx, r.pool).Query(ctx, query, visitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIncidents(rows)
}

func (r *incidentRepository) CountByBuilding(ctx context.Context, buildingID string, reportedByID *string) (map[domain.IncidentStatus]int, error) {
	query := `SELECT status, COUNT(*) FROM incidents WHERE building_id=$1`
	args := []any{buildingID}
	if reportedByID != nil {
		args = append(args, *reportedByID)
		query += ` AND reported_by_id=$2`
	}
	query += ` GROUP BY status`

	rows, err := querier(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.IncidentStatus]int)
	for rows.Next() {
		var status domain.IncidentStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func scanIncident(row pgx.Row, incident *domain.Incident) error {
	return row.Scan(
		&incident.ID,
		&incident.BuildingID,
		&incident.ReportedByID,
		&incident.ServiceType,
		&incident.Description,
		&incident.Priority,
		&incident.Status,
		&incident.AssigneeID,
		&incident.VisitID,
		&incident.VerifiedDescription,
		&incident.ResolutionKind,
		&incident.ClosingComment,
		&incident.RejectionReason,
		&incident.AssignedAt,
		&incident.VerifiedAt,
		&incident.EscalatedAt,
		&incident.RejectedAt,
		&incident.ClosedAt,
		&incident.CreatedAt,
		&incident.UpdatedAt,
	)
}

func scanIncidents(rows pgx.Rows) ([]domain.Incident, error) {
	var result []domain.Incident
	for rows.Next() {
		var incident domain.Incident
		if err := scanIncident(rows, &incident); err != nil {
			return nil, err
		}
		result = append(result, incident)
	}
	return result, rows.Err()
}
