package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/condoops/incident-service/internal/domain"
)

// UserRepository encapsulates user and membership persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	AddMembership(ctx context.Context, userID, buildingID string) error
	RemoveMembership(ctx context.Context, userID, buildingID string) error
	ListByBuildingAndRole(ctx context.Context, buildingID string, role domain.Role) ([]domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository instantiates repository.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (name, email, password_hash, role, active)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return querier(ctx, r.pool).QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Active,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `
        SELECT id, name, email, password_hash, role, active, created_at, updated_at
        FROM users WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
        SELECT id, name, email, password_hash, role, active, created_at, updated_at
        FROM users WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := querier(ctx, r.pool).QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Active,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	buildings, err := r.memberships(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.BuildingIDs = buildings
	return &user, nil
}

func (r *userRepository) memberships(ctx context.Context, userID string) ([]string, error) {
	rows, err := querier(ctx, r.pool).Query(ctx,
		`SELECT building_id FROM building_memberships WHERE user_id=$1`, userID)
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

func (r *userRepository) AddMembership(ctx context.Context, userID, buildingID string) error {
	_, err := querier(ctx, r.pool).Exec(ctx, `
        INSERT INTO building_memberships (user_id, building_id)
        VALUES ($1,$2) ON CONFLICT DO NOTHING`, userID, buildingID)
	return err
}

func (r *userRepository) RemoveMembership(ctx context.Context, userID, buildingID string) error {
	cmd, err := querier(ctx, r.pool).Exec(ctx,
		`DELETE FROM building_memberships WHERE user_id=$1 AND building_id=$2`, userID, buildingID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) ListByBuildingAndRole(ctx context.Context, buildingID string, role domain.Role) ([]domain.User, error) {
	const query = `
        SELECT u.id, u.name, u.email, u.password_hash, u.role, u.active, u.created_at, u.updated_at
        FROM users u
        JOIN building_memberships m ON m.user_id = u.id
        WHERE m.building_id=$1 AND u.role=$2 AND u.active`
	rows, err := querier(ctx, r.pool).Query(ctx, query, buildingID, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.PasswordHash,
			&user.Role,
			&user.Active,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}
