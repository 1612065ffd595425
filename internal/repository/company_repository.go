package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/condoops/incident-service/internal/domain"
)

// CompanyRepository encapsulates external company persistence.
type CompanyRepository interface {
	Create(ctx context.Context, company *domain.Company) error
	GetByID(ctx context.Context, id string) (*domain.Company, error)
	List(ctx context.Context) ([]domain.Company, error)
}

type companyRepository struct {
	pool *pgxpool.Pool
}

// NewCompanyRepository instantiates repository.
func NewCompanyRepository(pool *pgxpool.Pool) CompanyRepository {
	return &companyRepository{pool: pool}
}

func (r *companyRepository) Create(ctx context.Context, company *domain.Company) error {
	const query = `
        INSERT INTO companies (name, email, phone, service_types, active)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	types := make([]string, 0, len(company.ServiceTypes))
	for _, t := range company.ServiceTypes {
		types = append(types, string(t))
	}
	return querier(ctx, r.pool).QueryRow(ctx, query,
		company.Name,
		company.Email,
		company.Phone,
		types,
		company.Active,
	).Scan(&company.ID, &company.CreatedAt, &company.UpdatedAt)
}

func (r *companyRepository) GetByID(ctx context.Context, id string) (*domain.Company, error) {
	const query = `
        SELECT id, name, email, phone, service_types, active, created_at, updated_at
        FROM companies WHERE id=$1`
	var company domain.Company
	var types []string
	if err := querier(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&company.ID,
		&company.Name,
		&company.Email,
		&company.Phone,
		&types,
		&company.Active,
		&company.CreatedAt,
		&company.UpdatedAt,
	); err != nil {
		return nil, err
	}
	for _, t := range types {
		company.ServiceTypes = append(company.ServiceTypes, domain.ServiceType(t))
	}
	return &company, nil
}

func (r *companyRepository) List(ctx context.Context) ([]domain.Company, error) {
	const query = `
        SELECT id, name, email, phone, service_types, active, created_at, updated_at
        FROM companies ORDER BY name`
	rows, err := querier(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Company
	for rows.Next() {
		var company domain.Company
		var types []string
		if err := rows.Scan(
			&company.ID,
			&company.Name,
			&company.Email,
			&company.Phone,
			&types,
			&company.Active,
			&company.CreatedAt,
			&company.UpdatedAt,
		); err != nil {
			return nil, err
		}
		for _, t := range types {
			company.ServiceTypes = append(company.ServiceTypes, domain.ServiceType(t))
		}
		result = append(result, company)
	}
	return result, rows.Err()
}
