package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-auth-onboarding/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const serviceColumns = `service_id, customer_id, service_name, status, activated_at, created_at, updated_at`

// ServiceRepo persists selected services in PostgreSQL.
type ServiceRepo struct {
	pool *pgxpool.Pool
}

func NewServiceRepository(pool *pgxpool.Pool) *ServiceRepo {
	return &ServiceRepo{pool: pool}
}

func (r *ServiceRepo) Create(ctx context.Context, s *domain.Service) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO services (`+serviceColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ServiceID, s.CustomerID, s.ServiceName, s.Status, s.ActivatedAt, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("customer: %w", domain.ErrNotFound)
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("service: %w", domain.ErrConflict)
		}
		return fmt.Errorf("insert service: %w", err)
	}
	return nil
}

func (r *ServiceRepo) Get(ctx context.Context, serviceID string) (*domain.Service, error) {
	var s domain.Service
	err := r.pool.QueryRow(ctx, `SELECT `+serviceColumns+` FROM services WHERE service_id = $1`, serviceID).
		Scan(&s.ServiceID, &s.CustomerID, &s.ServiceName, &s.Status, &s.ActivatedAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("service: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get service: %w", err)
	}
	return &s, nil
}

// Activate flips the service to active, keeping the first activation time.
func (r *ServiceRepo) Activate(ctx context.Context, serviceID string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE services
		SET status = $2, activated_at = COALESCE(activated_at, $3), updated_at = $3
		WHERE service_id = $1`, serviceID, domain.ServiceStatusActive, at.UTC())
	if err != nil {
		return fmt.Errorf("activate service: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("service: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *ServiceRepo) ListByCustomer(ctx context.Context, customerID string) ([]domain.Service, error) {
	return r.list(ctx, `SELECT `+serviceColumns+` FROM services WHERE customer_id = $1 ORDER BY created_at`, customerID)
}

func (r *ServiceRepo) List(ctx context.Context) ([]domain.Service, error) {
	return r.list(ctx, `SELECT `+serviceColumns+` FROM services ORDER BY created_at`)
}

func (r *ServiceRepo) list(ctx context.Context, query string, args ...any) ([]domain.Service, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var out []domain.Service
	for rows.Next() {
		var s domain.Service
		if err := rows.Scan(&s.ServiceID, &s.CustomerID, &s.ServiceName, &s.Status, &s.ActivatedAt, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
