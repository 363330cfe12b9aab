package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-auth-onboarding/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AdminRepo persists admins in PostgreSQL.
type AdminRepo struct {
	pool *pgxpool.Pool
}

func NewAdminRepository(pool *pgxpool.Pool) *AdminRepo {
	return &AdminRepo{pool: pool}
}

func (r *AdminRepo) Create(ctx context.Context, a *domain.Admin) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO admins (admin_id, name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		a.AdminID, a.Name, a.Email, a.PasswordHash, a.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("admin email taken: %w", domain.ErrConflict)
		}
		return fmt.Errorf("insert admin: %w", err)
	}
	return nil
}

func (r *AdminRepo) Get(ctx context.Context, adminID string) (*domain.Admin, error) {
	return r.findOne(ctx, `SELECT admin_id, name, email, password_hash, created_at FROM admins WHERE admin_id = $1`, adminID)
}

func (r *AdminRepo) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	return r.findOne(ctx, `SELECT admin_id, name, email, password_hash, created_at FROM admins WHERE email = $1`, email)
}

func (r *AdminRepo) findOne(ctx context.Context, query, arg string) (*domain.Admin, error) {
	var a domain.Admin
	err := r.pool.QueryRow(ctx, query, arg).Scan(&a.AdminID, &a.Name, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("admin: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get admin: %w", err)
	}
	return &a, nil
}
