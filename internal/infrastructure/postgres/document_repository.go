package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-auth-onboarding/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const documentColumns = `document_id, customer_id, file_name, object_key, content_type, size, sha256, created_at`

// DocumentRepo persists uploaded document metadata in PostgreSQL.
type DocumentRepo struct {
	pool *pgxpool.Pool
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepo {
	return &DocumentRepo{pool: pool}
}

func (r *DocumentRepo) Create(ctx context.Context, d *domain.Document) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO documents (`+documentColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		d.DocumentID, d.CustomerID, d.FileName, d.ObjectKey, d.ContentType, d.Size, d.SHA256, d.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("customer: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepo) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+documentColumns+` FROM documents WHERE document_id = $1`, documentID)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	d, err := pgx.CollectExactlyOneRow(rows, scanDocument)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("document: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return &d, nil
}

// ListByCustomer returns the customer's documents, newest first.
func (r *DocumentRepo) ListByCustomer(ctx context.Context, customerID string) ([]domain.Document, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+documentColumns+` FROM documents WHERE customer_id = $1 ORDER BY created_at DESC`, customerID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	docs, err := pgx.CollectRows(rows, scanDocument)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

func scanDocument(row pgx.CollectableRow) (domain.Document, error) {
	var d domain.Document
	err := row.Scan(&d.DocumentID, &d.CustomerID, &d.FileName, &d.ObjectKey, &d.ContentType, &d.Size, &d.SHA256, &d.CreatedAt)
	return d, err
}
