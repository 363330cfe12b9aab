package document

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/go-auth-onboarding/internal/domain"
	"github.com/go-auth-onboarding/internal/pkg/id"
	"github.com/rs/zerolog"
)

// MaxUploadSize caps a single uploaded document.
const MaxUploadSize = 10 << 20

type UploadInput struct {
	Reader      io.ReadSeeker
	Filename    string
	ContentType string
	Size        int64
	CustomerID  string
}

type Service interface {
	Upload(ctx context.Context, callerID string, input UploadInput) (*domain.Document, error)
	List(ctx context.Context, callerID, customerID string) ([]domain.Document, error)
	// Get returns the document metadata and a presigned download URL.
	Get(ctx context.Context, callerID, documentID string) (*domain.Document, string, error)
}

type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) error
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type documentStore interface {
	Create(ctx context.Context, d *domain.Document) error
	Get(ctx context.Context, documentID string) (*domain.Document, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Document, error)
}

type customerLookup interface {
	Get(ctx context.Context, customerID string) (*domain.Customer, error)
}

type authorizer interface {
	AuthorizeOwner(ctx context.Context, identityID, customerID string) error
}

type service struct {
	objects   objectStore
	repo      documentStore
	customers customerLookup
	access    authorizer
	urlTTL    time.Duration
}

type ServiceDeps struct {
	ObjectStore  objectStore
	DocumentRepo documentStore
	CustomerRepo customerLookup
	Access       authorizer
	URLTTL       time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		objects:   deps.ObjectStore,
		repo:      deps.DocumentRepo,
		customers: deps.CustomerRepo,
		access:    deps.Access,
		urlTTL:    deps.URLTTL,
	}
}

func (s *service) Upload(ctx context.Context, callerID string, input UploadInput) (*domain.Document, error) {
	if input.CustomerID == "" {
		return nil, fmt.Errorf("customerId is required: %w", domain.ErrBadRequest)
	}
	if input.Size > MaxUploadSize {
		return nil, fmt.Errorf("document exceeds %d bytes: %w", MaxUploadSize, domain.ErrBadRequest)
	}
	if err := s.access.AuthorizeOwner(ctx, callerID, input.CustomerID); err != nil {
		return nil, err
	}
	if _, err := s.customers.Get(ctx, input.CustomerID); err != nil {
		return nil, err
	}

	hasher := sha256.New()
	size, err := io.Copy(hasher, input.Reader)
	if err != nil {
		return nil, fmt.Errorf("hash document: %w", err)
	}
	if _, err := input.Reader.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind document: %w", err)
	}

	safeName := sanitizeFilename(input.Filename)
	contentType := input.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = contentTypeFromName(safeName)
	}
	docID := id.New()
	key := fmt.Sprintf("documents/%s/%s-%s", input.CustomerID, docID, safeName)
	if err := s.objects.Upload(ctx, key, input.Reader, contentType); err != nil {
		return nil, err
	}

	d := &domain.Document{
		DocumentID:  docID,
		CustomerID:  input.CustomerID,
		FileName:    safeName,
		ObjectKey:   key,
		ContentType: contentType,
		Size:        size,
		SHA256:      hex.EncodeToString(hasher.Sum(nil)),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, d); err != nil {
		// Do not leave an orphaned object behind.
		if delErr := s.objects.Delete(ctx, key); delErr != nil {
			zerolog.Ctx(ctx).Warn().Err(delErr).Str("key", key).Msg("failed to remove orphaned document object")
		}
		return nil, err
	}
	return d, nil
}

func (s *service) List(ctx context.Context, callerID, customerID string) ([]domain.Document, error) {
	if customerID == "" {
		customerID = callerID
	}
	if err := s.access.AuthorizeOwner(ctx, callerID, customerID); err != nil {
		return nil, err
	}
	docs, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	return docs, nil
}

func (s *service) Get(ctx context.Context, callerID, documentID string) (*domain.Document, string, error) {
	d, err := s.repo.Get(ctx, documentID)
	if err != nil {
		return nil, "", err
	}
	if err := s.access.AuthorizeOwner(ctx, callerID, d.CustomerID); err != nil {
		return nil, "", err
	}
	url, err := s.objects.PresignedURL(ctx, d.ObjectKey, s.urlTTL)
	if err != nil {
		return nil, "", err
	}
	return d, url, nil
}

func contentTypeFromName(filename string) string {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".jpg") || strings.HasSuffix(lower, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(lower, ".png"):
		return "image/png"
	case strings.HasSuffix(lower, ".pdf"):
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// sanitizeFilename strips directory components and keeps only alphanumerics,
// dot, dash and underscore so the name is safe inside an S3 key.
func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	if result := b.String(); result != "" && result != "." && result != ".." {
		return result
	}
	return "_"
}
