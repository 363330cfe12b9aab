package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-auth-onboarding/internal/domain"
	"github.com/go-auth-onboarding/internal/pkg/id"
	"github.com/rs/zerolog"
)

// Service manages the services customers select and admins activate.
type Service interface {
	Select(ctx context.Context, callerID string, req domain.SelectServiceRequest) (*domain.Service, error)
	Activate(ctx context.Context, callerID, serviceID string) (*domain.Service, error)
	List(ctx context.Context, callerID string) ([]domain.Service, error)
}

type serviceStore interface {
	Create(ctx context.Context, s *domain.Service) error
	Get(ctx context.Context, serviceID string) (*domain.Service, error)
	Activate(ctx context.Context, serviceID string, at time.Time) error
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Service, error)
	List(ctx context.Context) ([]domain.Service, error)
}

type customerLookup interface {
	Get(ctx context.Context, customerID string) (*domain.Customer, error)
}

type authorizer interface {
	IsAdmin(ctx context.Context, identityID string) (bool, error)
	AuthorizeOwner(ctx context.Context, identityID, customerID string) error
}

type service struct {
	repo      serviceStore
	customers customerLookup
	access    authorizer
	now       func() time.Time
}

type ServiceDeps struct {
	ServiceRepo  serviceStore
	CustomerRepo customerLookup
	Access       authorizer
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:      deps.ServiceRepo,
		customers: deps.CustomerRepo,
		access:    deps.Access,
		now:       time.Now,
	}
}

func (s *service) Select(ctx context.Context, callerID string, req domain.SelectServiceRequest) (*domain.Service, error) {
	if err := s.access.AuthorizeOwner(ctx, callerID, req.CustomerID); err != nil {
		return nil, err
	}
	if _, err := s.customers.Get(ctx, req.CustomerID); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	svc := &domain.Service{
		ServiceID:   id.New(),
		CustomerID:  req.CustomerID,
		ServiceName: strings.TrimSpace(req.ServiceName),
		Status:      domain.ServiceStatusSelected,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *service) Activate(ctx context.Context, callerID, serviceID string) (*domain.Service, error) {
	admin, err := s.access.IsAdmin(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !admin {
		return nil, fmt.Errorf("only admins activate services: %w", domain.ErrForbidden)
	}
	if err := s.repo.Activate(ctx, serviceID, s.now()); err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Info().Str("service_id", serviceID).Str("admin_id", callerID).Msg("service activated")
	return s.repo.Get(ctx, serviceID)
}

// List returns every service to an admin and only the caller's own to a customer.
func (s *service) List(ctx context.Context, callerID string) ([]domain.Service, error) {
	admin, err := s.access.IsAdmin(ctx, callerID)
	if err != nil {
		return nil, err
	}
	var out []domain.Service
	if admin {
		out, err = s.repo.List(ctx)
	} else {
		out, err = s.repo.ListByCustomer(ctx, callerID)
	}
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Service{}
	}
	return out, nil
}
