package admin

import (
	"context"
	"errors"
	"testing"

	"github.com/go-auth-onboarding/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockAdminStore struct{ mock.Mock }

func (m *mockAdminStore) Create(ctx context.Context, a *domain.Admin) error {
	return m.Called(ctx, a).Error(0)
}
func (m *mockAdminStore) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	args := m.Called(ctx, email)
	if a, _ := args.Get(0).(*domain.Admin); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockJWTSigner struct{ mock.Mock }

func (m *mockJWTSigner) Sign(identityID string) (string, error) {
	args := m.Called(identityID)
	return args.String(0), args.Error(1)
}

func TestRegister_Success(t *testing.T) {
	as := &mockAdminStore{}
	as.On("GetByEmail", mock.Anything, "root@example.com").Return(nil, domain.ErrNotFound)
	as.On("Create", mock.Anything, mock.AnythingOfType("*domain.Admin")).Return(nil)

	a, err := NewService(ServiceDeps{AdminRepo: as}).Register(context.Background(), domain.RegisterAdminRequest{
		Name: "Root", Email: "Root@Example.com", Password: "password123",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, a.AdminID)
	assert.Equal(t, "root@example.com", a.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte("password123")))
	as.AssertExpectations(t)
}

func TestRegister_Duplicate(t *testing.T) {
	as := &mockAdminStore{}
	as.On("GetByEmail", mock.Anything, "root@example.com").Return(&domain.Admin{}, nil)

	_, err := NewService(ServiceDeps{AdminRepo: as}).Register(context.Background(), domain.RegisterAdminRequest{
		Name: "Root", Email: "root@example.com", Password: "password123",
	})

	assert.True(t, errors.Is(err, domain.ErrConflict))
	as.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	as, jwt := &mockAdminStore{}, &mockJWTSigner{}
	as.On("GetByEmail", mock.Anything, "root@example.com").Return(&domain.Admin{AdminID: "adm-1", PasswordHash: string(hash)}, nil)
	as.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, domain.ErrNotFound)
	jwt.On("Sign", "adm-1").Return("tok", nil)
	svc := NewService(ServiceDeps{AdminRepo: as, JWTProvider: jwt})

	token, err := svc.Login(context.Background(), domain.LoginRequest{Email: "root@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "tok", token)

	_, err = svc.Login(context.Background(), domain.LoginRequest{Email: "root@example.com", Password: "wrong-pass"})
	assert.True(t, errors.Is(err, domain.ErrInvalidCredentials))

	_, err = svc.Login(context.Background(), domain.LoginRequest{Email: "ghost@example.com", Password: "password123"})
	assert.True(t, errors.Is(err, domain.ErrInvalidCredentials))
}
