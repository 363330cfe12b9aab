package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-auth-onboarding/internal/config"
	"github.com/go-auth-onboarding/internal/domain"
	jwtinfra "github.com/go-auth-onboarding/internal/infrastructure/jwt"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── in-memory stores ──────────────────────────────────────────────────────

type memCustomers struct {
	mu   sync.Mutex
	byID map[string]*domain.Customer
}

func (m *memCustomers) Create(_ context.Context, c *domain.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == c.Email {
			return domain.ErrConflict
		}
	}
	cp := *c
	m.byID[c.CustomerID] = &cp
	return nil
}

func (m *memCustomers) Get(_ context.Context, id string) (*domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memCustomers) GetByEmail(_ context.Context, email string) (*domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.byID {
		if c.Email == email {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memCustomers) SetOTP(_ context.Context, id string, code int, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.OTP, c.OTPIssuedAt, c.OTPAttempts = &code, &at, 0
	return nil
}

func (m *memCustomers) RecordFailedOTP(_ context.Context, id string, maxAttempts int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	if c.OTPAttempts >= maxAttempts {
		return domain.ErrTooManyAttempts
	}
	c.OTPAttempts++
	return nil
}

func (m *memCustomers) ConsumeOTP(_ context.Context, id string, code int, check domain.OTPCheck) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	if err := c.RejectOTP(code, check); err != nil {
		return err
	}
	c.OTP, c.OTPIssuedAt, c.IsVerified = nil, nil, true
	return nil
}

type memAdmins struct {
	mu   sync.Mutex
	byID map[string]*domain.Admin
}

func (m *memAdmins) Create(_ context.Context, a *domain.Admin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == a.Email {
			return domain.ErrConflict
		}
	}
	cp := *a
	m.byID[a.AdminID] = &cp
	return nil
}

func (m *memAdmins) Get(_ context.Context, id string) (*domain.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memAdmins) GetByEmail(_ context.Context, email string) (*domain.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byID {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

type memServices struct {
	mu   sync.Mutex
	byID map[string]*domain.Service
}

func (m *memServices) Create(_ context.Context, s *domain.Service) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.byID[s.ServiceID] = &cp
	return nil
}

func (m *memServices) Get(_ context.Context, id string) (*domain.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memServices) Activate(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.Status = domain.ServiceStatusActive
	if s.ActivatedAt == nil {
		s.ActivatedAt = &at
	}
	s.UpdatedAt = at
	return nil
}

func (m *memServices) ListByCustomer(ctx context.Context, customerID string) ([]domain.Service, error) {
	all, _ := m.List(ctx)
	out := []domain.Service{}
	for _, s := range all {
		if s.CustomerID == customerID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memServices) List(_ context.Context) ([]domain.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Service{}
	for _, s := range m.byID {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ServiceID < out[j].ServiceID })
	return out, nil
}

type memDocuments struct {
	mu   sync.Mutex
	docs []domain.Document
}

func (m *memDocuments) Create(_ context.Context, d *domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = append(m.docs, *d)
	return nil
}

func (m *memDocuments) Get(_ context.Context, id string) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.docs {
		if d.DocumentID == id {
			cp := d
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memDocuments) ListByCustomer(_ context.Context, customerID string) ([]domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Document{}
	for _, d := range m.docs {
		if d.CustomerID == customerID {
			out = append(out, d)
		}
	}
	return out, nil
}

type memObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memObjects) Upload(_ context.Context, key string, r io.Reader, _ string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = b
	return nil
}

func (m *memObjects) PresignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://objects.test/" + key, nil
}

func (m *memObjects) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

type captureMailer struct {
	mu   sync.Mutex
	last map[string]string
}

func (c *captureMailer) SendEmail(to, _, body string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last[to] = body
	return nil
}

var otpPattern = regexp.MustCompile(`\b\d{6}\b`)

func (c *captureMailer) otpFor(t *testing.T, to string) string {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	code := otpPattern.FindString(c.last[to])
	require.NotEmpty(t, code, "no otp mailed to %s", to)
	return code
}

// ── harness ───────────────────────────────────────────────────────────────

type testServer struct {
	handler http.Handler
	mailer  *captureMailer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:      "router-test-secret",
		JWTExpiry:      time.Hour,
		OTPTTL:         10 * time.Minute,
		OTPMaxAttempts: 5,
		DocumentURLTTL: 15 * time.Minute,
		AllowedOrigins: []string{"*"},
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	}
	provider, err := jwtinfra.NewProvider(cfg)
	require.NoError(t, err)

	mailer := &captureMailer{last: map[string]string{}}
	h := NewRouter(cfg, &Deps{
		Logger:       zerolog.Nop(),
		CustomerRepo: &memCustomers{byID: map[string]*domain.Customer{}},
		AdminRepo:    &memAdmins{byID: map[string]*domain.Admin{}},
		ServiceRepo:  &memServices{byID: map[string]*domain.Service{}},
		DocumentRepo: &memDocuments{},
		ObjectStore:  &memObjects{objects: map[string][]byte{}},
		Mailer:       mailer,
		JWTProvider:  provider,
	})
	return &testServer{handler: h, mailer: mailer}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var out map[string]interface{}
	if strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec.Code, out
}

// ── tests ─────────────────────────────────────────────────────────────────

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t)
	code, body := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["message"])
}

func TestRouter_CustomerOnboardingFlow(t *testing.T) {
	s := newTestServer(t)
	register := map[string]string{
		"f_name":   "Kaushik",
		"l_name":   "Rao",
		"email":    "Kaushik@Example.com",
		"password": "password123",
		"phone_no": "+15550100",
		"address":  "1 Main St",
	}

	code, body := s.do(t, http.MethodPost, "/auth/register", "", register)
	require.Equal(t, http.StatusCreated, code, body)
	customerID, _ := body["customerId"].(string)
	require.NotEmpty(t, customerID)
	assert.NotEmpty(t, body["token"])

	code, body = s.do(t, http.MethodPost, "/auth/register", "", register)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Customer already exists", body["message"])

	login := map[string]string{"email": "kaushik@example.com", "password": "password123"}
	code, _ = s.do(t, http.MethodPost, "/auth/login", "", login)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(t, http.MethodPost, "/auth/verify-email", "", map[string]interface{}{
		"email": "kaushik@example.com", "otp": "000000x",
	})
	assert.Equal(t, http.StatusBadRequest, code)

	otp := s.mailer.otpFor(t, "kaushik@example.com")
	code, body = s.do(t, http.MethodPost, "/auth/verify-email", "", map[string]interface{}{
		"email": "kaushik@example.com", "otp": otp,
	})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, customerID, body["customerId"])

	code, _ = s.do(t, http.MethodPost, "/auth/resend-otp", "", map[string]string{"email": "kaushik@example.com"})
	assert.Equal(t, http.StatusConflict, code)

	code, body = s.do(t, http.MethodPost, "/auth/login", "", login)
	require.Equal(t, http.StatusOK, code, body)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	code, body = s.do(t, http.MethodPost, "/services/select-service", token, map[string]string{
		"serviceName": "Savings Account", "customerId": customerID,
	})
	require.Equal(t, http.StatusCreated, code, body)
	svc := body["service"].(map[string]interface{})
	assert.Equal(t, domain.ServiceStatusSelected, svc["status"])
	serviceID := svc["id"].(string)

	code, _ = s.do(t, http.MethodPost, "/services/activate-service", token, map[string]string{"serviceId": serviceID})
	assert.Equal(t, http.StatusForbidden, code)

	code, body = s.do(t, http.MethodPost, "/admin/register", "", map[string]string{
		"name": "Ops", "email": "ops@example.com", "password": "adminpass1",
	})
	require.Equal(t, http.StatusCreated, code, body)

	code, body = s.do(t, http.MethodPost, "/admin/register", "", map[string]string{
		"name": "Ops", "email": "ops@example.com", "password": "adminpass1",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Admin already exists", body["message"])

	code, body = s.do(t, http.MethodPost, "/admin/login", "", map[string]string{
		"email": "ops@example.com", "password": "adminpass1",
	})
	require.Equal(t, http.StatusOK, code, body)
	adminToken := body["token"].(string)

	code, body = s.do(t, http.MethodPost, "/services/activate-service", adminToken, map[string]string{"serviceId": serviceID})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, domain.ServiceStatusActive, body["service"].(map[string]interface{})["status"])
}

func TestRouter_ConcurrentWrongGuessesCannotExceedAttemptLimit(t *testing.T) {
	s := newTestServer(t)
	code, body := s.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"f_name": "Kaushik", "email": "race@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusCreated, code, body)
	otp := s.mailer.otpFor(t, "race@example.com")
	wrong := "111111"
	if otp == wrong {
		wrong = "111112"
	}

	const guesses = 100
	statuses := make(chan int, guesses)
	var wg sync.WaitGroup
	for i := 0; i < guesses; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			code, _ := s.do(t, http.MethodPost, "/auth/verify-email", "", map[string]string{
				"email": "race@example.com", "otp": wrong,
			})
			statuses <- code
		}()
	}
	wg.Wait()
	close(statuses)

	counts := map[int]int{}
	for c := range statuses {
		counts[c]++
	}
	assert.Equal(t, 5, counts[http.StatusBadRequest], "wrong guesses evaluated")
	assert.Equal(t, guesses-5, counts[http.StatusTooManyRequests])

	// The real code no longer works once the limit is used up.
	code, _ = s.do(t, http.MethodPost, "/auth/verify-email", "", map[string]string{
		"email": "race@example.com", "otp": otp,
	})
	assert.Equal(t, http.StatusTooManyRequests, code)
	code, _ = s.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "race@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusForbidden, code)

	// A resend resets the counter.
	code, _ = s.do(t, http.MethodPost, "/auth/resend-otp", "", map[string]string{"email": "race@example.com"})
	require.Equal(t, http.StatusOK, code)
	code, _ = s.do(t, http.MethodPost, "/auth/verify-email", "", map[string]string{
		"email": "race@example.com", "otp": s.mailer.otpFor(t, "race@example.com"),
	})
	assert.Equal(t, http.StatusOK, code)
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)
	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/services/select-service"},
		{http.MethodPost, "/services/activate-service"},
		{http.MethodGet, "/services/get-services"},
		{http.MethodGet, "/documents"},
	} {
		code, _ := s.do(t, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, code, tc.path)
	}
}

func TestRouter_LoginUnknownEmail(t *testing.T) {
	s := newTestServer(t)
	code, _ := s.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "nobody@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
}
