package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/forgo/jobs/api/internal/middleware"
	"github.com/forgo/jobs/api/internal/model"
	"github.com/forgo/jobs/api/internal/service"
)

// ============================================================================
// Mock AuthService
// ============================================================================

type mockAuthService struct {
	registerFunc func(ctx context.Context, req service.RegisterRequest) (*service.AuthResult, error)
	loginFunc    func(ctx context.Context, req service.LoginRequest) (*service.AuthResult, error)
}

func (m *mockAuthService) Register(ctx context.Context, req service.RegisterRequest) (*service.AuthResult, error) {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, req)
	}
	return nil, nil
}

func (m *mockAuthService) Login(ctx context.Context, req service.LoginRequest) (*service.AuthResult, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, req)
	}
	return nil, nil
}

// ============================================================================
// Test Helpers
// ============================================================================

func newTestUser() *model.User {
	now := time.Now()
	return &model.User{
		ID:        "user:123",
		Email:     "a@x.com",
		Name:      "Ann",
		CreatedOn: now,
		UpdatedOn: now,
	}
}

func makeJSONRequest(method, path string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func makeRawRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withUserContext(req *http.Request, userID string) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, userID)
	return req.WithContext(ctx)
}

func parseErrorResponse(t *testing.T, body []byte) *model.ProblemDetails {
	t.Helper()
	var problem model.ProblemDetails
	if err := json.Unmarshal(body, &problem); err != nil {
		t.Fatalf("failed to parse error response: %v", err)
	}
	if problem.Message == "" {
		t.Errorf("error body has no message: %s", body)
	}
	return &problem
}

// ============================================================================
// Register Tests
// ============================================================================

func TestAuthHandler_Register_Success(t *testing.T) {
	t.Parallel()

	var got service.RegisterRequest
	mock := &mockAuthService{
		registerFunc: func(ctx context.Context, req service.RegisterRequest) (*service.AuthResult, error) {
			got = req
			return &service.AuthResult{User: newTestUser(), Token: "tok"}, nil
		},
	}
	h := NewAuthHandler(mock)

	rr := httptest.NewRecorder()
	h.Register(rr, makeJSONRequest(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email": " A@X.com ", "password": "pw123456", "name": " Ann ",
	}))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if got.Email != "a@x.com" || got.Name != "Ann" {
		t.Errorf("expected normalized input, got %+v", got)
	}

	var resp model.AuthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Token != "tok" || resp.User.Name != "Ann" || resp.User.Email != "a@x.com" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if strings.Contains(rr.Body.String(), "hash") {
		t.Error("response must not include the password hash")
	}
}

func TestAuthHandler_Register_ValidationFailsBeforeService(t *testing.T) {
	t.Parallel()

	called := false
	h := NewAuthHandler(&mockAuthService{
		registerFunc: func(ctx context.Context, req service.RegisterRequest) (*service.AuthResult, error) {
			called = true
			return nil, nil
		},
	})

	rr := httptest.NewRecorder()
	h.Register(rr, makeJSONRequest(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email": "not-an-email", "password": "pw1",
	}))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if called {
		t.Error("service must not be called with invalid input")
	}

	problem := parseErrorResponse(t, rr.Body.Bytes())
	fields := map[string]bool{}
	for _, fe := range problem.Errors {
		fields[fe.Field] = true
	}
	for _, f := range []string{"email", "password", "name"} {
		if !fields[f] {
			t.Errorf("expected field error on %q, got %+v", f, problem.Errors)
		}
	}
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	t.Parallel()

	h := NewAuthHandler(&mockAuthService{
		registerFunc: func(ctx context.Context, req service.RegisterRequest) (*service.AuthResult, error) {
			return nil, service.ErrEmailAlreadyExists
		},
	})

	rr := httptest.NewRecorder()
	h.Register(rr, makeJSONRequest(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email": "a@x.com", "password": "pw123456", "name": "Ann",
	}))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if problem := parseErrorResponse(t, rr.Body.Bytes()); problem.Message != "Email already in use" {
		t.Errorf("unexpected message %q", problem.Message)
	}
}

func TestAuthHandler_Register_BadBodies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"malformed", `{"email":`},
		{"unknown field", `{"email":"a@x.com","password":"pw123456","name":"Ann","admin":true}`},
	}

	h := NewAuthHandler(&mockAuthService{})
	for _, tt := range tests {
		rr := httptest.NewRecorder()
		h.Register(rr, makeRawRequest(http.MethodPost, "/api/v1/auth/register", tt.body))

		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", tt.name, rr.Code)
		}
		parseErrorResponse(t, rr.Body.Bytes())
	}
}

// ============================================================================
// Login Tests
// ============================================================================

func TestAuthHandler_Login_Success(t *testing.T) {
	t.Parallel()

	h := NewAuthHandler(&mockAuthService{
		loginFunc: func(ctx context.Context, req service.LoginRequest) (*service.AuthResult, error) {
			return &service.AuthResult{User: newTestUser(), Token: "tok"}, nil
		},
	})

	rr := httptest.NewRecorder()
	h.Login(rr, makeJSONRequest(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": "a@x.com", "password": "pw123456",
	}))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp model.AuthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Token != "tok" {
		t.Errorf("expected token, got %+v", resp)
	}
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	t.Parallel()

	h := NewAuthHandler(&mockAuthService{})
	rr := httptest.NewRecorder()
	h.Login(rr, makeJSONRequest(http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "a@x.com"}))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if problem := parseErrorResponse(t, rr.Body.Bytes()); problem.Message != "Please provide email and password" {
		t.Errorf("unexpected message %q", problem.Message)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	t.Parallel()

	h := NewAuthHandler(&mockAuthService{
		loginFunc: func(ctx context.Context, req service.LoginRequest) (*service.AuthResult, error) {
			return nil, service.ErrInvalidCredentials
		},
	})

	rr := httptest.NewRecorder()
	h.Login(rr, makeJSONRequest(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": "a@x.com", "password": "wrong-password",
	}))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if problem := parseErrorResponse(t, rr.Body.Bytes()); problem.Message != "Invalid credentials" {
		t.Errorf("unexpected message %q", problem.Message)
	}
}

func TestAuthHandler_Login_StoreFailureIsOpaque(t *testing.T) {
	t.Parallel()

	h := NewAuthHandler(&mockAuthService{
		loginFunc: func(ctx context.Context, req service.LoginRequest) (*service.AuthResult, error) {
			return nil, errors.New("dial tcp 10.0.0.5:8000: connection refused")
		},
	})

	rr := httptest.NewRecorder()
	h.Login(rr, makeJSONRequest(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": "a@x.com", "password": "pw123456",
	}))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "10.0.0.5") {
		t.Errorf("internal detail leaked: %s", rr.Body.String())
	}
}
