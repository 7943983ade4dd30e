package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"peopledesk/internal/domain/auth"
)

const testSecret = "middleware-test-secret"

func issueToken(t *testing.T, role string) string {
	t.Helper()
	token, err := auth.GenerateToken(testSecret, auth.Claims{
		UserID:     "user-1",
		Role:       role,
		EmployeeID: "emp-1",
	}, time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

func TestAuthPopulatesUserContext(t *testing.T) {
	var got auth.UserContext
	var found bool
	handler := Auth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, found = GetUser(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, auth.RoleEmployee))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !found {
		t.Fatal("user missing from context")
	}
	if got.UserID != "user-1" || got.Role != auth.RoleEmployee || got.EmployeeID != "emp-1" {
		t.Fatalf("user = %+v", got)
	}
}

func TestAuthIgnoresInvalidToken(t *testing.T) {
	handler := Auth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r.Context()); ok {
			t.Fatal("invalid token populated user context")
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	handler.ServeHTTP(httptest.NewRecorder(), req)
}

func TestRequireAuth(t *testing.T) {
	handler := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous request status = %d", rec.Code)
	}

	chained := Auth(testSecret)(handler)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, auth.RoleEmployee))
	rec = httptest.NewRecorder()
	chained.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("authenticated request status = %d", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	handler := Auth(testSecret)(RequireRole(auth.RoleHR)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	req := httptest.NewRequest(http.MethodGet, "/audit", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, auth.RoleEmployee))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("employee role status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/audit", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, auth.RoleHR))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("hr role status = %d", rec.Code)
	}
}
