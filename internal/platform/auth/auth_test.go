package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

var testCfg = JWTConfig{
	Issuer:     "slimclinic-test",
	SigningKey: []byte("0123456789abcdef0123456789abcdef"),
}

func doRequest(t *testing.T, mw echo.MiddlewareFunc, req *http.Request) error {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}
	return mw(handler)(c)
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	token, err := IssueToken(testCfg, "user-1", []string{RoleClinician}, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	if err := doRequest(t, JWTMiddleware(testCfg), req); err != nil {
		t.Fatalf("expected valid token to pass, got: %v", err)
	}
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	err := doRequest(t, JWTMiddleware(testCfg), req)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got: %v", err)
	}
}

func TestJWTMiddleware_BadScheme(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic abc")
	err := doRequest(t, JWTMiddleware(testCfg), req)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got: %v", err)
	}
}

func TestJWTMiddleware_WrongKey(t *testing.T) {
	other := JWTConfig{Issuer: testCfg.Issuer, SigningKey: []byte("another-secret-key-of-32-bytes!!")}
	token, err := IssueToken(other, "user-1", []string{RoleClinician}, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	err = doRequest(t, JWTMiddleware(testCfg), req)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong signing key, got: %v", err)
	}
}

func TestJWTMiddleware_ExpiredToken(t *testing.T) {
	token, err := IssueToken(testCfg, "user-1", []string{RoleClinician}, -time.Minute)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	err = doRequest(t, JWTMiddleware(testCfg), req)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got: %v", err)
	}
}

func TestJWTMiddleware_SetsContext(t *testing.T) {
	token, err := IssueToken(testCfg, "user-42", []string{RoleFrontDesk}, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		ctx := c.Request().Context()
		if got := UserIDFromContext(ctx); got != "user-42" {
			t.Errorf("expected user-42, got %q", got)
		}
		roles := RolesFromContext(ctx)
		if len(roles) != 1 || roles[0] != RoleFrontDesk {
			t.Errorf("unexpected roles: %v", roles)
		}
		return c.NoContent(http.StatusOK)
	}
	if err := JWTMiddleware(testCfg)(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRequireRole_Allows(t *testing.T) {
	token, _ := IssueToken(testCfg, "u", []string{RoleClinician}, time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	chained := JWTMiddleware(testCfg)(RequireRole(RoleClinician)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}))
	if err := chained(c); err != nil {
		t.Fatalf("expected clinician to pass, got: %v", err)
	}
}

func TestRequireRole_AdminBypass(t *testing.T) {
	token, _ := IssueToken(testCfg, "u", []string{RoleAdmin}, time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	chained := JWTMiddleware(testCfg)(RequireRole(RoleClinician)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}))
	if err := chained(c); err != nil {
		t.Fatalf("expected admin to pass any role check, got: %v", err)
	}
}

func TestRequireRole_Denies(t *testing.T) {
	token, _ := IssueToken(testCfg, "u", []string{RoleFrontDesk}, time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	chained := JWTMiddleware(testCfg)(RequireRole(RoleClinician)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}))
	err := chained(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got: %v", err)
	}
}

func TestDevAuthMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		roles := RolesFromContext(c.Request().Context())
		if len(roles) != 1 || roles[0] != RoleAdmin {
			t.Errorf("expected admin role in dev mode, got %v", roles)
		}
		return c.NoContent(http.StatusOK)
	}
	if err := DevAuthMiddleware()(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
