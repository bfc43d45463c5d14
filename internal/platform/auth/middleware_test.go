package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

var testSigningKey = []byte("test-secret-key-for-unit-tests-only")

func createTestToken(t *testing.T, claims Claims, key []byte) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenStr, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return tokenStr
}

func validClaims() Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "clinician-7",
			Issuer:    "alzrisk-test",
			Audience:  jwt.ClaimStrings{"alzrisk"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Roles: []string{RoleClinician},
	}
}

func testConfig() JWTConfig {
	return JWTConfig{Issuer: "alzrisk-test", Audience: "alzrisk", SigningKey: testSigningKey}
}

func runJWT(t *testing.T, cfg JWTConfig, header string) (*http.Request, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assessments", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/v1/assessments")

	var seen *http.Request
	err := JWTMiddleware(cfg)(func(c echo.Context) error {
		seen = c.Request()
		return c.NoContent(http.StatusOK)
	})(c)
	return seen, err
}

func expectStatus(t *testing.T, err error, code int) {
	t.Helper()
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T (%v)", err, err)
	}
	if httpErr.Code != code {
		t.Errorf("expected %d, got %d", code, httpErr.Code)
	}
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	_, err := runJWT(t, testConfig(), "")
	expectStatus(t, err, http.StatusUnauthorized)
}

func TestJWTMiddleware_InvalidFormat(t *testing.T) {
	_, err := runJWT(t, testConfig(), "Basic dXNlcjpwYXNz")
	expectStatus(t, err, http.StatusUnauthorized)
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	tokenStr := createTestToken(t, validClaims(), testSigningKey)

	req, err := runJWT(t, testConfig(), "Bearer "+tokenStr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req == nil {
		t.Fatal("expected handler to be called")
	}
	if uid := UserIDFromContext(req.Context()); uid != "clinician-7" {
		t.Errorf("expected user clinician-7, got %q", uid)
	}
	if roles := RolesFromContext(req.Context()); len(roles) != 1 || roles[0] != RoleClinician {
		t.Errorf("expected clinician role, got %v", roles)
	}
}

func TestJWTMiddleware_Rejections(t *testing.T) {
	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	wrongIssuer := validClaims()
	wrongIssuer.Issuer = "someone-else"

	wrongAudience := validClaims()
	wrongAudience.Audience = jwt.ClaimStrings{"other"}

	noExpiry := validClaims()
	noExpiry.ExpiresAt = nil

	tests := []struct {
		name  string
		token string
	}{
		{"expired", createTestToken(t, expired, testSigningKey)},
		{"wrong issuer", createTestToken(t, wrongIssuer, testSigningKey)},
		{"wrong audience", createTestToken(t, wrongAudience, testSigningKey)},
		{"no expiry", createTestToken(t, noExpiry, testSigningKey)},
		{"wrong key", createTestToken(t, validClaims(), []byte("another-secret-key-of-enough-length"))},
		{"garbage", "not.a.jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runJWT(t, testConfig(), "Bearer "+tt.token)
			expectStatus(t, err, http.StatusUnauthorized)
		})
	}
}

func TestJWTMiddleware_RejectsNoneAlgorithm(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, validClaims())
	tokenStr, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to build unsigned token: %v", err)
	}
	_, err = runJWT(t, testConfig(), "Bearer "+tokenStr)
	expectStatus(t, err, http.StatusUnauthorized)
}

func TestJWTMiddleware_SkipsPublicPaths(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/health")

	called := false
	err := JWTMiddleware(testConfig())(func(c echo.Context) error {
		called = true
		return nil
	})(c)
	if err != nil || !called {
		t.Fatalf("expected /health to bypass auth, err=%v called=%v", err, called)
	}
}

func TestDevAuthMiddleware(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	var roles []string
	var uid string
	DevAuthMiddleware()(func(c echo.Context) error {
		roles = RolesFromContext(c.Request().Context())
		uid = UserIDFromContext(c.Request().Context())
		return nil
	})(c)

	if uid != "dev-user" {
		t.Errorf("expected dev-user, got %q", uid)
	}
	if len(roles) != 1 || roles[0] != RoleClinician {
		t.Errorf("expected clinician role, got %v", roles)
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name  string
		roles []string
		want  int
	}{
		{"clinician allowed", []string{RoleClinician}, http.StatusOK},
		{"admin override", []string{RoleAdmin}, http.StatusOK},
		{"other role denied", []string{"billing"}, http.StatusForbidden},
		{"no roles denied", nil, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/assessments", nil)
			req = req.WithContext(withUser(req.Context(), "u", tt.roles))
			c := e.NewContext(req, httptest.NewRecorder())

			err := RequireRole(RoleClinician)(func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			})(c)
			if tt.want == http.StatusOK {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			expectStatus(t, err, tt.want)
		})
	}
}

func TestIsPublicPath(t *testing.T) {
	for _, p := range []string{"/health", "/health/upstream", "/metrics", "/openapi.json"} {
		if !IsPublicPath(p) {
			t.Errorf("%s should be public", p)
		}
	}
	if IsPublicPath("/api/v1/assessments") {
		t.Error("assessments must require auth")
	}
}
