package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

func TestAuth_JWT(t *testing.T) {
	svc := &stubCartService{}
	router := newTestRouter(t, Deps{CartSvc: svc})

	cases := []struct {
		name   string
		token  string
		status int
		user   string
	}{
		{"missing", "", http.StatusUnauthorized, ""},
		{"wrong secret", signToken(t, jwt.MapClaims{"sub": "u1"}, "other"), http.StatusUnauthorized, ""},
		{"expired", signToken(t, jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(-time.Hour).Unix()}, testSecret), http.StatusUnauthorized, ""},
		{"no identity claim", signToken(t, jwt.MapClaims{"role": "buyer"}, testSecret), http.StatusUnauthorized, ""},
		{"sub", signToken(t, jwt.MapClaims{"sub": "u1"}, testSecret), http.StatusOK, "u1"},
		{"id claim", signToken(t, jwt.MapClaims{"id": "u3"}, testSecret), http.StatusOK, "u3"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc.gotUser = ""
			rec := doJSON(router, http.MethodGet, "/cart", "", tc.token)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			if svc.gotUser != tc.user {
				t.Fatalf("expected user %q, got %q", tc.user, svc.gotUser)
			}
		})
	}
}

func TestAuth_HeaderMode(t *testing.T) {
	svc := &stubCartService{}
	router := newTestRouter(t, Deps{CartSvc: svc, Auth: AuthConfig{Mode: AuthModeHeader}})

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without header, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set(userIDHeader, "gateway-user")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || svc.gotUser != "gateway-user" {
		t.Fatalf("expected gateway-user, got code=%d user=%q", rec.Code, svc.gotUser)
	}
}

func TestAuthMiddleware_Config(t *testing.T) {
	if _, err := authMiddleware(AuthConfig{Mode: AuthModeJWT}); err == nil {
		t.Fatal("expected error for jwt mode without secret")
	}
	if _, err := authMiddleware(AuthConfig{Mode: "basic"}); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestUserFromBearer_RejectsNonHMAC(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "u1"})
	raw, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := userFromBearer("Bearer "+raw, []byte(testSecret)); err == nil {
		t.Fatal("expected unsigned token to be rejected")
	}
	if _, err := userFromBearer("Token abc", []byte(testSecret)); err == nil {
		t.Fatal("expected non-bearer scheme to be rejected")
	}
}
