package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"desayuno/globals"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
)

func tokenFirmado(t *testing.T, ttl time.Duration) string {
	t.Helper()
	claims := Claims{
		Username: "admin",
		UserID:   "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	firmado, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(globals.JwtSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return firmado
}

func TestValidateJWT(t *testing.T) {
	claims, err := ValidateJWT("Bearer " + tokenFirmado(t, time.Hour))
	if err != nil {
		t.Fatalf("valid token rejected: %v", err)
	}
	if claims.UserID != "u1" || claims.Username != "admin" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, err := ValidateJWT(tokenFirmado(t, time.Hour)); err == nil {
		t.Fatal("token without Bearer prefix must be rejected")
	}
	if _, err := ValidateJWT("Token " + tokenFirmado(t, time.Hour)); err == nil {
		t.Fatal("wrong scheme must be rejected")
	}
	if _, err := ValidateJWT(""); err == nil {
		t.Fatal("empty header must be rejected")
	}
	if _, err := ValidateJWT("Bearer " + tokenFirmado(t, -time.Hour)); err == nil {
		t.Fatal("expired token must be rejected")
	}
}

func TestAuthenticate(t *testing.T) {
	llamado := false
	handler := Authenticate(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		llamado = true
		if got := r.Context().Value(globals.UserIDKey); got != "u1" {
			t.Errorf("expected userId u1 in context, got %v", got)
		}
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/upload", nil)
	r.Header.Set("Authorization", "Bearer "+tokenFirmado(t, time.Hour))
	handler(w, r, nil)

	if !llamado {
		t.Fatal("handler should run with a valid token")
	}
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestAuthenticateRechazaTokenFaltanteOInvalido(t *testing.T) {
	handler := Authenticate(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		t.Error("handler must not run")
	})

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest("POST", "/api/upload", nil), nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: expected 401, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/upload", nil)
	r.Header.Set("Authorization", "Bearer no-es-un-jwt")
	handler(w, r, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: expected 401, got %d", w.Code)
	}
}
