package bloqueo

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestEstadoArrancaAbierto(t *testing.T) {
	e := NewEstado()
	if e.Bloqueado() {
		t.Fatal("a fresh Estado must start unblocked")
	}
}

func TestEstablecerYObtener(t *testing.T) {
	e := NewEstado()

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/bloqueo", strings.NewReader(`{"bloquear":true}`))
	e.Establecer(w, r, nil)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !e.Bloqueado() {
		t.Fatal("flag should be set after POST")
	}

	w = httptest.NewRecorder()
	r = httptest.NewRequest("GET", "/api/bloqueo", nil)
	e.Obtener(w, r, nil)

	var body map[string]bool
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body["bloquear"] {
		t.Fatal("GET should report the blocked state")
	}
}

func TestEstablecerRechazaJSONInvalido(t *testing.T) {
	e := NewEstado()

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/bloqueo", strings.NewReader(`{bloquear`))
	e.Establecer(w, r, nil)

	if w.Code != 400 {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if e.Bloqueado() {
		t.Fatal("bad payload must not change the flag")
	}
}
