package reservas

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"desayuno/bloqueo"
	"desayuno/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSolicitudValidar(t *testing.T) {
	base := solicitudReserva{
		Habitacion: 12, Nombre: "Juan", Apellido: "Gomez",
		Fecha: "2026-03-01", Turno: "7:00",
	}

	if msg := base.validar(); msg != "" {
		t.Fatalf("valid request rejected: %s", msg)
	}

	cases := []struct {
		nombre string
		mutar  func(s *solicitudReserva)
	}{
		{"habitacion", func(s *solicitudReserva) { s.Habitacion = 0 }},
		{"nombre", func(s *solicitudReserva) { s.Nombre = "" }},
		{"apellido", func(s *solicitudReserva) { s.Apellido = "" }},
		{"fecha", func(s *solicitudReserva) { s.Fecha = "01/03/2026" }},
		{"turno", func(s *solicitudReserva) { s.Turno = "" }},
	}
	for _, c := range cases {
		s := base
		c.mutar(&s)
		if msg := s.validar(); msg == "" {
			t.Errorf("request with bad %s should be rejected", c.nombre)
		}
	}
}

// --- Admission flow ---

type validadorFijo struct{ ok bool }

func (v validadorFijo) Validar(context.Context, int, string, string, string) bool { return v.ok }

// prepararAdmision swaps the admission seams and restores them afterwards.
func prepararAdmision(t *testing.T, existente *models.Reserva, ocupados int64) {
	t.Helper()

	validadorAnterior := Validador
	buscarAnterior := buscarReservaExistente
	contarAnterior := contarReservasTurno
	t.Cleanup(func() {
		Validador = validadorAnterior
		buscarReservaExistente = buscarAnterior
		contarReservasTurno = contarAnterior
	})

	Validador = validadorFijo{ok: true}
	buscarReservaExistente = func(context.Context, int, string, string, string) *models.Reserva {
		return existente
	}
	contarReservasTurno = func(context.Context, string, string) (int64, error) {
		return ocupados, nil
	}
}

const cuerpoSolicitud = `{"habitacion":12,"nombre":"Juan","apellido":"Gomez",
	"fecha":"2026-03-01","turno":"7:00","menu":"","comentarios":""}`

func TestCrearReservaDuplicadaDevuelveGuia(t *testing.T) {
	existente := &models.Reserva{
		Habitacion: 12, Nombre: "Juan", Apellido: "Gomez",
		Fecha: "2026-03-01", Turno: "8:00",
	}
	prepararAdmision(t, existente, 0)
	contarReservasTurno = func(context.Context, string, string) (int64, error) {
		t.Error("a duplicate must short-circuit before the capacity check")
		return 0, nil
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/reservar", strings.NewReader(cuerpoSolicitud))
	CrearReserva(bloqueo.NewEstado())(w, r, nil)

	if w.Code != 200 {
		t.Fatalf("expected 200 with guidance, got %d", w.Code)
	}

	var body struct {
		Message  string         `json:"message"`
		Reserva  models.Reserva `json:"reserva"`
		Opciones []string       `json:"opciones"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Message != "Ya tienes una reserva para esta fecha." {
		t.Errorf("unexpected message: %q", body.Message)
	}
	if body.Reserva.Turno != "8:00" {
		t.Errorf("response must carry the existing reservation, got %+v", body.Reserva)
	}
	if len(body.Opciones) != 1 || body.Opciones[0] != "Modificar Reserva" {
		t.Errorf("expected the modify option, got %v", body.Opciones)
	}
}

func TestCrearReservaHuespedNoValido(t *testing.T) {
	prepararAdmision(t, nil, 0)
	Validador = validadorFijo{ok: false}

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/reservar", strings.NewReader(cuerpoSolicitud))
	CrearReserva(bloqueo.NewEstado())(w, r, nil)

	if w.Code != 400 {
		t.Fatalf("unlodged guest must get 400, got %d", w.Code)
	}
}

func TestCrearReservaSinCupo(t *testing.T) {
	prepararAdmision(t, nil, CupoPorTurno)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/reservar", strings.NewReader(cuerpoSolicitud))
	CrearReserva(bloqueo.NewEstado())(w, r, nil)

	if w.Code != 400 {
		t.Fatalf("full seating must get 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "No hay cupos") {
		t.Errorf("expected a no-seats message, got %s", w.Body.String())
	}
}

func TestCrearReservaBloqueada(t *testing.T) {
	prepararAdmision(t, nil, 0)

	estado := bloqueo.NewEstado()
	we := httptest.NewRecorder()
	re := httptest.NewRequest("POST", "/api/bloqueo", strings.NewReader(`{"bloquear":true}`))
	estado.Establecer(we, re, nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/reservar", strings.NewReader(cuerpoSolicitud))
	CrearReserva(estado)(w, r, nil)

	if w.Code != 403 {
		t.Fatalf("blocked form must get 403, got %d", w.Code)
	}
}

// --- Search filter ---

func TestConstruirConsultaFuturoPorDefecto(t *testing.T) {
	ahora := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

	query, err := construirConsulta("", "", "", ahora)
	if err != nil {
		t.Fatalf("empty search rejected: %v", err)
	}
	rango, ok := query["fecha"].(bson.M)
	if !ok {
		t.Fatalf("expected a range filter on fecha, got %#v", query["fecha"])
	}
	if rango["$gte"] != "2026-03-10" {
		t.Fatalf("omitted fecha must default to future only, got %v", rango)
	}
}

func TestConstruirConsultaConFiltros(t *testing.T) {
	ahora := time.Now()

	query, err := construirConsulta("12", "Pérez (h)", "2026-03-01", ahora)
	if err != nil {
		t.Fatalf("valid search rejected: %v", err)
	}
	if query["habitacion"] != 12 {
		t.Errorf("habitacion should parse to an int, got %#v", query["habitacion"])
	}
	if query["fecha"] != "2026-03-01" {
		t.Errorf("explicit fecha should filter that day, got %#v", query["fecha"])
	}

	if _, err := construirConsulta("doce", "", "", ahora); err == nil {
		t.Error("non-numeric habitacion must be rejected")
	}
	if _, err := construirConsulta("", "", "01/03/2026", ahora); err == nil {
		t.Error("malformed fecha must be rejected")
	}
}

func TestConstruirConsultaEscapaApellido(t *testing.T) {
	query, err := construirConsulta("", "Gómez (hijo)", "2026-03-01", time.Now())
	if err != nil {
		t.Fatalf("search rejected: %v", err)
	}

	regex, ok := query["apellido"].(primitive.Regex)
	if !ok {
		t.Fatalf("expected a regex filter on apellido, got %#v", query["apellido"])
	}
	if regex.Pattern != `gomez \(hijo\)` {
		t.Fatalf("pattern must be sanitized and escaped, got %q", regex.Pattern)
	}
	if regex.Options != "i" {
		t.Fatalf("pattern must stay case-insensitive, got %q", regex.Options)
	}
}
