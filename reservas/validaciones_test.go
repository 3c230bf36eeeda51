package reservas

import "testing"

func TestCalcularDisponibilidad(t *testing.T) {
	disponibilidad := calcularDisponibilidad(map[string]int{
		"7:00": 5,
		"8:00": 24,
	})

	if got := disponibilidad["7:00"]; got != 19 {
		t.Errorf("7:00 with 5 taken should leave 19, got %d", got)
	}
	if got := disponibilidad["8:00"]; got != 0 {
		t.Errorf("full seating should report 0, got %d", got)
	}
	if _, ok := disponibilidad["9:30"]; ok {
		t.Error("seatings with no reservations must be absent")
	}
}

func TestCalcularDisponibilidadVacia(t *testing.T) {
	if d := calcularDisponibilidad(map[string]int{}); len(d) != 0 {
		t.Fatalf("no occupancy means an empty result, got %v", d)
	}
}
