package reservas

import (
	"context"
	"log"
	"net/http"
	"time"

	"desayuno/db"
	"desayuno/models"
	"desayuno/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

// CupoPorTurno is the fixed seat count per seating per day. The check
// against it is advisory: it runs before the upsert without a transaction,
// so two concurrent writes can both pass it.
const CupoPorTurno = 24

// ValidadorHuesped decides whether a named guest occupies a room on a date.
// Two implementations exist: the local huespedes collection and the
// Cloudbeds API; exactly one is active per deployment.
type ValidadorHuesped interface {
	Validar(ctx context.Context, habitacion int, nombre, apellido, fecha string) bool
}

// Validador is the active strategy, chosen in main from GUEST_VALIDATION.
var Validador ValidadorHuesped = ValidadorLocal{}

// ValidadorLocal matches against the externally populated huespedes
// collection. The date is ignored: the hospedado flag already means
// "currently lodged".
type ValidadorLocal struct{}

func (ValidadorLocal) Validar(ctx context.Context, habitacion int, nombre, apellido, _ string) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cur, err := db.HuespedesCollection.Find(ctx, bson.M{"habitacion": habitacion, "hospedado": true})
	if err != nil {
		log.Printf("huespedes lookup failed: %v", err)
		return false
	}
	defer cur.Close(ctx)

	nombreBuscado := utils.Sanitizar(nombre)
	apellidoBuscado := utils.Sanitizar(apellido)

	for cur.Next(ctx) {
		var h models.Huesped
		if err := cur.Decode(&h); err != nil {
			continue
		}
		if utils.Sanitizar(h.Nombre) == nombreBuscado && utils.Sanitizar(h.Apellido) == apellidoBuscado {
			return true
		}
	}
	return false
}

// BuscarReservaExistente returns the reservation already held for
// (habitacion, nombre, apellido, fecha), or nil. Names compare sanitized,
// so "José" finds a reservation stored as "Jose".
func BuscarReservaExistente(ctx context.Context, habitacion int, nombre, apellido, fecha string) *models.Reserva {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cur, err := db.ReservasCollection.Find(ctx, bson.M{"habitacion": habitacion, "fecha": fecha})
	if err != nil {
		return nil
	}
	defer cur.Close(ctx)

	nombreBuscado := utils.Sanitizar(nombre)
	apellidoBuscado := utils.Sanitizar(apellido)

	for cur.Next(ctx) {
		var r models.Reserva
		if err := cur.Decode(&r); err != nil {
			continue
		}
		if utils.Sanitizar(r.Nombre) == nombreBuscado && utils.Sanitizar(r.Apellido) == apellidoBuscado {
			return &r
		}
	}
	return nil
}

// ContarReservasTurno counts reservations already taken for one seating on
// one date.
func ContarReservasTurno(ctx context.Context, fecha, turno string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return db.ReservasCollection.CountDocuments(ctx, bson.M{"fecha": fecha, "turno": turno})
}

// calcularDisponibilidad turns per-seating occupancy counts into remaining
// capacity. Seatings with no reservations stay absent; the client merges in
// its default seating set.
func calcularDisponibilidad(ocupacion map[string]int) map[string]int {
	disponibilidad := make(map[string]int, len(ocupacion))
	for turno, count := range ocupacion {
		disponibilidad[turno] = CupoPorTurno - count
	}
	return disponibilidad
}

// GET /api/disponibilidad?fecha=
func Disponibilidad(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fecha := r.URL.Query().Get("fecha")
	if _, err := time.Parse("2006-01-02", fecha); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "fecha inválida")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pipeline := []bson.M{
		{"$match": bson.M{"fecha": fecha}},
		{"$group": bson.M{
			"_id":   "$turno",
			"count": bson.M{"$sum": 1},
		}},
	}

	cur, err := db.ReservasCollection.Aggregate(ctx, pipeline)
	if err != nil {
		log.Printf("error al obtener la disponibilidad: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "error al obtener la disponibilidad")
		return
	}
	defer cur.Close(ctx)

	ocupacion := make(map[string]int)
	for cur.Next(ctx) {
		var fila struct {
			Turno string `bson:"_id"`
			Count int    `bson:"count"`
		}
		if err := cur.Decode(&fila); err != nil {
			continue
		}
		ocupacion[fila.Turno] = fila.Count
	}

	utils.RespondWithJSON(w, http.StatusOK, calcularDisponibilidad(ocupacion))
}
