package reservas

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"desayuno/bloqueo"
	"desayuno/db"
	"desayuno/models"
	"desayuno/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mensajeHuespedInvalido = "La habitación no está ocupada por la persona indicada o la fecha es inválida."

// Seams for the admission flow, swappable in tests the same way the
// Validador strategy is.
var (
	buscarReservaExistente = BuscarReservaExistente
	contarReservasTurno    = ContarReservasTurno
)

type solicitudReserva struct {
	Habitacion  int    `json:"habitacion"`
	Nombre      string `json:"nombre"`
	Apellido    string `json:"apellido"`
	Fecha       string `json:"fecha"`
	Turno       string `json:"turno"`
	Menu        string `json:"menu"`
	Comentarios string `json:"comentarios"`
}

func (s *solicitudReserva) validar() string {
	if s.Habitacion <= 0 {
		return "habitación inválida"
	}
	if s.Nombre == "" || s.Apellido == "" {
		return "nombre y apellido son obligatorios"
	}
	if _, err := time.Parse("2006-01-02", s.Fecha); err != nil {
		return "fecha inválida"
	}
	if s.Turno == "" {
		return "turno es obligatorio"
	}
	return ""
}

// CrearReserva handles POST /api/reservar. Validates the guest, reports an
// existing reservation back instead of overwriting it, checks remaining
// seats, then upserts on the natural key.
func CrearReserva(estado *bloqueo.Estado) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		if estado.Bloqueado() {
			utils.RespondWithJSON(w, http.StatusForbidden, utils.M{"message": "Las reservas están temporalmente deshabilitadas."})
			return
		}

		var s solicitudReserva
		if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		if msg := s.validar(); msg != "" {
			utils.RespondWithJSON(w, http.StatusBadRequest, utils.M{"message": msg})
			return
		}

		ctx := r.Context()

		if !Validador.Validar(ctx, s.Habitacion, s.Nombre, s.Apellido, s.Fecha) {
			utils.RespondWithJSON(w, http.StatusBadRequest, utils.M{"message": mensajeHuespedInvalido})
			return
		}

		if existente := buscarReservaExistente(ctx, s.Habitacion, s.Nombre, s.Apellido, s.Fecha); existente != nil {
			utils.RespondWithJSON(w, http.StatusOK, utils.M{
				"message":  "Ya tienes una reserva para esta fecha.",
				"reserva":  existente,
				"opciones": []string{"Modificar Reserva"},
			})
			return
		}

		ocupados, err := contarReservasTurno(ctx, s.Fecha, s.Turno)
		if err != nil {
			log.Printf("error al contar reservas: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "error al crear la reserva")
			return
		}
		if ocupados >= CupoPorTurno {
			utils.RespondWithJSON(w, http.StatusBadRequest, utils.M{"message": "No hay cupos disponibles para el turno seleccionado."})
			return
		}

		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		filtro := bson.M{
			"habitacion": s.Habitacion,
			"nombre":     s.Nombre,
			"apellido":   s.Apellido,
			"fecha":      s.Fecha,
		}
		cambios := bson.M{"$set": bson.M{
			"turno":       s.Turno,
			"menu":        s.Menu,
			"comentarios": s.Comentarios,
		}}

		result, err := db.ReservasCollection.UpdateOne(ctx, filtro, cambios, options.Update().SetUpsert(true))
		if err != nil {
			log.Printf("error al crear la reserva: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "error al crear la reserva")
			return
		}

		utils.RespondWithJSON(w, http.StatusOK, result)
	}
}

// ModificarReserva handles PUT /api/reservar/:id.
func ModificarReserva(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := primitive.ObjectIDFromHex(ps.ByName("id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "id inválido")
		return
	}

	var s solicitudReserva
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := s.validar(); msg != "" {
		utils.RespondWithJSON(w, http.StatusBadRequest, utils.M{"message": msg})
		return
	}

	if !Validador.Validar(r.Context(), s.Habitacion, s.Nombre, s.Apellido, s.Fecha) {
		utils.RespondWithJSON(w, http.StatusBadRequest, utils.M{"message": mensajeHuespedInvalido})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cambios := bson.M{"$set": bson.M{
		"habitacion":  s.Habitacion,
		"nombre":      s.Nombre,
		"apellido":    s.Apellido,
		"fecha":       s.Fecha,
		"turno":       s.Turno,
		"menu":        s.Menu,
		"comentarios": s.Comentarios,
	}}

	var actualizada models.Reserva
	err = db.ReservasCollection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		cambios,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&actualizada)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithJSON(w, http.StatusNotFound, utils.M{"message": "Reserva no encontrada"})
		return
	}
	if err != nil {
		log.Printf("error al modificar la reserva: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "error al modificar la reserva")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, actualizada)
}

// construirConsulta builds the search filter. Without fecha the filter
// covers upcoming reservations only; the apellido pattern is sanitized and
// escaped so metacharacters in the input match literally.
func construirConsulta(habitacion, apellido, fecha string, ahora time.Time) (bson.M, error) {
	query := bson.M{}

	if habitacion != "" {
		h, err := strconv.Atoi(habitacion)
		if err != nil {
			return nil, fmt.Errorf("habitación inválida")
		}
		query["habitacion"] = h
	}
	if apellido != "" {
		query["apellido"] = primitive.Regex{Pattern: regexp.QuoteMeta(utils.Sanitizar(apellido)), Options: "i"}
	}
	if fecha != "" {
		if _, err := time.Parse("2006-01-02", fecha); err != nil {
			return nil, fmt.Errorf("fecha inválida")
		}
		query["fecha"] = fecha
	} else {
		query["fecha"] = bson.M{"$gte": ahora.Format("2006-01-02")}
	}

	return query, nil
}

// ConsultarReservas handles GET /api/reservas?habitacion=&apellido=&fecha=.
// Without fecha only upcoming reservations are returned.
func ConsultarReservas(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	params := r.URL.Query()
	query, err := construirConsulta(params.Get("habitacion"), params.Get("apellido"), params.Get("fecha"), time.Now())
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cur, err := db.ReservasCollection.Find(ctx, query, options.Find().SetSort(bson.M{"fecha": 1}))
	if err != nil {
		log.Printf("error al obtener reservas: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "error al obtener reservas")
		return
	}
	defer cur.Close(ctx)

	reservas := []models.Reserva{}
	for cur.Next(ctx) {
		var res models.Reserva
		if err := cur.Decode(&res); err != nil {
			continue
		}
		reservas = append(reservas, res)
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"reservas": reservas})
}
