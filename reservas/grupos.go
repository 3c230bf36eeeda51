package reservas

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"desayuno/db"
	"desayuno/models"
	"desayuno/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/xuri/excelize/v2"
)

const directorioSubidas = "uploads"

// Excel stores dates as days since 1899-12-30; serial 25569 is 1970-01-01.
const epocaExcel = 25569

// filaGrupo is one parsed spreadsheet row of a group booking.
type filaGrupo struct {
	Numero     int // 1-based row number in the sheet, for the result list
	Habitacion int
	Nombre     string
	Apellido   string
	Ingreso    time.Time
	Salida     time.Time
	Turno      string
	Menu       string
}

// fechaDesdeSerial converts an Excel date serial into a UTC day.
func fechaDesdeSerial(serial float64) time.Time {
	return time.Unix(int64((serial-epocaExcel)*86400), 0).UTC().Truncate(24 * time.Hour)
}

// expandirEstadia lists every breakfast date of a stay, check-in through
// check-out inclusive.
func expandirEstadia(ingreso, salida time.Time) []string {
	var fechas []string
	for d := ingreso; !d.After(salida); d = d.AddDate(0, 0, 1) {
		fechas = append(fechas, d.Format("2006-01-02"))
	}
	return fechas
}

// clasificarMenu maps the free-text menu cell onto the fixed vocabulary.
func clasificarMenu(texto string) string {
	t := strings.ToLower(texto)
	switch {
	case strings.Contains(t, "celiaco"), strings.Contains(t, "celiaca"), strings.Contains(t, "sin tacc"):
		return "Sin Tacc"
	case strings.Contains(t, "vegano"), strings.Contains(t, "vegana"):
		return "Vegano"
	default:
		return ""
	}
}

// parsearFilas maps raw sheet rows (header row first) onto filaGrupo values.
// A row without a room number inherits it from the last row that had one,
// which is how the hotel formats one room followed by its guests. Rows
// missing any required field come back with Numero set and zeroed data so
// the caller can report them.
func parsearFilas(filas [][]string) ([]filaGrupo, []models.ResultadoFila) {
	var grupos []filaGrupo
	var omitidas []models.ResultadoFila

	if len(filas) == 0 {
		return nil, nil
	}

	columnas := map[string]int{}
	for i, nombre := range filas[0] {
		columnas[strings.ToLower(strings.TrimSpace(nombre))] = i
	}

	celda := func(fila []string, nombre string) string {
		i, ok := columnas[nombre]
		if !ok || i >= len(fila) {
			return ""
		}
		return strings.TrimSpace(fila[i])
	}

	ultimaHabitacion := 0
	for n, fila := range filas[1:] {
		numero := n + 2 // sheet rows are 1-based and the header is row 1

		if h := celda(fila, "habitacion"); h != "" {
			if habitacion, err := strconv.Atoi(h); err == nil {
				ultimaHabitacion = habitacion
			}
		}

		nombre := celda(fila, "nombre")
		apellido := celda(fila, "apellido")
		ingreso := celda(fila, "ingreso")
		salida := celda(fila, "salida")
		turno := celda(fila, "turno")

		if nombre == "" || apellido == "" || ingreso == "" || salida == "" || turno == "" {
			omitidas = append(omitidas, models.ResultadoFila{
				Fila: numero, Nombre: nombre, Apellido: apellido,
				Estado: "omitida", Motivo: "faltan campos obligatorios",
			})
			continue
		}

		serialIngreso, err1 := strconv.ParseFloat(ingreso, 64)
		serialSalida, err2 := strconv.ParseFloat(salida, 64)
		if err1 != nil || err2 != nil || serialSalida < serialIngreso {
			omitidas = append(omitidas, models.ResultadoFila{
				Fila: numero, Nombre: nombre, Apellido: apellido,
				Estado: "omitida", Motivo: "fechas de ingreso/salida inválidas",
			})
			continue
		}

		grupos = append(grupos, filaGrupo{
			Numero:     numero,
			Habitacion: ultimaHabitacion,
			Nombre:     nombre,
			Apellido:   apellido,
			Ingreso:    fechaDesdeSerial(serialIngreso),
			Salida:     fechaDesdeSerial(serialSalida),
			Turno:      turno,
			Menu:       clasificarMenu(celda(fila, "menu")),
		})
	}

	return grupos, omitidas
}

// procesarArchivo parses the spreadsheet, expands each stay into per-day
// reservations, validates every day against the active guest validator and
// the duplicate check, and batch-inserts the survivors. Skips are reported
// per row, not just logged.
func procesarArchivo(ctx context.Context, ruta string) ([]models.ResultadoFila, error) {
	f, err := excelize.OpenFile(ruta)
	if err != nil {
		return nil, fmt.Errorf("abrir planilla: %w", err)
	}
	defer f.Close()

	filas, err := f.GetRows(f.GetSheetName(0), excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("leer filas: %w", err)
	}

	grupos, resultados := parsearFilas(filas)

	var documentos []interface{}
	for _, g := range grupos {
		var nuevas []interface{}
		duplicadas, invalidas := 0, 0

		// each expanded day stands alone: one bad day never drops the rest
		for _, fecha := range expandirEstadia(g.Ingreso, g.Salida) {
			if !Validador.Validar(ctx, g.Habitacion, g.Nombre, g.Apellido, fecha) {
				log.Printf("huésped no válido para la fecha: %s %s %s", g.Nombre, g.Apellido, fecha)
				invalidas++
				continue
			}
			if existente := BuscarReservaExistente(ctx, g.Habitacion, g.Nombre, g.Apellido, fecha); existente != nil {
				log.Printf("reserva ya existe para: %s %s %s", g.Nombre, g.Apellido, fecha)
				duplicadas++
				continue
			}
			nuevas = append(nuevas, models.Reserva{
				Habitacion: g.Habitacion,
				Nombre:     g.Nombre,
				Apellido:   g.Apellido,
				Fecha:      fecha,
				Turno:      g.Turno,
				Menu:       g.Menu,
			})
		}

		switch {
		case len(nuevas) > 0:
			documentos = append(documentos, nuevas...)
			resultados = append(resultados, models.ResultadoFila{
				Fila: g.Numero, Nombre: g.Nombre, Apellido: g.Apellido,
				Estado: "creada", Dias: len(nuevas),
			})
		case duplicadas > 0 && invalidas == 0:
			resultados = append(resultados, models.ResultadoFila{
				Fila: g.Numero, Nombre: g.Nombre, Apellido: g.Apellido,
				Estado: "omitida", Motivo: "ya tenía reservas para la estadía",
			})
		default:
			resultados = append(resultados, models.ResultadoFila{
				Fila: g.Numero, Nombre: g.Nombre, Apellido: g.Apellido,
				Estado: "omitida", Motivo: "huésped no válido para la estadía",
			})
		}
	}

	if len(documentos) > 0 {
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if _, err := db.ReservasCollection.InsertMany(ctx, documentos); err != nil {
			return nil, fmt.Errorf("insertar reservas: %w", err)
		}
	}

	return resultados, nil
}

// SubirGrupos handles POST /api/upload: receives the group spreadsheet,
// runs the import, and deletes the file once processing finished. A failed
// import leaves the file on disk for inspection.
func SubirGrupos(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid form")
		return
	}

	archivo, header, err := r.FormFile("file")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer archivo.Close()

	if err := utils.EnsureDir(directorioSubidas); err != nil {
		log.Printf("error al preparar el directorio de subidas: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Error al procesar archivo")
		return
	}

	ruta := filepath.Join(directorioSubidas, uuid.New().String()+filepath.Ext(header.Filename))
	destino, err := os.Create(ruta)
	if err != nil {
		log.Printf("error al guardar el archivo: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Error al procesar archivo")
		return
	}
	if _, err := io.Copy(destino, archivo); err != nil {
		destino.Close()
		log.Printf("error al guardar el archivo: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Error al procesar archivo")
		return
	}
	destino.Close()

	resultados, err := procesarArchivo(r.Context(), ruta)
	if err != nil {
		log.Printf("error al procesar archivo: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Error al procesar archivo")
		return
	}

	if err := os.Remove(ruta); err != nil {
		log.Printf("no se pudo eliminar %s: %v", ruta, err)
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message":    "Reservas procesadas",
		"resultados": resultados,
	})
}
