package reservas

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"desayuno/db"
	"desayuno/models"
	"desayuno/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"go.mongodb.org/mongo-driver/bson"
)

func agregarReporte(ctx context.Context, fecha string) ([]models.ReporteTurno, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cuentaMenu := func(patron string) bson.M {
		return bson.M{"$sum": bson.M{"$cond": bson.A{
			bson.M{"$regexMatch": bson.M{"input": bson.M{"$ifNull": bson.A{"$menu", ""}}, "regex": patron, "options": "i"}},
			1, 0,
		}}}
	}

	pipeline := []bson.M{
		{"$match": bson.M{"fecha": fecha}},
		{"$group": bson.M{
			"_id":           "$turno",
			"totalReservas": bson.M{"$sum": 1},
			"totalSinTacc":  cuentaMenu("Sin Tacc"),
			"totalVegano":   cuentaMenu("Vegano"),
			"comentarios":   bson.M{"$push": bson.M{"$ifNull": bson.A{"$comentarios", ""}}},
		}},
		{"$sort": bson.M{"_id": 1}},
	}

	cur, err := db.ReservasCollection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var reporte []models.ReporteTurno
	for cur.Next(ctx) {
		var turno models.ReporteTurno
		if err := cur.Decode(&turno); err != nil {
			continue
		}
		reporte = append(reporte, turno)
	}
	return reporte, cur.Err()
}

// formatearReporte drops empty comment entries from each seating block.
func formatearReporte(reporte []models.ReporteTurno) []models.ReporteTurno {
	formateado := make([]models.ReporteTurno, 0, len(reporte))
	for _, turno := range reporte {
		comentarios := []string{}
		for _, c := range turno.Comentarios {
			if strings.TrimSpace(c) != "" {
				comentarios = append(comentarios, c)
			}
		}
		turno.Comentarios = comentarios
		formateado = append(formateado, turno)
	}
	return formateado
}

// sumarTotales folds the per-seating counters into the day aggregate.
func sumarTotales(reporte []models.ReporteTurno) models.TotalesDia {
	var totales models.TotalesDia
	for _, turno := range reporte {
		totales.TotalReservas += turno.TotalReservas
		totales.TotalSinTacc += turno.TotalSinTacc
		totales.TotalVegano += turno.TotalVegano
	}
	return totales
}

// GET /api/reporte?fecha=
func GenerarReporte(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fecha := r.URL.Query().Get("fecha")
	if _, err := time.Parse("2006-01-02", fecha); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "fecha inválida")
		return
	}

	reporte, err := agregarReporte(r.Context(), fecha)
	if err != nil {
		log.Printf("error al generar el reporte: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "error al generar el reporte")
		return
	}

	reporte = formatearReporte(reporte)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"totalesDia": sumarTotales(reporte),
		"reporte":    reporte,
	})
}

// GET /api/reporte/pdf?fecha= renders the daily report as a printable PDF
// for the kitchen.
func ReportePDF(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fecha := r.URL.Query().Get("fecha")
	if _, err := time.Parse("2006-01-02", fecha); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "fecha inválida")
		return
	}

	reporte, err := agregarReporte(r.Context(), fecha)
	if err != nil {
		log.Printf("error al generar el reporte: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "error al generar el reporte")
		return
	}
	reporte = formatearReporte(reporte)
	totales := sumarTotales(reporte)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, fmt.Sprintf("Reporte de desayunos - %s", fecha))
	pdf.Ln(14)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Total del día: %d reservas (%d Sin Tacc, %d Vegano)",
		totales.TotalReservas, totales.TotalSinTacc, totales.TotalVegano))
	pdf.Ln(12)

	for _, turno := range reporte {
		pdf.SetFont("Arial", "B", 13)
		pdf.Cell(0, 8, fmt.Sprintf("Turno %s", turno.Turno))
		pdf.Ln(8)

		pdf.SetFont("Arial", "", 11)
		pdf.Cell(0, 7, fmt.Sprintf("Reservas: %d | Sin Tacc: %d | Vegano: %d",
			turno.TotalReservas, turno.TotalSinTacc, turno.TotalVegano))
		pdf.Ln(7)

		for _, comentario := range turno.Comentarios {
			pdf.Cell(0, 6, "- "+comentario)
			pdf.Ln(6)
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		log.Printf("error al emitir el PDF: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "error al generar el reporte")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=reporte-%s.pdf", fecha))
	w.Write(buf.Bytes())
}
