package routes

import (
	"desayuno/auth"
	"desayuno/bloqueo"
	"desayuno/middleware"
	"desayuno/ratelim"
	"desayuno/reservas"

	"github.com/julienschmidt/httprouter"
)

// AddReservaRoutes wires the public booking form endpoints. The bloqueo
// state gates submissions, so it travels in from main.
func AddReservaRoutes(router *httprouter.Router, rl *ratelim.RateLimiter, estado *bloqueo.Estado) {
	router.POST("/api/reservar", rl.Limit(reservas.CrearReserva(estado)))
	router.PUT("/api/reservar/:id", rl.Limit(reservas.ModificarReserva))
	router.GET("/api/reservas", reservas.ConsultarReservas)
	router.GET("/api/disponibilidad", rl.Limit(reservas.Disponibilidad))
}

func AddReporteRoutes(router *httprouter.Router) {
	router.GET("/api/reporte", reservas.GenerarReporte)
	router.GET("/api/reporte/pdf", reservas.ReportePDF)
}

// AddAdminRoutes wires the back-office actions: group upload and the
// access block. Writes require a valid admin token.
func AddAdminRoutes(router *httprouter.Router, estado *bloqueo.Estado) {
	router.POST("/api/upload", middleware.Authenticate(reservas.SubirGrupos))
	router.GET("/api/bloqueo", estado.Obtener)
	router.POST("/api/bloqueo", middleware.Authenticate(estado.Establecer))
}

func AddAuthRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/auth/login", rl.Limit(auth.Login))
}
