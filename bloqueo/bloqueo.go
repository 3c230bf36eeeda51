package bloqueo

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"desayuno/utils"

	"github.com/julienschmidt/httprouter"
)

// Estado holds the process-wide access block for the public booking form.
// It lives only in memory: a restart always reopens the form. Built in main
// and handed to the routes, never a package global.
type Estado struct {
	bloqueado atomic.Bool
}

func NewEstado() *Estado {
	return &Estado{}
}

func (e *Estado) Bloqueado() bool {
	return e.bloqueado.Load()
}

// GET /api/bloqueo
func (e *Estado) Obtener(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"bloquear": e.bloqueado.Load()})
}

// POST /api/bloqueo
func (e *Estado) Establecer(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		Bloquear bool `json:"bloquear"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	e.bloqueado.Store(body.Bloquear)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"bloquear": body.Bloquear})
}
