package handlers

import (
	"net/http"

	"github.com/projetojaiba/corrida-system/services"
)

type LoteHandler struct {
	loteService services.LoteService
}

func NewLoteHandler(loteService services.LoteService) *LoteHandler {
	return &LoteHandler{loteService: loteService}
}

// List возвращает все лоты и текущий действующий (vigente может быть null).
func (h *LoteHandler) List(w http.ResponseWriter, r *http.Request) {
	lotes, vigente, err := h.loteService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{
		"success": true,
		"lotes":   lotes,
		"vigente": vigente,
	}, nil)
}

// Get возвращает лот по ID.
func (h *LoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idURLParam(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	lote, err := h.loteService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"success": true, "lote": lote}, nil)
}

// Create создаёт лот; при status=true он сразу активируется.
func (h *LoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.LoteInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	lote, err := h.loteService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, jsonResponse{"success": true, "lote": lote}, nil)
}

// Update изменяет имя, цену и вместимость лота.
func (h *LoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idURLParam(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.LoteInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	lote, err := h.loteService.Update(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"success": true, "lote": lote}, nil)
}

// Activate делает лот действующим; прочие активные лоты деактивируются.
func (h *LoteHandler) Activate(w http.ResponseWriter, r *http.Request) {
	id, err := idURLParam(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	lote, err := h.loteService.Activate(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"success": true, "lote": lote}, nil)
}
