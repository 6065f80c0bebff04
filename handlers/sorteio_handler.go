package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/projetojaiba/corrida-system/draw"
	"github.com/projetojaiba/corrida-system/middleware"
	"github.com/projetojaiba/corrida-system/models"
	"github.com/projetojaiba/corrida-system/repositories"
	"github.com/projetojaiba/corrida-system/services"
)

type SorteioHandler struct {
	sorteioService   services.SorteioService
	inscricaoService services.InscricaoService
	authService      services.AuthService
	manager          *draw.Manager
	hub              *draw.Hub
}

func NewSorteioHandler(
	sorteioService services.SorteioService,
	inscricaoService services.InscricaoService,
	authService services.AuthService,
	manager *draw.Manager,
	hub *draw.Hub,
) *SorteioHandler {
	return &SorteioHandler{
		sorteioService:   sorteioService,
		inscricaoService: inscricaoService,
		authService:      authService,
		manager:          manager,
		hub:              hub,
	}
}

// ListEligible возвращает подтверждённые заявки — пул кандидатов розыгрыша.
func (h *SorteioHandler) ListEligible(w http.ResponseWriter, r *http.Request) {
	loteID, err := optionalLoteID(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	inscricoes, err := h.inscricaoService.ListConfirmed(r.Context(), loteID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{
		"success":    true,
		"inscricoes": inscricoes,
		"total":      len(inscricoes),
	}, nil)
}

// StartSession снимает снапшот подтверждённых заявок и открывает сессию розыгрыша.
func (h *SorteioHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var input struct {
		LoteID *int `json:"lote_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	pool, err := h.inscricaoService.ListConfirmed(r.Context(), input.LoteID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	token, engine, err := h.manager.StartSession(pool, input.LoteID)
	if err != nil {
		if errors.Is(err, draw.ErrPoolEmpty) {
			badRequestResponse(w, r, err)
			return
		}
		serverErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, jsonResponse{
		"success":   true,
		"token":     token,
		"pool_size": engine.PoolSize(),
	}, nil)
}

// GetSession возвращает состояние сессии: вытянутые и размер остатка.
func (h *SorteioHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.sessionEngine(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{
		"success":   true,
		"drawn":     engine.Drawn(),
		"remaining": engine.Remaining(),
		"pool_size": engine.PoolSize(),
		"exhausted": engine.Exhausted(),
	}, nil)
}

// Draw фиксирует следующий раунд розыгрыша и рассылает его зрителям.
func (h *SorteioHandler) Draw(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	engine, ok := h.sessionEngine(w, r)
	if !ok {
		return
	}

	result, err := engine.Draw()
	if err != nil {
		if errors.Is(err, draw.ErrPoolExhausted) {
			badRequestResponse(w, r, err)
			return
		}
		serverErrorResponse(w, r, err)
		return
	}

	h.hub.BroadcastToRoom(token, draw.Event{Type: "DRAW_COMMITTED", Payload: result})

	writeJSON(w, http.StatusOK, jsonResponse{
		"success":   true,
		"result":    result,
		"remaining": engine.Remaining(),
	}, nil)
}

// Preview возвращает случайного кандидата, не убирая его из пула
// (для «прокрутки» имён на экране перед фиксацией).
func (h *SorteioHandler) Preview(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.sessionEngine(w, r)
	if !ok {
		return
	}

	inscricao, err := engine.Preview()
	if err != nil {
		if errors.Is(err, draw.ErrPoolExhausted) {
			badRequestResponse(w, r, err)
			return
		}
		serverErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"success": true, "inscricao": inscricao}, nil)
}

// ResetSession возвращает сессию к исходному пулу.
func (h *SorteioHandler) ResetSession(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	engine, ok := h.sessionEngine(w, r)
	if !ok {
		return
	}

	engine.Reset()
	h.hub.BroadcastToRoom(token, draw.Event{Type: "SESSION_RESET"})

	writeJSON(w, http.StatusOK, jsonResponse{"success": true, "remaining": engine.Remaining()}, nil)
}

// Save финализирует розыгрыш: результаты сохраняются в БД, сессия закрывается.
func (h *SorteioHandler) Save(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Titulo         string                   `json:"titulo"`
		Descricao      *string                  `json:"descricao,omitempty"`
		LoteID         *int                     `json:"lote_id"`
		LoteNome       string                   `json:"lote_nome"`
		TotalInscritos int                      `json:"total_inscritos"`
		Sorteados      []services.SorteadoInput `json:"sorteados"`
		SessionToken   string                   `json:"session_token,omitempty"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	adminID, err := middleware.GetAdminIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "invalid session")
		return
	}
	admin, err := h.authService.GetAdminByID(r.Context(), adminID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	sorteio, err := h.sorteioService.Save(r.Context(), admin, services.SalvarSorteioInput{
		Titulo:         input.Titulo,
		Descricao:      input.Descricao,
		LoteID:         input.LoteID,
		LoteNome:       input.LoteNome,
		TotalInscritos: input.TotalInscritos,
		Sorteados:      input.Sorteados,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if input.SessionToken != "" {
		h.manager.End(input.SessionToken)
		h.hub.BroadcastToRoom(input.SessionToken, draw.Event{Type: "SORTEIO_FINALIZED", Payload: sorteio})
	}

	writeJSON(w, http.StatusCreated, jsonResponse{"success": true, "sorteio": sorteio}, nil)
}

// List возвращает историю розыгрышей с фильтрами.
func (h *SorteioHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseSorteioFilter(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	sorteios, pagination, err := h.sorteioService.List(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{
		"success":    true,
		"sorteios":   sorteios,
		"pagination": pagination,
	}, nil)
}

// Get возвращает розыгрыш вместе с участниками в порядке раундов.
func (h *SorteioHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idURLParam(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	sorteio, err := h.sorteioService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"success": true, "sorteio": sorteio}, nil)
}

// Cancel переводит розыгрыш в cancelado; участники остаются в истории.
func (h *SorteioHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := idURLParam(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.sorteioService.Cancel(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"success": true}, nil)
}

func (h *SorteioHandler) sessionEngine(w http.ResponseWriter, r *http.Request) (*draw.Engine, bool) {
	token := chi.URLParam(r, "token")
	if token == "" {
		badRequestResponse(w, r, errors.New("missing session token"))
		return nil, false
	}

	engine, err := h.manager.Get(token)
	if err != nil {
		if errors.Is(err, draw.ErrSessionNotFound) {
			notFoundResponse(w, r)
			return nil, false
		}
		serverErrorResponse(w, r, err)
		return nil, false
	}
	return engine, true
}

func optionalLoteID(r *http.Request) (*int, error) {
	loteIDStr := strings.TrimSpace(r.URL.Query().Get("lote_id"))
	if loteIDStr == "" || loteIDStr == "todos" {
		return nil, nil
	}
	loteID, err := strconv.Atoi(loteIDStr)
	if err != nil || loteID <= 0 {
		return nil, errors.New("invalid lote_id parameter")
	}
	return &loteID, nil
}

func parseSorteioFilter(r *http.Request) (repositories.SorteioFilter, error) {
	q := r.URL.Query()
	filter := repositories.SorteioFilter{
		Search: strings.TrimSpace(q.Get("search")),
		Page:   1,
		Limit:  20,
	}

	if status := q.Get("status"); status != "" && status != "todos" {
		st := models.SorteioStatus(status)
		if st != models.SorteioFinalizado && st != models.SorteioCancelado {
			return filter, errors.New("invalid status filter")
		}
		filter.Status = &st
	}

	loteID, err := optionalLoteID(r)
	if err != nil {
		return filter, err
	}
	filter.LoteID = loteID

	if pageStr := q.Get("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page <= 0 {
			return filter, errors.New("invalid page parameter")
		}
		filter.Page = page
	}

	if limitStr := q.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 || limit > 100 {
			return filter, errors.New("invalid limit parameter")
		}
		filter.Limit = limit
	}

	return filter, nil
}
