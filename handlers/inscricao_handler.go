package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/projetojaiba/corrida-system/models"
	"github.com/projetojaiba/corrida-system/repositories"
	"github.com/projetojaiba/corrida-system/services"
)

// Лимит разбора multipart-форм: comprovante до 10MB плюс поля.
const maxMultipartMemory = 12 << 20

type InscricaoHandler struct {
	inscricaoService services.InscricaoService
}

func NewInscricaoHandler(inscricaoService services.InscricaoService) *InscricaoHandler {
	return &InscricaoHandler{inscricaoService: inscricaoService}
}

// Create — публичная регистрация участника (multipart: данные + comprovante).
func (h *InscricaoHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		badRequestResponse(w, r, fmt.Errorf("invalid multipart form: %w", err))
		return
	}

	idade, err := strconv.Atoi(r.FormValue("idade"))
	if err != nil {
		badRequestResponse(w, r, errors.New("invalid idade value"))
		return
	}

	input := services.InscricaoInput{
		NomeCompleto: r.FormValue("nome_completo"),
		CPF:          r.FormValue("cpf"),
		Idade:        idade,
		Sexo:         r.FormValue("sexo"),
		Celular:      r.FormValue("celular"),
		Email:        r.FormValue("email"),
		TamanhoBlusa: r.FormValue("tamanho_blusa"),
	}

	file, err := formFileInput(r, "comprovante")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if file != nil {
		defer file.close()
	}

	inscricao, err := h.inscricaoService.Create(r.Context(), input, fileInputOrNil(file))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, jsonResponse{"success": true, "inscricao": inscricao}, nil)
}

// List возвращает заявки с фильтрами и пагинацией (админ).
func (h *InscricaoHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseInscricaoFilter(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	inscricoes, pagination, err := h.inscricaoService.List(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{
		"success":    true,
		"inscricoes": inscricoes,
		"pagination": pagination,
	}, nil)
}

// Get возвращает одну заявку по ID (админ).
func (h *InscricaoHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idURLParam(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	inscricao, err := h.inscricaoService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"success": true, "inscricao": inscricao}, nil)
}

// UpdateStatus меняет статус заявки. Принимает JSON {"status": "..."} или
// multipart с полем status и необязательным новым comprovante: файл, если
// он есть, загружается до смены статуса.
func (h *InscricaoHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idURLParam(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var status string
	var file *formFile

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			badRequestResponse(w, r, fmt.Errorf("invalid multipart form: %w", err))
			return
		}
		status = r.FormValue("status")
		file, err = formFileInput(r, "comprovante")
		if err != nil {
			badRequestResponse(w, r, err)
			return
		}
		if file != nil {
			defer file.close()
		}
	} else {
		var input struct {
			Status string `json:"status"`
		}
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
		status = input.Status
	}

	if file != nil {
		if _, err := h.inscricaoService.ReplaceComprovante(r.Context(), id, fileInputOrNil(file)); err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
	}

	inscricao, err := h.inscricaoService.UpdateStatus(r.Context(), id, models.InscricaoStatus(status))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"success": true, "inscricao": inscricao}, nil)
}

// ReplaceComprovante загружает новый comprovante для заявки (админ).
func (h *InscricaoHandler) ReplaceComprovante(w http.ResponseWriter, r *http.Request) {
	id, err := idURLParam(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		badRequestResponse(w, r, fmt.Errorf("invalid multipart form: %w", err))
		return
	}

	file, err := formFileInput(r, "comprovante")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if file != nil {
		defer file.close()
	}

	inscricao, err := h.inscricaoService.ReplaceComprovante(r.Context(), id, fileInputOrNil(file))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"success": true, "inscricao": inscricao}, nil)
}

// Stats возвращает агрегаты по статусам заявок (дашборд).
func (h *InscricaoHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.inscricaoService.Stats(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"success": true, "stats": stats}, nil)
}

type formFile struct {
	input services.FileInput
	src   multipart.File
}

func (f *formFile) close() {
	f.src.Close()
}

// formFileInput достаёт файл из multipart-формы; отсутствие файла — не ошибка.
func formFileInput(r *http.Request, field string) (*formFile, error) {
	src, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s file: %w", field, err)
	}

	contentType := header.Header.Get("Content-Type")
	return &formFile{
		input: services.FileInput{
			Name:        header.Filename,
			ContentType: contentType,
			Size:        header.Size,
			Reader:      src,
		},
		src: src,
	}, nil
}

func fileInputOrNil(f *formFile) *services.FileInput {
	if f == nil {
		return nil
	}
	return &f.input
}

func parseInscricaoFilter(r *http.Request) (repositories.InscricaoFilter, error) {
	q := r.URL.Query()
	filter := repositories.InscricaoFilter{
		Search: strings.TrimSpace(q.Get("search")),
		Page:   1,
		Limit:  20,
	}

	if status := q.Get("status"); status != "" && status != "todos" {
		st := models.InscricaoStatus(status)
		if !st.Valid() {
			return filter, fmt.Errorf("invalid status filter: %q", status)
		}
		filter.Status = &st
	}

	if loteIDStr := q.Get("lote_id"); loteIDStr != "" {
		loteID, err := strconv.Atoi(loteIDStr)
		if err != nil || loteID <= 0 {
			return filter, errors.New("invalid lote_id filter")
		}
		filter.LoteID = &loteID
	}

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
