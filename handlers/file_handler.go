package handlers

import (
	"net/http"

	"github.com/projetojaiba/corrida-system/services"
)

type FileHandler struct {
	inscricaoService services.InscricaoService
}

func NewFileHandler(inscricaoService services.InscricaoService) *FileHandler {
	return &FileHandler{inscricaoService: inscricaoService}
}

// Comprovante редиректит на публичный URL файла comprovante заявки.
func (h *FileHandler) Comprovante(w http.ResponseWriter, r *http.Request) {
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

	if inscricao.ComprovanteURL == nil || *inscricao.ComprovanteURL == "" {
		notFoundResponse(w, r)
		return
	}

	http.Redirect(w, r, *inscricao.ComprovanteURL, http.StatusFound)
}
