package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/projetojaiba/corrida-system/models"
	"github.com/projetojaiba/corrida-system/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapServiceErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"inscricao not found", services.ErrInscricaoNotFound, http.StatusNotFound},
		{"sorteio not found", services.ErrSorteioNotFound, http.StatusNotFound},
		{"cpf conflict", services.ErrCPFAlreadyRegistered, http.StatusConflict},
		{"lote nome conflict", services.ErrLoteNomeConflict, http.StatusConflict},
		{"invalid cpf", services.ErrCPFInvalid, http.StatusBadRequest},
		{"confirm without comprovante", services.ErrConfirmSemComprovante, http.StatusBadRequest},
		{"lote esgotado", services.ErrLoteEsgotado, http.StatusBadRequest},
		{"invalid credentials", services.ErrAuthInvalidCredentials, http.StatusUnauthorized},
		{"forbidden", services.ErrForbiddenOperation, http.StatusForbidden},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)

			mapServiceErrorToHTTP(rec, req, tc.err)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), `"success": false`)
		})
	}
}

func TestParseInscricaoFilterDefaults(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/admin/inscricoes", nil)

	filter, err := parseInscricaoFilter(req)
	require.NoError(t, err)

	assert.Nil(t, filter.Status)
	assert.Nil(t, filter.LoteID)
	assert.Equal(t, 1, filter.Page)
	assert.Equal(t, 20, filter.Limit)
}

func TestParseInscricaoFilterValues(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/admin/inscricoes?status=confirmado&lote_id=3&search=silva&page=2&limit=50", nil)

	filter, err := parseInscricaoFilter(req)
	require.NoError(t, err)

	require.NotNil(t, filter.Status)
	assert.Equal(t, models.InscricaoConfirmado, *filter.Status)
	require.NotNil(t, filter.LoteID)
	assert.Equal(t, 3, *filter.LoteID)
	assert.Equal(t, "silva", filter.Search)
	assert.Equal(t, 2, filter.Page)
	assert.Equal(t, 50, filter.Limit)
}

func TestParseInscricaoFilterTodosMeansNoStatus(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/admin/inscricoes?status=todos", nil)

	filter, err := parseInscricaoFilter(req)
	require.NoError(t, err)
	assert.Nil(t, filter.Status)
}

func TestParseInscricaoFilterRejectsBadValues(t *testing.T) {
	for _, query := range []string{
		"status=aprovado",
		"lote_id=abc",
		"page=0",
		"limit=1000",
	} {
		req := httptest.NewRequest(http.MethodGet, "/admin/inscricoes?"+query, nil)
		_, err := parseInscricaoFilter(req)
		assert.Error(t, err, "query %q must be rejected", query)
	}
}
