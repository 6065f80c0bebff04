package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/projetojaiba/corrida-system/models"
	"github.com/projetojaiba/corrida-system/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportInscricoesCSV(t *testing.T) {
	email := "joao@example.com"
	shirt := 42
	repo := newFakeInscricaoRepo()
	repo.add(&models.Inscricao{
		ID:           1,
		NomeCompleto: "Joao da Silva",
		CPF:          validTestCPF,
		Idade:        30,
		Sexo:         "Masculino",
		Celular:      "38999991234",
		Email:        &email,
		TamanhoBlusa: "M",
		NumberShirt:  &shirt,
		Status:       models.InscricaoConfirmado,
		LoteID:       2,
		Lote:         &models.Lote{ID: 2, Nome: "Lote 1", Valor: 89.9},
		CreatedAt:    time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC),
		UpdatedAt:    time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC),
	})

	svc := NewExportService(repo)

	data, fileName, err := svc.ExportInscricoesCSV(context.Background(), repositories.InscricaoFilter{})
	require.NoError(t, err)

	assert.Contains(t, fileName, "inscricoes_")
	assert.Contains(t, fileName, ".csv")

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2, "header plus one record")

	assert.Equal(t, "Nome Completo", records[0][2])

	row := records[1]
	assert.Equal(t, "1", row[0])
	assert.Equal(t, "42", row[1])
	assert.Equal(t, "Joao da Silva", row[2])
	assert.Equal(t, "529.982.247-25", row[3])
	assert.Equal(t, "joao@example.com", row[4])
	assert.Equal(t, "(38) 99999-1234", row[5])
	assert.Equal(t, "confirmado", row[9])
	assert.Equal(t, "Lote 1", row[10])
	assert.Equal(t, "R$ 89.90", row[11])
	assert.Equal(t, "10/03/2026 14:30", row[12])
}

func TestExportHandlesMissingOptionalFields(t *testing.T) {
	repo := newFakeInscricaoRepo()
	repo.add(&models.Inscricao{
		ID:           1,
		NomeCompleto: "Sem Email",
		CPF:          validTestCPF,
		Status:       models.InscricaoPendente,
	})

	svc := NewExportService(repo)

	data, _, err := svc.ExportInscricoesCSV(context.Background(), repositories.InscricaoFilter{})
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	row := records[1]
	assert.Empty(t, row[1], "missing shirt number stays empty")
	assert.Empty(t, row[4], "missing email stays empty")
	assert.Equal(t, "N/A", row[10])
	assert.Equal(t, "N/A", row[11])
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "529.982.247-25", FormatCPF(validTestCPF))
	assert.Equal(t, "123", FormatCPF("123"), "short values pass through unchanged")

	assert.Equal(t, "(38) 99999-1234", FormatCelular("38999991234"))
	assert.Equal(t, "999", FormatCelular("999"))
}
