package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/projetojaiba/corrida-system/repositories"
)

// ExportService формирует CSV-выгрузку заявок с фильтрами админ-списка.
type ExportService interface {
	ExportInscricoesCSV(ctx context.Context, filter repositories.InscricaoFilter) ([]byte, string, error)
}

type exportService struct {
	inscricaoRepo repositories.InscricaoRepository
}

func NewExportService(inscricaoRepo repositories.InscricaoRepository) ExportService {
	return &exportService{inscricaoRepo: inscricaoRepo}
}

func (s *exportService) ExportInscricoesCSV(ctx context.Context, filter repositories.InscricaoFilter) ([]byte, string, error) {
	// Выгрузка без пагинации: одной страницей всё, что прошло фильтры.
	filter.Page = 1
	filter.Limit = 1 << 20

	inscricoes, _, err := s.inscricaoRepo.List(ctx, filter)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load inscricoes for export: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"ID", "Numero da Camisa", "Nome Completo", "CPF", "Email", "Celular",
		"Idade", "Sexo", "Tamanho da Blusa", "Status", "Lote", "Valor",
		"Data de Inscricao", "Ultima Atualizacao",
	}
	if err := w.Write(header); err != nil {
		return nil, "", err
	}

	for _, inscricao := range inscricoes {
		numberShirt := ""
		if inscricao.NumberShirt != nil {
			numberShirt = strconv.Itoa(*inscricao.NumberShirt)
		}
		email := ""
		if inscricao.Email != nil {
			email = *inscricao.Email
		}
		loteNome := "N/A"
		loteValor := "N/A"
		if inscricao.Lote != nil {
			loteNome = inscricao.Lote.Nome
			loteValor = fmt.Sprintf("R$ %.2f", inscricao.Lote.Valor)
		}

		record := []string{
			strconv.Itoa(inscricao.ID),
			numberShirt,
			inscricao.NomeCompleto,
			FormatCPF(inscricao.CPF),
			email,
			FormatCelular(inscricao.Celular),
			strconv.Itoa(inscricao.Idade),
			inscricao.Sexo,
			inscricao.TamanhoBlusa,
			string(inscricao.Status),
			loteNome,
			loteValor,
			inscricao.CreatedAt.Format("02/01/2006 15:04"),
			inscricao.UpdatedAt.Format("02/01/2006 15:04"),
		}
		if err := w.Write(record); err != nil {
			return nil, "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", err
	}

	fileName := fmt.Sprintf("inscricoes_%s.csv", time.Now().Format("2006-01-02"))
	return buf.Bytes(), fileName, nil
}

// FormatCPF приводит 11 цифр к виду 000.000.000-00.
func FormatCPF(cpf string) string {
	if len(cpf) != 11 {
		return cpf
	}
	return fmt.Sprintf("%s.%s.%s-%s", cpf[0:3], cpf[3:6], cpf[6:9], cpf[9:11])
}

// FormatCelular приводит 11 цифр к виду (00) 00000-0000.
func FormatCelular(celular string) string {
	if len(celular) != 11 {
		return celular
	}
	return fmt.Sprintf("(%s) %s-%s", celular[0:2], celular[2:7], celular[7:11])
}
