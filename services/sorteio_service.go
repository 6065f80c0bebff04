package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/projetojaiba/corrida-system/models"
	"github.com/projetojaiba/corrida-system/repositories"
)

// SorteadoInput — одна вытянутая заявка с её раундом.
type SorteadoInput struct {
	InscricaoID int `json:"inscricao_id"`
	Rodada      int `json:"rodada"`
}

// SalvarSorteioInput — финализация сессии розыгрыша.
type SalvarSorteioInput struct {
	Titulo         string          `json:"titulo"`
	Descricao      *string         `json:"descricao,omitempty"`
	LoteID         *int            `json:"lote_id"` // nil = все лоты
	LoteNome       string          `json:"lote_nome"`
	TotalInscritos int             `json:"total_inscritos"`
	Sorteados      []SorteadoInput `json:"sorteados"`
}

type SorteioService interface {
	// Save сохраняет завершённый розыгрыш одной логической единицей:
	// запись sorteio, затем участники; при сбое вставки участников
	// выполняется компенсирующее удаление записи.
	Save(ctx context.Context, admin *models.AdminUser, input SalvarSorteioInput) (*models.Sorteio, error)
	GetByID(ctx context.Context, id int) (*models.Sorteio, error)
	List(ctx context.Context, filter repositories.SorteioFilter) ([]models.Sorteio, models.Pagination, error)
	// Cancel переводит розыгрыш в статус cancelado; участники сохраняются.
	Cancel(ctx context.Context, id int) error
}

type sorteioService struct {
	sorteioRepo repositories.SorteioRepository
}

func NewSorteioService(sorteioRepo repositories.SorteioRepository) SorteioService {
	return &sorteioService{sorteioRepo: sorteioRepo}
}

func (s *sorteioService) Save(ctx context.Context, admin *models.AdminUser, input SalvarSorteioInput) (*models.Sorteio, error) {
	// Валидация до каких-либо обращений к БД.
	if err := validateSalvarSorteioInput(input); err != nil {
		return nil, err
	}

	sorteio := &models.Sorteio{
		Titulo:           strings.TrimSpace(input.Titulo),
		Descricao:        input.Descricao,
		LoteID:           input.LoteID,
		LoteNome:         input.LoteNome,
		TotalInscritos:   input.TotalInscritos,
		TotalSorteados:   len(input.Sorteados),
		RealizadoPor:     admin.ID,
		RealizadoPorNome: admin.Nome,
		Status:           models.SorteioFinalizado,
	}

	if err := s.sorteioRepo.Create(ctx, nil, sorteio); err != nil {
		return nil, fmt.Errorf("failed to save sorteio: %w", err)
	}

	participantes := make([]*models.SorteioParticipante, 0, len(input.Sorteados))
	for _, sorteado := range input.Sorteados {
		participantes = append(participantes, &models.SorteioParticipante{
			SorteioID:   sorteio.ID,
			InscricaoID: sorteado.InscricaoID,
			Rodada:      sorteado.Rodada,
		})
	}

	if err := s.sorteioRepo.CreateParticipantesBatch(ctx, nil, participantes); err != nil {
		s.rollbackSorteio(ctx, sorteio.ID)
		return nil, fmt.Errorf("failed to save sorteio participantes: %w", err)
	}

	return sorteio, nil
}

// rollbackSorteio — компенсирующее удаление записи розыгрыша, когда
// вставка участников провалилась: осиротевший sorteio без участников
// существовать не должен. Неудача отката только логируется — вызывающему
// возвращается исходная ошибка.
func (s *sorteioService) rollbackSorteio(ctx context.Context, sorteioID int) {
	if err := s.sorteioRepo.Delete(ctx, sorteioID); err != nil {
		log.Printf("failed to roll back sorteio %d: %v", sorteioID, err)
	}
}

func (s *sorteioService) GetByID(ctx context.Context, id int) (*models.Sorteio, error) {
	sorteio, err := s.sorteioRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSorteioNotFound) {
			return nil, ErrSorteioNotFound
		}
		return nil, err
	}

	participantes, err := s.sorteioRepo.ListParticipantes(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load sorteio %d participantes: %w", id, err)
	}
	sorteio.Participantes = participantes
	return sorteio, nil
}

func (s *sorteioService) List(ctx context.Context, filter repositories.SorteioFilter) ([]models.Sorteio, models.Pagination, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	sorteios, total, err := s.sorteioRepo.List(ctx, filter)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return sorteios, models.NewPagination(filter.Page, filter.Limit, total), nil
}

func (s *sorteioService) Cancel(ctx context.Context, id int) error {
	if err := s.sorteioRepo.UpdateStatus(ctx, id, models.SorteioCancelado); err != nil {
		if errors.Is(err, repositories.ErrSorteioNotFound) {
			return ErrSorteioNotFound
		}
		return fmt.Errorf("failed to cancel sorteio %d: %w", id, err)
	}
	return nil
}

func validateSalvarSorteioInput(input SalvarSorteioInput) error {
	if strings.TrimSpace(input.Titulo) == "" {
		return ErrSorteioTituloRequired
	}
	if len(input.Sorteados) == 0 {
		return ErrSorteioSemSorteados
	}

	// Раунды — плотная последовательность 1..N, заявки без повторов.
	seenRodadas := make(map[int]bool, len(input.Sorteados))
	seenInscricoes := make(map[int]bool, len(input.Sorteados))
	for _, sorteado := range input.Sorteados {
		if sorteado.Rodada < 1 || sorteado.Rodada > len(input.Sorteados) || seenRodadas[sorteado.Rodada] {
			return ErrSorteioRodadasInvalid
		}
		if seenInscricoes[sorteado.InscricaoID] {
			return ErrSorteioDuplicateEntrant
		}
		seenRodadas[sorteado.Rodada] = true
		seenInscricoes[sorteado.InscricaoID] = true
	}
	return nil
}
