package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/projetojaiba/corrida-system/models"
	"github.com/projetojaiba/corrida-system/repositories"
)

type LoteService interface {
	Create(ctx context.Context, input LoteInput) (*models.Lote, error)
	Update(ctx context.Context, id int, input LoteInput) (*models.Lote, error)
	// Activate делает лот действующим; любой другой активный лот деактивируется.
	Activate(ctx context.Context, id int) (*models.Lote, error)
	List(ctx context.Context) ([]models.Lote, *models.Lote, error)
	GetByID(ctx context.Context, id int) (*models.Lote, error)
}

type LoteInput struct {
	Nome       string  `json:"nome"`
	Valor      float64 `json:"valor"`
	TotalVagas int     `json:"total_vagas"`
	Status     bool    `json:"status"`
}

type loteService struct {
	loteRepo repositories.LoteRepository
}

func NewLoteService(loteRepo repositories.LoteRepository) LoteService {
	return &loteService{loteRepo: loteRepo}
}

func (s *loteService) Create(ctx context.Context, input LoteInput) (*models.Lote, error) {
	if err := validateLoteInput(input); err != nil {
		return nil, err
	}

	lote := &models.Lote{
		Nome:       strings.TrimSpace(input.Nome),
		Valor:      input.Valor,
		TotalVagas: input.TotalVagas,
		Status:     false, // активация только явным Activate, чтобы не нарушить инвариант
	}

	if err := s.loteRepo.Create(ctx, lote); err != nil {
		if errors.Is(err, repositories.ErrLoteNomeConflict) {
			return nil, ErrLoteNomeConflict
		}
		return nil, fmt.Errorf("failed to create lote: %w", err)
	}

	if input.Status {
		if err := s.loteRepo.Activate(ctx, lote.ID); err != nil {
			return nil, fmt.Errorf("failed to activate created lote: %w", err)
		}
		lote.Status = true
	}
	return lote, nil
}

func (s *loteService) Update(ctx context.Context, id int, input LoteInput) (*models.Lote, error) {
	if err := validateLoteInput(input); err != nil {
		return nil, err
	}

	lote, err := s.loteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrLoteNotFound) {
			return nil, ErrLoteNotFound
		}
		return nil, err
	}

	lote.Nome = strings.TrimSpace(input.Nome)
	lote.Valor = input.Valor
	lote.TotalVagas = input.TotalVagas

	if err := s.loteRepo.Update(ctx, lote); err != nil {
		switch {
		case errors.Is(err, repositories.ErrLoteNotFound):
			return nil, ErrLoteNotFound
		case errors.Is(err, repositories.ErrLoteNomeConflict):
			return nil, ErrLoteNomeConflict
		}
		return nil, fmt.Errorf("failed to update lote %d: %w", id, err)
	}
	return lote, nil
}

func (s *loteService) Activate(ctx context.Context, id int) (*models.Lote, error) {
	if err := s.loteRepo.Activate(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrLoteNotFound) {
			return nil, ErrLoteNotFound
		}
		return nil, fmt.Errorf("failed to activate lote %d: %w", id, err)
	}
	return s.loteRepo.GetByID(ctx, id)
}

func (s *loteService) List(ctx context.Context) ([]models.Lote, *models.Lote, error) {
	lotes, err := s.loteRepo.List(ctx)
	if err != nil {
		return nil, nil, err
	}

	vigente, err := s.loteRepo.GetActive(ctx)
	if err != nil {
		if errors.Is(err, repositories.ErrNoActiveLote) {
			return lotes, nil, nil
		}
		return nil, nil, err
	}
	return lotes, vigente, nil
}

func (s *loteService) GetByID(ctx context.Context, id int) (*models.Lote, error) {
	lote, err := s.loteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrLoteNotFound) {
			return nil, ErrLoteNotFound
		}
		return nil, err
	}
	return lote, nil
}

func validateLoteInput(input LoteInput) error {
	if strings.TrimSpace(input.Nome) == "" {
		return ErrLoteNomeRequired
	}
	if input.TotalVagas <= 0 {
		return ErrLoteCapacityInvalid
	}
	return nil
}
