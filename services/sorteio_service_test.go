package services

import (
	"context"
	"errors"
	"testing"

	"github.com/projetojaiba/corrida-system/models"
	"github.com/projetojaiba/corrida-system/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSorteioRepo struct {
	createCalls      int
	participantCalls int
	deleteCalls      []int

	createErr      error
	participantErr error
	deleteErr      error

	sorteios map[int]*models.Sorteio
	statuses map[int]models.SorteioStatus
}

func newFakeSorteioRepo() *fakeSorteioRepo {
	return &fakeSorteioRepo{
		sorteios: make(map[int]*models.Sorteio),
		statuses: make(map[int]models.SorteioStatus),
	}
}

func (f *fakeSorteioRepo) Create(ctx context.Context, exec repositories.SQLExecutor, sorteio *models.Sorteio) error {
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	sorteio.ID = 101
	f.sorteios[sorteio.ID] = sorteio
	return nil
}

func (f *fakeSorteioRepo) CreateParticipantesBatch(ctx context.Context, exec repositories.SQLExecutor, participantes []*models.SorteioParticipante) error {
	f.participantCalls++
	return f.participantErr
}

func (f *fakeSorteioRepo) Delete(ctx context.Context, id int) error {
	f.deleteCalls = append(f.deleteCalls, id)
	return f.deleteErr
}

func (f *fakeSorteioRepo) GetByID(ctx context.Context, id int) (*models.Sorteio, error) {
	s, ok := f.sorteios[id]
	if !ok {
		return nil, repositories.ErrSorteioNotFound
	}
	return s, nil
}

func (f *fakeSorteioRepo) List(ctx context.Context, filter repositories.SorteioFilter) ([]models.Sorteio, int, error) {
	out := make([]models.Sorteio, 0, len(f.sorteios))
	for _, s := range f.sorteios {
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (f *fakeSorteioRepo) ListParticipantes(ctx context.Context, sorteioID int) ([]models.SorteioParticipante, error) {
	return nil, nil
}

func (f *fakeSorteioRepo) UpdateStatus(ctx context.Context, id int, status models.SorteioStatus) error {
	if _, ok := f.sorteios[id]; !ok {
		return repositories.ErrSorteioNotFound
	}
	f.statuses[id] = status
	return nil
}

func testAdmin() *models.AdminUser {
	return &models.AdminUser{ID: 7, Nome: "Maria Souza", Role: models.RoleAdmin}
}

func validSalvarInput() SalvarSorteioInput {
	return SalvarSorteioInput{
		Titulo:         "Sorteio de brindes",
		LoteNome:       "Todos os lotes",
		TotalInscritos: 50,
		Sorteados: []SorteadoInput{
			{InscricaoID: 11, Rodada: 1},
			{InscricaoID: 22, Rodada: 2},
			{InscricaoID: 33, Rodada: 3},
		},
	}
}

func TestSaveRejectsInvalidInputBeforeRepoCalls(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SalvarSorteioInput)
		wantErr error
	}{
		{
			name:    "empty titulo",
			mutate:  func(in *SalvarSorteioInput) { in.Titulo = "   " },
			wantErr: ErrSorteioTituloRequired,
		},
		{
			name:    "no sorteados",
			mutate:  func(in *SalvarSorteioInput) { in.Sorteados = nil },
			wantErr: ErrSorteioSemSorteados,
		},
		{
			name:    "rodada out of range",
			mutate:  func(in *SalvarSorteioInput) { in.Sorteados[2].Rodada = 5 },
			wantErr: ErrSorteioRodadasInvalid,
		},
		{
			name:    "duplicate rodada",
			mutate:  func(in *SalvarSorteioInput) { in.Sorteados[2].Rodada = 1 },
			wantErr: ErrSorteioRodadasInvalid,
		},
		{
			name:    "duplicate inscricao",
			mutate:  func(in *SalvarSorteioInput) { in.Sorteados[2].InscricaoID = 11 },
			wantErr: ErrSorteioDuplicateEntrant,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := newFakeSorteioRepo()
			svc := NewSorteioService(repo)

			input := validSalvarInput()
			tc.mutate(&input)

			_, err := svc.Save(context.Background(), testAdmin(), input)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Zero(t, repo.createCalls, "repo must not be touched on invalid input")
			assert.Zero(t, repo.participantCalls)
		})
	}
}

func TestSavePersistsSorteioWithParticipantes(t *testing.T) {
	repo := newFakeSorteioRepo()
	svc := NewSorteioService(repo)

	sorteio, err := svc.Save(context.Background(), testAdmin(), validSalvarInput())
	require.NoError(t, err)

	assert.Equal(t, 101, sorteio.ID)
	assert.Equal(t, "Sorteio de brindes", sorteio.Titulo)
	assert.Equal(t, models.SorteioFinalizado, sorteio.Status)
	assert.Equal(t, 3, sorteio.TotalSorteados)
	assert.Equal(t, 7, sorteio.RealizadoPor)
	assert.Equal(t, "Maria Souza", sorteio.RealizadoPorNome)
	assert.Equal(t, 1, repo.participantCalls)
	assert.Empty(t, repo.deleteCalls)
}

func TestSaveRollsBackSorteioWhenParticipantesFail(t *testing.T) {
	repo := newFakeSorteioRepo()
	repo.participantErr = errors.New("insert failed")
	svc := NewSorteioService(repo)

	_, err := svc.Save(context.Background(), testAdmin(), validSalvarInput())
	require.Error(t, err)

	// Компенсирующее удаление должно убрать именно созданную запись.
	assert.Equal(t, []int{101}, repo.deleteCalls)
}

func TestSaveReturnsOriginalErrorWhenRollbackAlsoFails(t *testing.T) {
	repo := newFakeSorteioRepo()
	repo.participantErr = errors.New("insert failed")
	repo.deleteErr = errors.New("delete failed")
	svc := NewSorteioService(repo)

	_, err := svc.Save(context.Background(), testAdmin(), validSalvarInput())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert failed")
}

func TestCancelMarksSorteioCancelado(t *testing.T) {
	repo := newFakeSorteioRepo()
	svc := NewSorteioService(repo)

	sorteio, err := svc.Save(context.Background(), testAdmin(), validSalvarInput())
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(context.Background(), sorteio.ID))
	assert.Equal(t, models.SorteioCancelado, repo.statuses[sorteio.ID])
}

func TestCancelUnknownSorteio(t *testing.T) {
	repo := newFakeSorteioRepo()
	svc := NewSorteioService(repo)

	err := svc.Cancel(context.Background(), 404)
	assert.ErrorIs(t, err, ErrSorteioNotFound)
}
