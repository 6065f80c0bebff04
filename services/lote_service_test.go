package services

import (
	"context"
	"testing"

	"github.com/projetojaiba/corrida-system/models"
	"github.com/projetojaiba/corrida-system/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memLoteRepo struct {
	lotes  map[int]*models.Lote
	nextID int
}

func newMemLoteRepo() *memLoteRepo {
	return &memLoteRepo{lotes: make(map[int]*models.Lote), nextID: 1}
}

func (m *memLoteRepo) Create(ctx context.Context, lote *models.Lote) error {
	for _, existing := range m.lotes {
		if existing.Nome == lote.Nome {
			return repositories.ErrLoteNomeConflict
		}
	}
	lote.ID = m.nextID
	m.nextID++
	clone := *lote
	m.lotes[lote.ID] = &clone
	return nil
}

func (m *memLoteRepo) Update(ctx context.Context, lote *models.Lote) error {
	if _, ok := m.lotes[lote.ID]; !ok {
		return repositories.ErrLoteNotFound
	}
	clone := *lote
	m.lotes[lote.ID] = &clone
	return nil
}

func (m *memLoteRepo) GetByID(ctx context.Context, id int) (*models.Lote, error) {
	lote, ok := m.lotes[id]
	if !ok {
		return nil, repositories.ErrLoteNotFound
	}
	clone := *lote
	return &clone, nil
}

func (m *memLoteRepo) GetActive(ctx context.Context) (*models.Lote, error) {
	for _, lote := range m.lotes {
		if lote.Status {
			clone := *lote
			return &clone, nil
		}
	}
	return nil, repositories.ErrNoActiveLote
}

func (m *memLoteRepo) List(ctx context.Context) ([]models.Lote, error) {
	out := make([]models.Lote, 0, len(m.lotes))
	for _, lote := range m.lotes {
		out = append(out, *lote)
	}
	return out, nil
}

func (m *memLoteRepo) Activate(ctx context.Context, id int) error {
	if _, ok := m.lotes[id]; !ok {
		return repositories.ErrLoteNotFound
	}
	for _, lote := range m.lotes {
		lote.Status = lote.ID == id
	}
	return nil
}

func TestLoteCreateValidation(t *testing.T) {
	svc := NewLoteService(newMemLoteRepo())

	_, err := svc.Create(context.Background(), LoteInput{Nome: "  ", Valor: 50, TotalVagas: 100})
	assert.ErrorIs(t, err, ErrLoteNomeRequired)

	_, err = svc.Create(context.Background(), LoteInput{Nome: "Lote 1", Valor: 50, TotalVagas: 0})
	assert.ErrorIs(t, err, ErrLoteCapacityInvalid)
}

func TestLoteCreateWithImmediateActivation(t *testing.T) {
	repo := newMemLoteRepo()
	svc := NewLoteService(repo)

	lote, err := svc.Create(context.Background(), LoteInput{Nome: "Lote 1", Valor: 50, TotalVagas: 100, Status: true})
	require.NoError(t, err)
	assert.True(t, lote.Status)

	vigente, err := repo.GetActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, lote.ID, vigente.ID)
}

func TestLoteActivateKeepsSingleActive(t *testing.T) {
	repo := newMemLoteRepo()
	svc := NewLoteService(repo)

	first, err := svc.Create(context.Background(), LoteInput{Nome: "Lote 1", Valor: 50, TotalVagas: 100, Status: true})
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), LoteInput{Nome: "Lote 2", Valor: 70, TotalVagas: 100})
	require.NoError(t, err)

	activated, err := svc.Activate(context.Background(), second.ID)
	require.NoError(t, err)
	assert.True(t, activated.Status)

	// Прежний активный лот должен быть деактивирован.
	previous, err := svc.GetByID(context.Background(), first.ID)
	require.NoError(t, err)
	assert.False(t, previous.Status)

	lotes, vigente, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, lotes, 2)
	require.NotNil(t, vigente)
	assert.Equal(t, second.ID, vigente.ID)
}

func TestLoteListWithoutActive(t *testing.T) {
	repo := newMemLoteRepo()
	svc := NewLoteService(repo)

	_, err := svc.Create(context.Background(), LoteInput{Nome: "Lote 1", Valor: 50, TotalVagas: 100})
	require.NoError(t, err)

	lotes, vigente, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, lotes, 1)
	assert.Nil(t, vigente)
}

func TestLoteUpdateAndConflicts(t *testing.T) {
	repo := newMemLoteRepo()
	svc := NewLoteService(repo)

	lote, err := svc.Create(context.Background(), LoteInput{Nome: "Lote 1", Valor: 50, TotalVagas: 100})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), lote.ID, LoteInput{Nome: "Lote promocional", Valor: 45, TotalVagas: 150})
	require.NoError(t, err)
	assert.Equal(t, "Lote promocional", updated.Nome)
	assert.Equal(t, 45.0, updated.Valor)
	assert.Equal(t, 150, updated.TotalVagas)

	_, err = svc.Update(context.Background(), 999, LoteInput{Nome: "X", Valor: 1, TotalVagas: 1})
	assert.ErrorIs(t, err, ErrLoteNotFound)

	_, err = svc.Create(context.Background(), LoteInput{Nome: "Lote promocional", Valor: 60, TotalVagas: 80})
	assert.ErrorIs(t, err, ErrLoteNomeConflict)
}
