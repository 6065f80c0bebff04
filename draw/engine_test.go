package draw

import (
	"math/rand"
	"testing"

	"github.com/projetojaiba/corrida-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPool(n int) []models.Inscricao {
	pool := make([]models.Inscricao, 0, n)
	for i := 1; i <= n; i++ {
		pool = append(pool, models.Inscricao{ID: i, NomeCompleto: "Participante"})
	}
	return pool
}

func TestNewEngineRequiresPoolAndRand(t *testing.T) {
	_, err := NewEngine(nil, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrPoolEmpty)

	_, err = NewEngine(testPool(3), nil)
	assert.ErrorIs(t, err, ErrNilRand)
}

func TestDrawAssignsDenseRoundsWithoutRepeats(t *testing.T) {
	engine, err := NewEngine(testPool(5), rand.New(rand.NewSource(42)))
	require.NoError(t, err)

	seen := make(map[int]bool)
	for round := 1; round <= 5; round++ {
		result, err := engine.Draw()
		require.NoError(t, err)
		assert.Equal(t, round, result.Rodada)
		assert.False(t, seen[result.Inscricao.ID], "inscricao %d drawn twice", result.Inscricao.ID)
		seen[result.Inscricao.ID] = true
	}

	assert.True(t, engine.Exhausted())
	assert.Equal(t, 0, engine.Remaining())

	_, err = engine.Draw()
	assert.ErrorIs(t, err, ErrPoolExhausted)
}

func TestDrawIsDeterministicForSeed(t *testing.T) {
	first, err := NewEngine(testPool(10), rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	second, err := NewEngine(testPool(10), rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		a, err := first.Draw()
		require.NoError(t, err)
		b, err := second.Draw()
		require.NoError(t, err)
		assert.Equal(t, a.Inscricao.ID, b.Inscricao.ID)
		assert.Equal(t, a.Rodada, b.Rodada)
	}
}

func TestResetRestoresOriginalPool(t *testing.T) {
	engine, err := NewEngine(testPool(3), rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	_, err = engine.Draw()
	require.NoError(t, err)
	_, err = engine.Draw()
	require.NoError(t, err)
	assert.Equal(t, 1, engine.Remaining())
	assert.Len(t, engine.Drawn(), 2)

	engine.Reset()

	assert.Equal(t, 3, engine.Remaining())
	assert.Empty(t, engine.Drawn())
	assert.Equal(t, 3, engine.PoolSize())
}

func TestPreviewDoesNotCommit(t *testing.T) {
	engine, err := NewEngine(testPool(4), rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		_, err := engine.Preview()
		require.NoError(t, err)
	}

	assert.Equal(t, 4, engine.Remaining())
	assert.Empty(t, engine.Drawn())
}

func TestEngineCopiesPoolSnapshot(t *testing.T) {
	pool := testPool(3)
	engine, err := NewEngine(pool, rand.New(rand.NewSource(9)))
	require.NoError(t, err)

	// Изменение исходного среза не должно влиять на сессию.
	pool[0].ID = 999

	drawnIDs := make(map[int]bool)
	for !engine.Exhausted() {
		result, err := engine.Draw()
		require.NoError(t, err)
		drawnIDs[result.Inscricao.ID] = true
	}
	assert.False(t, drawnIDs[999])
	assert.True(t, drawnIDs[1])
}
