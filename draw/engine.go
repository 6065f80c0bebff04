package draw

import (
	"errors"
	"math/rand"
	"sync"

	"github.com/projetojaiba/corrida-system/models"
)

var (
	ErrPoolEmpty     = errors.New("no eligible inscricoes to start a draw session")
	ErrPoolExhausted = errors.New("remaining pool is exhausted")
	ErrNilRand       = errors.New("random source is required")
)

// Result — заявка, вытянутая в конкретном раунде.
type Result struct {
	Inscricao models.Inscricao `json:"inscricao"`
	Rodada    int              `json:"rodada"`
}

// Engine проводит розыгрыш без возвращения по снимку подтверждённых заявок.
// Источник случайности инжектируется, чтобы последовательности были
// воспроизводимыми в тестах. Все операции сериализуются мьютексом:
// одновременно выполняется не более одного розыгрыша.
type Engine struct {
	mu        sync.Mutex
	rng       *rand.Rand
	original  []models.Inscricao
	remaining []models.Inscricao
	drawn     []Result
}

// NewEngine создаёт сессию розыгрыша по непустому пулу заявок.
// Пул копируется: последующие изменения среза вызывающего не влияют на сессию.
func NewEngine(pool []models.Inscricao, rng *rand.Rand) (*Engine, error) {
	if len(pool) == 0 {
		return nil, ErrPoolEmpty
	}
	if rng == nil {
		return nil, ErrNilRand
	}

	original := make([]models.Inscricao, len(pool))
	copy(original, pool)

	e := &Engine{
		rng:      rng,
		original: original,
	}
	e.resetLocked()
	return e, nil
}

// Draw выбирает равномерно случайную заявку из оставшегося пула,
// присваивает ей следующий номер раунда (с 1) и убирает её из пула.
func (e *Engine) Draw() (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.remaining) == 0 {
		return Result{}, ErrPoolExhausted
	}

	i := e.rng.Intn(len(e.remaining))
	picked := e.remaining[i]
	e.remaining = append(e.remaining[:i], e.remaining[i+1:]...)

	result := Result{
		Inscricao: picked,
		Rodada:    len(e.drawn) + 1,
	}
	e.drawn = append(e.drawn, result)
	return result, nil
}

// Preview возвращает случайную заявку из оставшегося пула, не фиксируя её.
// Используется для анимации промежуточных «прокруток» перед финальным Draw.
func (e *Engine) Preview() (models.Inscricao, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.remaining) == 0 {
		return models.Inscricao{}, ErrPoolExhausted
	}
	return e.remaining[e.rng.Intn(len(e.remaining))], nil
}

// Reset восстанавливает исходный пул и очищает список вытянутых.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
}

func (e *Engine) resetLocked() {
	e.remaining = make([]models.Inscricao, len(e.original))
	copy(e.remaining, e.original)
	e.drawn = e.drawn[:0]
}

// Drawn возвращает копию списка вытянутых в порядке раундов.
func (e *Engine) Drawn() []Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Result, len(e.drawn))
	copy(out, e.drawn)
	return out
}

// Remaining возвращает число заявок, ещё не вытянутых в этой сессии.
func (e *Engine) Remaining() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.remaining)
}

// PoolSize возвращает размер исходного пула.
func (e *Engine) PoolSize() int {
	return len(e.original)
}

// Exhausted сообщает, исчерпан ли оставшийся пул.
func (e *Engine) Exhausted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.remaining) == 0
}
