package models

import "time"

// SorteioStatus представляет терминальные статусы сортейо.
type SorteioStatus string

const (
	SorteioFinalizado SorteioStatus = "finalizado"
	SorteioCancelado  SorteioStatus = "cancelado"
)

// Sorteio представляет проведённый розыгрыш. Запись неизменяемая,
// кроме перевода в статус cancelado.
type Sorteio struct {
	ID               int           `json:"id" db:"id"`
	Titulo           string        `json:"titulo" db:"titulo"`
	Descricao        *string       `json:"descricao,omitempty" db:"descricao"`
	LoteID           *int          `json:"lote_id" db:"lote_id"` // nil = все лоты
	LoteNome         string        `json:"lote_nome" db:"lote_nome"`
	TotalInscritos   int           `json:"total_inscritos" db:"total_inscritos"`
	TotalSorteados   int           `json:"total_sorteados" db:"total_sorteados"`
	RealizadoPor     int           `json:"realizado_por" db:"realizado_por"`
	RealizadoPorNome string        `json:"realizado_por_nome" db:"realizado_por_nome"`
	Status           SorteioStatus `json:"status" db:"status"`
	CreatedAt        time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at" db:"updated_at"`

	Participantes []SorteioParticipante `json:"participantes,omitempty" db:"-"`
}

// SorteioParticipante — победитель розыгрыша с номером раунда (rodada).
// Внутри одного сортейо значения rodada уникальны и образуют плотную
// последовательность 1..N.
type SorteioParticipante struct {
	ID          int       `json:"id" db:"id"`
	SorteioID   int       `json:"sorteio_id" db:"sorteio_id"`
	InscricaoID int       `json:"inscricao_id" db:"inscricao_id"`
	Rodada      int       `json:"rodada" db:"rodada"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	// Данные заявки (JOIN с inscricoes)
	NomeCompleto *string `json:"nome_completo,omitempty" db:"-"`
	CPF          *string `json:"cpf,omitempty" db:"-"`
	Email        *string `json:"email,omitempty" db:"-"`
	Celular      *string `json:"celular,omitempty" db:"-"`
	Idade        *int    `json:"idade,omitempty" db:"-"`
	Sexo         *string `json:"sexo,omitempty" db:"-"`
	TamanhoBlusa *string `json:"tamanho_blusa,omitempty" db:"-"`
}
