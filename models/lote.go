package models

import "time"

// Lote представляет лот (ценовую партию с квотой мест).
// Инвариант: в любой момент активен не более одного лота.
type Lote struct {
	ID         int       `json:"id" db:"id"`
	Nome       string    `json:"nome" db:"nome"`
	Valor      float64   `json:"valor" db:"valor"`
	TotalVagas int       `json:"total_vagas" db:"total_vagas"`
	Status     bool      `json:"status" db:"status"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
