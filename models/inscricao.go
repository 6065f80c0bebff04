package models

import "time"

// InscricaoStatus представляет статусы заявки, соответствующие ENUM в БД.
type InscricaoStatus string

const (
	InscricaoPendente   InscricaoStatus = "pendente"
	InscricaoConfirmado InscricaoStatus = "confirmado"
	InscricaoCancelado  InscricaoStatus = "cancelado"
)

func (s InscricaoStatus) Valid() bool {
	switch s {
	case InscricaoPendente, InscricaoConfirmado, InscricaoCancelado:
		return true
	}
	return false
}

var TamanhosBlusa = []string{"P", "M", "G", "GG"}

var SexoOptions = []string{"Feminino", "Masculino"}

// Inscricao представляет заявку участника забега.
type Inscricao struct {
	ID                 int             `json:"id" db:"id"`
	NomeCompleto       string          `json:"nome_completo" db:"nome_completo"`
	CPF                string          `json:"cpf" db:"cpf"`
	Idade              int             `json:"idade" db:"idade"`
	Sexo               string          `json:"sexo" db:"sexo"`
	Celular            string          `json:"celular" db:"celular"`
	Email              *string         `json:"email,omitempty" db:"email"`
	TamanhoBlusa       string          `json:"tamanho_blusa" db:"tamanho_blusa"`
	NumberShirt        *int            `json:"number_shirt,omitempty" db:"number_shirt"`
	Status             InscricaoStatus `json:"status" db:"status"`
	LoteID             int             `json:"lote_id" db:"lote_id"`
	ComprovanteFileKey *string         `json:"-" db:"comprovante_file_key"`
	ComprovanteURL     *string         `json:"comprovante_url,omitempty" db:"-"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Lote *Lote `json:"lote,omitempty" db:"-"`
}

// InscricaoStats агрегированные счётчики по статусам.
type InscricaoStats struct {
	Total       int `json:"total"`
	Confirmados int `json:"confirmados"`
	Pendentes   int `json:"pendentes"`
	Cancelados  int `json:"cancelados"`
}
