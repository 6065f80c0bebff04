package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/projetojaiba/corrida-system/models"
)

var (
	ErrSorteioNotFound             = errors.New("sorteio not found")
	ErrSorteioParticipanteConflict = errors.New("inscricao already drawn in this sorteio")
	ErrSorteioInscricaoInvalid     = errors.New("sorteio inscricao conflict or invalid")
)

// SorteioFilter описывает фильтры истории розыгрышей.
type SorteioFilter struct {
	LoteID *int
	Status *models.SorteioStatus
	Search string // ilike по titulo, lote_nome, realizado_por_nome
	Page   int
	Limit  int
}

type SorteioRepository interface {
	Create(ctx context.Context, exec SQLExecutor, sorteio *models.Sorteio) error
	CreateParticipantesBatch(ctx context.Context, exec SQLExecutor, participantes []*models.SorteioParticipante) error
	// Delete удаляет запись розыгрыша. Используется как компенсирующий шаг,
	// когда вставка участников провалилась после создания записи.
	Delete(ctx context.Context, id int) error
	GetByID(ctx context.Context, id int) (*models.Sorteio, error)
	List(ctx context.Context, filter SorteioFilter) ([]models.Sorteio, int, error)
	ListParticipantes(ctx context.Context, sorteioID int) ([]models.SorteioParticipante, error)
	UpdateStatus(ctx context.Context, id int, status models.SorteioStatus) error
}

type postgresSorteioRepository struct {
	db *sql.DB
}

func NewPostgresSorteioRepository(db *sql.DB) SorteioRepository {
	return &postgresSorteioRepository{db: db}
}

func (r *postgresSorteioRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresSorteioRepository) Create(ctx context.Context, exec SQLExecutor, sorteio *models.Sorteio) error {
	query := `
		INSERT INTO sorteios
			(titulo, descricao, lote_id, lote_nome, total_inscritos, total_sorteados,
			 realizado_por, realizado_por_nome, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		sorteio.Titulo,
		sorteio.Descricao,
		sorteio.LoteID,
		sorteio.LoteNome,
		sorteio.TotalInscritos,
		sorteio.TotalSorteados,
		sorteio.RealizadoPor,
		sorteio.RealizadoPorNome,
		sorteio.Status,
	).Scan(&sorteio.ID, &sorteio.CreatedAt, &sorteio.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert sorteio: %w", err)
	}
	return nil
}

func (r *postgresSorteioRepository) CreateParticipantesBatch(ctx context.Context, exec SQLExecutor, participantes []*models.SorteioParticipante) error {
	if len(participantes) == 0 {
		return nil
	}

	valueStrings := make([]string, 0, len(participantes))
	valueArgs := make([]interface{}, 0, len(participantes)*3)
	for i, p := range participantes {
		valueStrings = append(valueStrings, fmt.Sprintf("($%d, $%d, $%d)", i*3+1, i*3+2, i*3+3))
		valueArgs = append(valueArgs, p.SorteioID, p.InscricaoID, p.Rodada)
	}

	query := fmt.Sprintf(`
		INSERT INTO sorteio_participantes (sorteio_id, inscricao_id, rodada)
		VALUES %s`, strings.Join(valueStrings, ", "))

	_, err := r.getExecutor(exec).ExecContext(ctx, query, valueArgs...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation (sorteio_id, inscricao_id) или (sorteio_id, rodada)
				return ErrSorteioParticipanteConflict
			case "23503": // foreign_key_violation
				if pqErr.Constraint == "sorteio_participantes_inscricao_id_fkey" {
					return ErrSorteioInscricaoInvalid
				}
			}
		}
		return fmt.Errorf("failed to insert sorteio participantes: %w", err)
	}
	return nil
}

func (r *postgresSorteioRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sorteios WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, checkErr := checkRowsAffected(result)
	if checkErr != nil {
		return checkErr
	}
	if rowsAffected == 0 {
		return ErrSorteioNotFound
	}
	return nil
}

func (r *postgresSorteioRepository) GetByID(ctx context.Context, id int) (*models.Sorteio, error) {
	query := `
		SELECT id, titulo, descricao, lote_id, lote_nome, total_inscritos,
		       total_sorteados, realizado_por, realizado_por_nome, status,
		       created_at, updated_at
		FROM sorteios
		WHERE id = $1`

	sorteio := &models.Sorteio{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&sorteio.ID,
		&sorteio.Titulo,
		&sorteio.Descricao,
		&sorteio.LoteID,
		&sorteio.LoteNome,
		&sorteio.TotalInscritos,
		&sorteio.TotalSorteados,
		&sorteio.RealizadoPor,
		&sorteio.RealizadoPorNome,
		&sorteio.Status,
		&sorteio.CreatedAt,
		&sorteio.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSorteioNotFound
		}
		return nil, err
	}
	return sorteio, nil
}

func (r *postgresSorteioRepository) List(ctx context.Context, filter SorteioFilter) ([]models.Sorteio, int, error) {
	conditions := make([]string, 0, 3)
	args := make([]interface{}, 0, 5)

	if filter.LoteID != nil {
		args = append(args, *filter.LoteID)
		conditions = append(conditions, fmt.Sprintf("lote_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(titulo ILIKE $%d OR lote_nome ILIKE $%d OR realizado_por_nome ILIKE $%d)", n, n, n))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM sorteios %s`, where)
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count sorteios: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)

	query := fmt.Sprintf(`
		SELECT id, titulo, descricao, lote_id, lote_nome, total_inscritos,
		       total_sorteados, realizado_por, realizado_por_nome, status,
		       created_at, updated_at
		FROM sorteios
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	sorteios := make([]models.Sorteio, 0)
	for rows.Next() {
		var sorteio models.Sorteio
		if scanErr := rows.Scan(
			&sorteio.ID,
			&sorteio.Titulo,
			&sorteio.Descricao,
			&sorteio.LoteID,
			&sorteio.LoteNome,
			&sorteio.TotalInscritos,
			&sorteio.TotalSorteados,
			&sorteio.RealizadoPor,
			&sorteio.RealizadoPorNome,
			&sorteio.Status,
			&sorteio.CreatedAt,
			&sorteio.UpdatedAt,
		); scanErr != nil {
			return nil, 0, scanErr
		}
		sorteios = append(sorteios, sorteio)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, err
	}
	return sorteios, total, nil
}

// ListParticipantes возвращает участников розыгрыша с данными заявки,
// упорядоченных по rodada.
func (r *postgresSorteioRepository) ListParticipantes(ctx context.Context, sorteioID int) ([]models.SorteioParticipante, error) {
	query := `
		SELECT
			sp.id, sp.sorteio_id, sp.inscricao_id, sp.rodada, sp.created_at,
			i.nome_completo, i.cpf, i.email, i.celular, i.idade, i.sexo, i.tamanho_blusa
		FROM sorteio_participantes sp
		JOIN inscricoes i ON sp.inscricao_id = i.id
		WHERE sp.sorteio_id = $1
		ORDER BY sp.rodada ASC`

	rows, err := r.db.QueryContext(ctx, query, sorteioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	participantes := make([]models.SorteioParticipante, 0)
	for rows.Next() {
		var p models.SorteioParticipante
		if scanErr := rows.Scan(
			&p.ID,
			&p.SorteioID,
			&p.InscricaoID,
			&p.Rodada,
			&p.CreatedAt,
			&p.NomeCompleto,
			&p.CPF,
			&p.Email,
			&p.Celular,
			&p.Idade,
			&p.Sexo,
			&p.TamanhoBlusa,
		); scanErr != nil {
			return nil, scanErr
		}
		participantes = append(participantes, p)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return participantes, nil
}

func (r *postgresSorteioRepository) UpdateStatus(ctx context.Context, id int, status models.SorteioStatus) error {
	query := `UPDATE sorteios SET status = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}

	rowsAffected, checkErr := checkRowsAffected(result)
	if checkErr != nil {
		return checkErr
	}
	if rowsAffected == 0 {
		return ErrSorteioNotFound
	}
	return nil
}
