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
	ErrInscricaoNotFound    = errors.New("inscricao not found")
	ErrInscricaoCPFConflict = errors.New("inscricao cpf conflict")
	ErrInscricaoLoteInvalid = errors.New("inscricao lote conflict or invalid")
)

// InscricaoFilter описывает фильтры списочных запросов админ-панели.
type InscricaoFilter struct {
	Status *models.InscricaoStatus
	LoteID *int
	Search string // ilike по nome_completo, email, cpf
	Page   int
	Limit  int
}

type InscricaoRepository interface {
	Create(ctx context.Context, inscricao *models.Inscricao) error
	GetByID(ctx context.Context, id int) (*models.Inscricao, error)
	GetByCPF(ctx context.Context, cpf string) (*models.Inscricao, error)
	List(ctx context.Context, filter InscricaoFilter) ([]models.Inscricao, int, error)
	// ListConfirmed возвращает подтверждённые заявки (опционально по лоту),
	// отсортированные по имени — снимок пула для розыгрыша.
	ListConfirmed(ctx context.Context, loteID *int) ([]models.Inscricao, error)
	UpdateStatus(ctx context.Context, id int, status models.InscricaoStatus) error
	UpdateComprovante(ctx context.Context, id int, fileKey string) error
	CountByLote(ctx context.Context, loteID int) (int, error)
	CountByStatus(ctx context.Context, status *models.InscricaoStatus) (int, error)
}

type postgresInscricaoRepository struct {
	db *sql.DB
}

func NewPostgresInscricaoRepository(db *sql.DB) InscricaoRepository {
	return &postgresInscricaoRepository{db: db}
}

func (r *postgresInscricaoRepository) Create(ctx context.Context, inscricao *models.Inscricao) error {
	query := `
		INSERT INTO inscricoes
			(nome_completo, cpf, idade, sexo, celular, email, tamanho_blusa,
			 comprovante_file_key, lote_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		inscricao.NomeCompleto,
		inscricao.CPF,
		inscricao.Idade,
		inscricao.Sexo,
		inscricao.Celular,
		inscricao.Email,
		inscricao.TamanhoBlusa,
		inscricao.ComprovanteFileKey,
		inscricao.LoteID,
		inscricao.Status,
	).Scan(&inscricao.ID, &inscricao.CreatedAt, &inscricao.UpdatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				if pqErr.Constraint == "inscricoes_cpf_key" {
					return ErrInscricaoCPFConflict
				}
			case "23503": // foreign_key_violation
				if pqErr.Constraint == "inscricoes_lote_id_fkey" {
					return ErrInscricaoLoteInvalid
				}
			}
		}
		return err
	}
	return nil
}

func (r *postgresInscricaoRepository) GetByID(ctx context.Context, id int) (*models.Inscricao, error) {
	query := `
		SELECT
			i.id, i.nome_completo, i.cpf, i.idade, i.sexo, i.celular, i.email,
			i.tamanho_blusa, i.number_shirt, i.status, i.lote_id,
			i.comprovante_file_key, i.created_at, i.updated_at,
			l.id, l.nome, l.valor, l.total_vagas, l.status, l.created_at
		FROM inscricoes i
		JOIN lotes l ON i.lote_id = l.id
		WHERE i.id = $1`

	row := r.db.QueryRowContext(ctx, query, id)

	var inscricao models.Inscricao
	var lote models.Lote

	err := row.Scan(
		&inscricao.ID,
		&inscricao.NomeCompleto,
		&inscricao.CPF,
		&inscricao.Idade,
		&inscricao.Sexo,
		&inscricao.Celular,
		&inscricao.Email,
		&inscricao.TamanhoBlusa,
		&inscricao.NumberShirt,
		&inscricao.Status,
		&inscricao.LoteID,
		&inscricao.ComprovanteFileKey,
		&inscricao.CreatedAt,
		&inscricao.UpdatedAt,
		&lote.ID,
		&lote.Nome,
		&lote.Valor,
		&lote.TotalVagas,
		&lote.Status,
		&lote.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInscricaoNotFound
		}
		return nil, fmt.Errorf("failed to scan inscricao with lote: %w", err)
	}

	inscricao.Lote = &lote
	return &inscricao, nil
}

func (r *postgresInscricaoRepository) GetByCPF(ctx context.Context, cpf string) (*models.Inscricao, error) {
	query := `
		SELECT id, nome_completo, cpf, idade, sexo, celular, email, tamanho_blusa,
		       number_shirt, status, lote_id, comprovante_file_key, created_at, updated_at
		FROM inscricoes
		WHERE cpf = $1`

	inscricao := &models.Inscricao{}
	err := r.db.QueryRowContext(ctx, query, cpf).Scan(
		&inscricao.ID,
		&inscricao.NomeCompleto,
		&inscricao.CPF,
		&inscricao.Idade,
		&inscricao.Sexo,
		&inscricao.Celular,
		&inscricao.Email,
		&inscricao.TamanhoBlusa,
		&inscricao.NumberShirt,
		&inscricao.Status,
		&inscricao.LoteID,
		&inscricao.ComprovanteFileKey,
		&inscricao.CreatedAt,
		&inscricao.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInscricaoNotFound
		}
		return nil, err
	}
	return inscricao, nil
}

func (r *postgresInscricaoRepository) List(ctx context.Context, filter InscricaoFilter) ([]models.Inscricao, int, error) {
	conditions := make([]string, 0, 3)
	args := make([]interface{}, 0, 5)

	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("i.status = $%d", len(args)))
	}
	if filter.LoteID != nil {
		args = append(args, *filter.LoteID)
		conditions = append(conditions, fmt.Sprintf("i.lote_id = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(i.nome_completo ILIKE $%d OR i.email ILIKE $%d OR i.cpf ILIKE $%d)", n, n, n))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM inscricoes i %s`, where)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count inscricoes: %w", err)
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
		SELECT
			i.id, i.nome_completo, i.cpf, i.idade, i.sexo, i.celular, i.email,
			i.tamanho_blusa, i.number_shirt, i.status, i.lote_id,
			i.comprovante_file_key, i.created_at, i.updated_at,
			l.id, l.nome, l.valor, l.total_vagas, l.status, l.created_at
		FROM inscricoes i
		JOIN lotes l ON i.lote_id = l.id
		%s
		ORDER BY i.created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	inscricoes, err := scanInscricoesWithLote(rows)
	if err != nil {
		return nil, 0, err
	}
	return inscricoes, total, nil
}

func (r *postgresInscricaoRepository) ListConfirmed(ctx context.Context, loteID *int) ([]models.Inscricao, error) {
	query := `
		SELECT
			i.id, i.nome_completo, i.cpf, i.idade, i.sexo, i.celular, i.email,
			i.tamanho_blusa, i.number_shirt, i.status, i.lote_id,
			i.comprovante_file_key, i.created_at, i.updated_at,
			l.id, l.nome, l.valor, l.total_vagas, l.status, l.created_at
		FROM inscricoes i
		JOIN lotes l ON i.lote_id = l.id
		WHERE i.status = 'confirmado'`

	args := make([]interface{}, 0, 1)
	if loteID != nil {
		args = append(args, *loteID)
		query += " AND i.lote_id = $1"
	}
	query += " ORDER BY i.nome_completo ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanInscricoesWithLote(rows)
}

func (r *postgresInscricaoRepository) UpdateStatus(ctx context.Context, id int, status models.InscricaoStatus) error {
	query := `UPDATE inscricoes SET status = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}

	rowsAffected, checkErr := checkRowsAffected(result)
	if checkErr != nil {
		return checkErr
	}
	if rowsAffected == 0 {
		return ErrInscricaoNotFound
	}
	return nil
}

func (r *postgresInscricaoRepository) UpdateComprovante(ctx context.Context, id int, fileKey string) error {
	query := `UPDATE inscricoes SET comprovante_file_key = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, fileKey, id)
	if err != nil {
		return err
	}

	rowsAffected, checkErr := checkRowsAffected(result)
	if checkErr != nil {
		return checkErr
	}
	if rowsAffected == 0 {
		return ErrInscricaoNotFound
	}
	return nil
}

func (r *postgresInscricaoRepository) CountByLote(ctx context.Context, loteID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM inscricoes WHERE lote_id = $1`, loteID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count inscricoes by lote: %w", err)
	}
	return count, nil
}

func (r *postgresInscricaoRepository) CountByStatus(ctx context.Context, status *models.InscricaoStatus) (int, error) {
	query := `SELECT COUNT(*) FROM inscricoes`
	args := make([]interface{}, 0, 1)
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count inscricoes: %w", err)
	}
	return count, nil
}

func scanInscricoesWithLote(rows *sql.Rows) ([]models.Inscricao, error) {
	inscricoes := make([]models.Inscricao, 0)
	for rows.Next() {
		var inscricao models.Inscricao
		var lote models.Lote
		if err := rows.Scan(
			&inscricao.ID,
			&inscricao.NomeCompleto,
			&inscricao.CPF,
			&inscricao.Idade,
			&inscricao.Sexo,
			&inscricao.Celular,
			&inscricao.Email,
			&inscricao.TamanhoBlusa,
			&inscricao.NumberShirt,
			&inscricao.Status,
			&inscricao.LoteID,
			&inscricao.ComprovanteFileKey,
			&inscricao.CreatedAt,
			&inscricao.UpdatedAt,
			&lote.ID,
			&lote.Nome,
			&lote.Valor,
			&lote.TotalVagas,
			&lote.Status,
			&lote.CreatedAt,
		); err != nil {
			return nil, err
		}
		inscricao.Lote = &lote
		inscricoes = append(inscricoes, inscricao)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return inscricoes, nil
}
