package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/projetojaiba/corrida-system/models"
)

var (
	ErrLoteNotFound     = errors.New("lote not found")
	ErrLoteNomeConflict = errors.New("lote nome conflict")
	ErrNoActiveLote     = errors.New("no active lote")
)

type LoteRepository interface {
	Create(ctx context.Context, lote *models.Lote) error
	Update(ctx context.Context, lote *models.Lote) error
	GetByID(ctx context.Context, id int) (*models.Lote, error)
	// GetActive возвращает текущий действующий лот (status = true).
	GetActive(ctx context.Context) (*models.Lote, error)
	List(ctx context.Context) ([]models.Lote, error)
	// Activate делает лот активным, деактивируя остальные в одной транзакции.
	Activate(ctx context.Context, id int) error
}

type postgresLoteRepository struct {
	db *sql.DB
}

func NewPostgresLoteRepository(db *sql.DB) LoteRepository {
	return &postgresLoteRepository{db: db}
}

func (r *postgresLoteRepository) Create(ctx context.Context, lote *models.Lote) error {
	query := `
		INSERT INTO lotes (nome, valor, total_vagas, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		lote.Nome,
		lote.Valor,
		lote.TotalVagas,
		lote.Status,
	).Scan(&lote.ID, &lote.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "lotes_nome_key" {
				return ErrLoteNomeConflict
			}
		}
		return err
	}
	return nil
}

func (r *postgresLoteRepository) Update(ctx context.Context, lote *models.Lote) error {
	query := `
		UPDATE lotes SET
			nome = $1,
			valor = $2,
			total_vagas = $3,
			status = $4
		WHERE id = $5`

	result, err := r.db.ExecContext(ctx, query,
		lote.Nome,
		lote.Valor,
		lote.TotalVagas,
		lote.Status,
		lote.ID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "lotes_nome_key" {
				return ErrLoteNomeConflict
			}
		}
		return err
	}

	rowsAffected, checkErr := checkRowsAffected(result)
	if checkErr != nil {
		return checkErr
	}
	if rowsAffected == 0 {
		return ErrLoteNotFound
	}
	return nil
}

func (r *postgresLoteRepository) GetByID(ctx context.Context, id int) (*models.Lote, error) {
	query := `
		SELECT id, nome, valor, total_vagas, status, created_at
		FROM lotes
		WHERE id = $1`
	return r.scanLote(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresLoteRepository) GetActive(ctx context.Context) (*models.Lote, error) {
	query := `
		SELECT id, nome, valor, total_vagas, status, created_at
		FROM lotes
		WHERE status = TRUE
		LIMIT 1`

	lote, err := r.scanLote(r.db.QueryRowContext(ctx, query))
	if err != nil {
		if errors.Is(err, ErrLoteNotFound) {
			return nil, ErrNoActiveLote
		}
		return nil, err
	}
	return lote, nil
}

func (r *postgresLoteRepository) List(ctx context.Context) ([]models.Lote, error) {
	query := `
		SELECT id, nome, valor, total_vagas, status, created_at
		FROM lotes
		ORDER BY nome ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lotes := make([]models.Lote, 0)
	for rows.Next() {
		var lote models.Lote
		if scanErr := rows.Scan(
			&lote.ID,
			&lote.Nome,
			&lote.Valor,
			&lote.TotalVagas,
			&lote.Status,
			&lote.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		lotes = append(lotes, lote)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return lotes, nil
}

func (r *postgresLoteRepository) Activate(ctx context.Context, id int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err = tx.ExecContext(ctx, `UPDATE lotes SET status = FALSE WHERE status = TRUE`); err != nil {
		return fmt.Errorf("failed to deactivate current lote: %w", err)
	}

	result, err := tx.ExecContext(ctx, `UPDATE lotes SET status = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to activate lote %d: %w", id, err)
	}

	rowsAffected, checkErr := checkRowsAffected(result)
	if checkErr != nil {
		return checkErr
	}
	if rowsAffected == 0 {
		return ErrLoteNotFound
	}

	return tx.Commit()
}

func (r *postgresLoteRepository) scanLote(row *sql.Row) (*models.Lote, error) {
	lote := &models.Lote{}
	err := row.Scan(
		&lote.ID,
		&lote.Nome,
		&lote.Valor,
		&lote.TotalVagas,
		&lote.Status,
		&lote.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLoteNotFound
		}
		return nil, err
	}
	return lote, nil
}
