package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/projetojaiba/corrida-system/models"
)

var (
	ErrAdminUserNotFound      = errors.New("admin user not found")
	ErrAdminUserEmailConflict = errors.New("admin user email conflict")
)

type AdminUserRepository interface {
	Create(ctx context.Context, user *models.AdminUser) error
	GetByID(ctx context.Context, id int) (*models.AdminUser, error)
	GetByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	List(ctx context.Context) ([]models.AdminUser, error)
}

type postgresAdminUserRepository struct {
	db *sql.DB
}

func NewPostgresAdminUserRepository(db *sql.DB) AdminUserRepository {
	return &postgresAdminUserRepository{db: db}
}

func (r *postgresAdminUserRepository) Create(ctx context.Context, user *models.AdminUser) error {
	query := `
		INSERT INTO admin_users (email, nome, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		user.Email,
		user.Nome,
		user.PasswordHash,
		user.Role,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "admin_users_email_key" {
				return ErrAdminUserEmailConflict
			}
		}
		return err
	}
	return nil
}

func (r *postgresAdminUserRepository) GetByID(ctx context.Context, id int) (*models.AdminUser, error) {
	query := `
		SELECT id, email, nome, password_hash, role, created_at, updated_at
		FROM admin_users
		WHERE id = $1`
	return r.scanAdminUser(ctx, query, id)
}

func (r *postgresAdminUserRepository) GetByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	query := `
		SELECT id, email, nome, password_hash, role, created_at, updated_at
		FROM admin_users
		WHERE email = $1`
	return r.scanAdminUser(ctx, query, email)
}

func (r *postgresAdminUserRepository) List(ctx context.Context) ([]models.AdminUser, error) {
	query := `
		SELECT id, email, nome, password_hash, role, created_at, updated_at
		FROM admin_users
		ORDER BY nome ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]models.AdminUser, 0)
	for rows.Next() {
		var user models.AdminUser
		if scanErr := rows.Scan(
			&user.ID,
			&user.Email,
			&user.Nome,
			&user.PasswordHash,
			&user.Role,
			&user.CreatedAt,
			&user.UpdatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		users = append(users, user)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *postgresAdminUserRepository) scanAdminUser(ctx context.Context, query string, args ...interface{}) (*models.AdminUser, error) {
	user := &models.AdminUser{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&user.Email,
		&user.Nome,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdminUserNotFound
		}
		return nil, err
	}
	return user, nil
}
