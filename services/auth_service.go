package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/projetojaiba/corrida-system/models"
	"github.com/projetojaiba/corrida-system/repositories"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*models.AdminUser, error)
	GetAdminByID(ctx context.Context, id int) (*models.AdminUser, error)
	CreateAdmin(ctx context.Context, input CreateAdminInput) (*models.AdminUser, error)
	ListAdmins(ctx context.Context) ([]models.AdminUser, error)
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateAdminInput struct {
	Email    string           `json:"email"`
	Nome     string           `json:"nome"`
	Password string           `json:"password"`
	Role     models.AdminRole `json:"role"`
}

type authService struct {
	adminRepo repositories.AdminUserRepository
}

func NewAuthService(adminRepo repositories.AdminUserRepository) AuthService {
	return &authService{adminRepo: adminRepo}
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.AdminUser, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	user, err := s.adminRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrAdminUserNotFound) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find admin by email: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *authService) GetAdminByID(ctx context.Context, id int) (*models.AdminUser, error) {
	user, err := s.adminRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrAdminUserNotFound) {
			return nil, ErrAdminUserNotFound
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *authService) CreateAdmin(ctx context.Context, input CreateAdminInput) (*models.AdminUser, error) {
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if _, ok := models.RolePermissions[input.Role]; !ok {
		return nil, ErrAdminRoleInvalid
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.AdminUser{
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		Nome:         strings.TrimSpace(input.Nome),
		PasswordHash: string(hashedPassword),
		Role:         input.Role,
	}

	if err := s.adminRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrAdminUserEmailConflict) {
			return nil, ErrAdminEmailConflict
		}
		return nil, fmt.Errorf("failed to create admin user: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *authService) ListAdmins(ctx context.Context) ([]models.AdminUser, error) {
	users, err := s.adminRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}
