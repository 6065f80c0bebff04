package models

import "time"

// AdminRole представляет роли администраторов, соответствующие ENUM в БД.
type AdminRole string

const (
	RoleSuperAdmin AdminRole = "super_admin"
	RoleAdmin      AdminRole = "admin"
	RoleModerator  AdminRole = "moderator"
)

type AdminUser struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Nome         string    `json:"nome"`
	Role         AdminRole `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AdminPermissions — фиксированный набор прав для каждой роли.
type AdminPermissions struct {
	CanEditInscricoes   bool `json:"can_edit_inscricoes"`
	CanDeleteInscricoes bool `json:"can_delete_inscricoes"`
	CanExportData       bool `json:"can_export_data"`
	CanManageUsers      bool `json:"can_manage_users"`
	CanManageLotes      bool `json:"can_manage_lotes"`
}

var RolePermissions = map[AdminRole]AdminPermissions{
	RoleSuperAdmin: {
		CanEditInscricoes:   true,
		CanDeleteInscricoes: true,
		CanExportData:       true,
		CanManageUsers:      true,
		CanManageLotes:      true,
	},
	RoleAdmin: {
		CanEditInscricoes:   true,
		CanDeleteInscricoes: false,
		CanExportData:       true,
		CanManageUsers:      false,
		CanManageLotes:      true,
	},
	RoleModerator: {
		CanEditInscricoes:   true,
		CanDeleteInscricoes: false,
		CanExportData:       false,
		CanManageUsers:      false,
		CanManageLotes:      false,
	},
}

// PermissionsFor возвращает набор прав роли (пустой набор для неизвестной роли).
func PermissionsFor(role AdminRole) AdminPermissions {
	return RolePermissions[role]
}
