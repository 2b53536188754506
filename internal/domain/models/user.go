package models

import "time"

type Role string

const (
	RoleUser       Role = "user"
	RoleEditor     Role = "editor"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Elevated reports whether the role may see non-published posts.
func (r Role) Elevated() bool {
	return r == RoleEditor || r == RoleAdmin || r == RoleSuperAdmin
}

type User struct {
	ID                   int64      `db:"id" json:"id"`
	Username             string     `db:"username" json:"username"`
	Email                string     `db:"email" json:"email"`
	Password             []byte     `db:"password" json:"-"`
	Role                 Role       `db:"role" json:"role"`
	TwoFactorEnabled     bool       `db:"two_factor_enabled" json:"two_factor_enabled"`
	TwoFactorSecret      *string    `db:"two_factor_secret" json:"-"`
	ResetPasswordToken   *string    `db:"reset_password_token" json:"-"`
	ResetPasswordExpires *time.Time `db:"reset_password_expires" json:"-"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
}
