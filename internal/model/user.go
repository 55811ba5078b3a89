package model

import (
	"fmt"
	"strings"
	"time"
)

const (
	RoleUser       = "ROLE_USER"
	RoleAdmin      = "ROLE_ADMIN"
	RoleSuperAdmin = "ROLE_SUPER_ADMIN"
)

type User struct {
	ID             uint       `gorm:"primarykey" json:"id"`
	Email          string     `json:"email" gorm:"size:180;not null;uniqueIndex"`
	Password       string     `json:"-" gorm:"not null"`
	Name           *string    `json:"name,omitempty" gorm:"size:255"`
	FirstName      *string    `json:"first_name,omitempty" gorm:"size:255"`
	LastName       *string    `json:"last_name,omitempty" gorm:"size:255"`
	Age            *int       `json:"age,omitempty"`
	Telephone      *string    `json:"telephone,omitempty" gorm:"size:50;index"`
	WhatsappNumber *string    `json:"whatsapp_number,omitempty" gorm:"size:50"`
	IsStaff        bool       `json:"is_staff" gorm:"not null;default:false"`
	IsSuperAdmin   bool       `json:"is_super_admin" gorm:"not null;default:false"`
	IsPresent      bool       `json:"is_present" gorm:"not null;default:false"`
	QRCode         *string    `json:"qr_code,omitempty" gorm:"column:qr_code;size:255;uniqueIndex"`
	UserCode       *string    `json:"user_code,omitempty" gorm:"size:50;uniqueIndex"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Roles is derived from the staff flags; every account has RoleUser.
func (u *User) Roles() []string {
	roles := []string{RoleUser}
	if u.IsStaff || u.IsSuperAdmin {
		roles = append(roles, RoleAdmin)
	}
	if u.IsSuperAdmin {
		roles = append(roles, RoleSuperAdmin)
	}
	return roles
}

// IsAdmin reports whether the account may use the back-office endpoints.
func (u *User) IsAdmin() bool {
	return u.IsStaff || u.IsSuperAdmin
}

// DisplayName falls back to the local part of the email.
func (u *User) DisplayName() string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	local, _, _ := strings.Cut(u.Email, "@")
	return local
}

// FullName joins first and last name, or returns the email when both are empty.
func (u *User) FullName() string {
	name := strings.TrimSpace(deref(u.FirstName) + " " + deref(u.LastName))
	if name == "" {
		return u.Email
	}
	return name
}

// CodeOrDefault returns the stored user code or the ET-%04d form derived from the id.
func (u *User) CodeOrDefault() string {
	if u.UserCode != nil && *u.UserCode != "" {
		return *u.UserCode
	}
	return DefaultUserCode(u.ID)
}

func DefaultUserCode(id uint) string {
	return fmt.Sprintf("ET-%04d", id)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
