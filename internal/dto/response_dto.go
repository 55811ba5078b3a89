package dto

import "time"

// Response is the success envelope shared by every JSON endpoint.
type Response struct {
	Success     bool        `json:"success"`
	Message     string      `json:"message,omitempty"`
	HasTest     *bool       `json:"hasTest,omitempty"`
	UUID        string      `json:"uuid,omitempty"`
	IsCompleted *bool       `json:"isCompleted,omitempty"`
	Data        any         `json:"data,omitempty"`
	Pagination  *Pagination `json:"pagination,omitempty"`
}

type ErrorResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type AuthUserDTO struct {
	ID           string   `json:"id"`
	Email        string   `json:"email"`
	Name         string   `json:"name"`
	Roles        []string `json:"roles"`
	IsStaff      bool     `json:"isStaff"`
	IsSuperAdmin bool     `json:"isSuperAdmin"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  AuthUserDTO `json:"user"`
}

type ProfileDTO struct {
	ID             string   `json:"id"`
	Email          string   `json:"email"`
	Name           string   `json:"name"`
	Telephone      *string  `json:"telephone"`
	WhatsappNumber *string  `json:"whatsappNumber"`
	FirstName      *string  `json:"firstName"`
	LastName       *string  `json:"lastName"`
	Age            *int     `json:"age"`
	UserCode       string   `json:"userCode"`
	Roles          []string `json:"roles"`
}

type QRCodeDTO struct {
	QRCode string `json:"qrCode"`
}

type PresenceDTO struct {
	ID        uint `json:"id"`
	IsPresent bool `json:"isPresent"`
}

type StaffDTO struct {
	ID           uint       `json:"id"`
	FirstName    *string    `json:"firstName"`
	LastName     *string    `json:"lastName"`
	Email        string     `json:"email"`
	Telephone    *string    `json:"telephone"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastLoginAt  *time.Time `json:"lastLoginAt"`
	IsStaff      bool       `json:"isStaff"`
	IsSuperAdmin bool       `json:"isSuperAdmin"`
	Roles        []string   `json:"roles"`
}
