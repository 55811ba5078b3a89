package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/lshigami/orientation-event/config"
	"github.com/lshigami/orientation-event/internal/apperr"
	"github.com/lshigami/orientation-event/internal/dto"
	"github.com/lshigami/orientation-event/internal/model"
	"github.com/lshigami/orientation-event/internal/qrcode"
	"github.com/lshigami/orientation-event/internal/repository"
)

const msgNotAuthenticated = "Utilisateur non authentifié"

// bcryptCost is lowered by tests.
var bcryptCost = bcrypt.DefaultCost

// HashPassword returns the bcrypt hash of plain.
func HashPassword(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.LoginResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	// Authenticate resolves a bearer token to its user.
	Authenticate(ctx context.Context, token string) (*model.User, error)
	Me(user *model.User) dto.AuthUserDTO
	Profile(user *model.User) dto.ProfileDTO
}

type tokenClaims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

type authService struct {
	users  repository.UserRepository
	stats  StatsService
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewAuthService(users repository.UserRepository, stats StatsService, cfg *config.Config) AuthService {
	ttl := cfg.Auth.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &authService{
		users:  users,
		stats:  stats,
		secret: []byte(cfg.Auth.JWTSecret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.LoginResponse, error) {
	email := strings.TrimSpace(req.Email)
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Unexpected("Erreur lors de l'inscription", err)
	}
	if existing != nil {
		return nil, apperr.Validation(msgEmailTaken)
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Unexpected("Erreur lors de l'inscription", err)
	}
	user := &model.User{
		Email:          email,
		Password:       hash,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Telephone:      req.Telephone,
		WhatsappNumber: req.WhatsappNumber,
		Age:            req.Age,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperr.Unexpected("Erreur lors de l'inscription", err)
	}
	log.Info().Uint("userID", user.ID).Msg("Register: account created")
	s.stats.Invalidate(ctx)
	return s.startSession(ctx, user)
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	identifier := strings.TrimSpace(req.Identifier())
	// passwords are compared as sent, blank ones count as missing
	password := req.Password
	if identifier == "" || strings.TrimSpace(password) == "" {
		return nil, apperr.Validation("Téléphone ou mot de passe manquant")
	}

	user, err := s.users.FindByEmail(ctx, identifier)
	if err == nil && user == nil {
		user, err = s.users.FindByTelephone(ctx, identifier)
	}
	if err != nil {
		return nil, apperr.Unexpected("Erreur lors de la connexion", err)
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, apperr.NotAuthenticated("Identifiants invalides")
	}
	return s.startSession(ctx, user)
}

// startSession stamps the login, issues the QR token if missing and signs
// an access token.
func (s *authService) startSession(ctx context.Context, user *model.User) (*dto.LoginResponse, error) {
	now := s.now()
	user.LastLoginAt = &now
	if _, err := qrcode.EnsureCodes(user, now); err != nil {
		return nil, apperr.Unexpected("Erreur lors de la connexion", err)
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, apperr.Unexpected("Erreur lors de la connexion", err)
	}

	token, err := s.sign(user, now)
	if err != nil {
		return nil, apperr.Unexpected("Erreur lors de la connexion", err)
	}
	return &dto.LoginResponse{Token: token, User: s.Me(user)}, nil
}

func (s *authService) sign(user *model.User, now time.Time) (string, error) {
	claims := tokenClaims{
		Roles: user.Roles(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *authService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, apperr.NotAuthenticated(msgNotAuthenticated)
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return nil, apperr.NotAuthenticated(msgNotAuthenticated)
	}
	user, err := s.users.FindByID(ctx, uint(id))
	if err != nil {
		return nil, apperr.Unexpected("Erreur d'authentification", err)
	}
	if user == nil {
		return nil, apperr.NotAuthenticated(msgNotAuthenticated)
	}
	return user, nil
}

func (s *authService) Me(user *model.User) dto.AuthUserDTO {
	return dto.AuthUserDTO{
		ID:           strconv.FormatUint(uint64(user.ID), 10),
		Email:        user.Email,
		Name:         user.DisplayName(),
		Roles:        user.Roles(),
		IsStaff:      user.IsStaff,
		IsSuperAdmin: user.IsSuperAdmin,
	}
}

func (s *authService) Profile(user *model.User) dto.ProfileDTO {
	return dto.ProfileDTO{
		ID:             strconv.FormatUint(uint64(user.ID), 10),
		Email:          user.Email,
		Name:           user.DisplayName(),
		Telephone:      user.Telephone,
		WhatsappNumber: user.WhatsappNumber,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		Age:            user.Age,
		UserCode:       user.CodeOrDefault(),
		Roles:          user.Roles(),
	}
}
