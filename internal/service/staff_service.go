package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/lshigami/orientation-event/internal/apperr"
	"github.com/lshigami/orientation-event/internal/dto"
	"github.com/lshigami/orientation-event/internal/model"
	"github.com/lshigami/orientation-event/internal/repository"
)

const msgStaffNotFound = "Membre du staff non trouvé"

// StaffService manages back-office accounts. Callers are expected to have
// checked the super admin role.
type StaffService interface {
	ListStaff(ctx context.Context, q dto.ListQuery) ([]dto.StaffDTO, *dto.Pagination, error)
	CreateStaff(ctx context.Context, req dto.CreateStaffRequest) (*dto.StaffDTO, error)
	UpdateStaff(ctx context.Context, id uint, req dto.UpdateStaffRequest) (*dto.StaffDTO, error)
}

type staffService struct {
	users repository.UserRepository
	stats StatsService
}

func NewStaffService(users repository.UserRepository, stats StatsService) StaffService {
	return &staffService{users: users, stats: stats}
}

func staffDTO(u *model.User) dto.StaffDTO {
	return dto.StaffDTO{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		Telephone:    u.Telephone,
		CreatedAt:    u.CreatedAt,
		LastLoginAt:  u.LastLoginAt,
		IsStaff:      u.IsStaff,
		IsSuperAdmin: u.IsSuperAdmin,
		Roles:        u.Roles(),
	}
}

func (s *staffService) ListStaff(ctx context.Context, q dto.ListQuery) ([]dto.StaffDTO, *dto.Pagination, error) {
	users, total, err := s.users.List(ctx, repository.UserFilter{
		Staff:  true,
		Search: q.Search,
		Offset: q.Offset(),
		Limit:  q.Limit,
	})
	if err != nil {
		return nil, nil, apperr.Unexpected("Erreur lors de la récupération du staff", err)
	}
	out := make([]dto.StaffDTO, 0, len(users))
	for i := range users {
		out = append(out, staffDTO(&users[i]))
	}
	return out, q.Pagination(total), nil
}

func (s *staffService) CreateStaff(ctx context.Context, req dto.CreateStaffRequest) (*dto.StaffDTO, error) {
	email := strings.TrimSpace(req.Email)
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Unexpected("Erreur lors de la création du membre du staff", err)
	}
	if existing != nil {
		return nil, apperr.Validation(msgEmailTaken)
	}
	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Unexpected("Erreur lors de la création du membre du staff", err)
	}

	user := &model.User{
		Email:     email,
		Password:  hash,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Telephone: req.Telephone,
		IsStaff:   true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperr.Unexpected("Erreur lors de la création du membre du staff", err)
	}
	log.Info().Uint("userID", user.ID).Msg("CreateStaff: staff member created")
	s.stats.Invalidate(ctx)
	out := staffDTO(user)
	return &out, nil
}

func (s *staffService) UpdateStaff(ctx context.Context, id uint, req dto.UpdateStaffRequest) (*dto.StaffDTO, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Unexpected("Erreur lors de la mise à jour du membre du staff", err)
	}
	if user == nil {
		return nil, apperr.NotFound(msgStaffNotFound)
	}
	if !user.IsStaff {
		return nil, apperr.Validation("Cet utilisateur n'est pas un membre du staff")
	}

	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		existing, err := s.users.FindByEmail(ctx, email)
		if err != nil {
			return nil, apperr.Unexpected("Erreur lors de la mise à jour du membre du staff", err)
		}
		if existing != nil && existing.ID != user.ID {
			return nil, apperr.Validation(msgEmailTaken)
		}
		user.Email = email
	}
	if req.FirstName != nil {
		user.FirstName = req.FirstName
	}
	if req.LastName != nil {
		user.LastName = req.LastName
	}
	if req.Telephone != nil {
		user.Telephone = req.Telephone
	}
	if req.IsSuperAdmin != nil {
		user.IsSuperAdmin = *req.IsSuperAdmin
	}

	if err := s.users.Save(ctx, user); err != nil {
		return nil, apperr.Unexpected("Erreur lors de la mise à jour du membre du staff", err)
	}
	out := staffDTO(user)
	return &out, nil
}
