package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lshigami/orientation-event/config"
	"github.com/lshigami/orientation-event/internal/apperr"
	"github.com/lshigami/orientation-event/internal/invitation"
	"github.com/lshigami/orientation-event/internal/model"
	"github.com/lshigami/orientation-event/internal/qrcode"
	"github.com/lshigami/orientation-event/internal/repository"
)

const msgUserNotFound = "Utilisateur non trouvé"

// InvitationCard is a rendered PDF ready for download.
type InvitationCard struct {
	Filename string
	Content  []byte
}

// InvitationService hands out QR tokens and invitation cards, issuing the
// token and user code on first access.
type InvitationService interface {
	QRCode(ctx context.Context, userID uint) (string, error)
	Card(ctx context.Context, userID uint) (*InvitationCard, error)
}

type invitationService struct {
	users    repository.UserRepository
	renderer *invitation.Renderer
	now      func() time.Time
}

func NewInvitationRenderer(cfg *config.Config) *invitation.Renderer {
	return invitation.NewRenderer(invitation.Event{
		Title:    cfg.Event.Name,
		Subtitle: cfg.Event.Subtitle,
		Date:     cfg.Event.Date,
		Venue:    cfg.Event.Venue,
		Footer:   cfg.Event.Footer,
		LogoPath: cfg.Event.LogoPath,
	})
}

func NewInvitationService(users repository.UserRepository, renderer *invitation.Renderer) InvitationService {
	return &invitationService{users: users, renderer: renderer, now: time.Now}
}

func (s *invitationService) load(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, apperr.Unexpected("Erreur lors de la récupération de l'utilisateur", err)
	}
	if user == nil {
		return nil, apperr.NotFound(msgUserNotFound)
	}
	changed, err := qrcode.EnsureCodes(user, s.now())
	if err != nil {
		return nil, apperr.Unexpected("Erreur lors de la génération du QR code", err)
	}
	if changed {
		if err := s.users.Save(ctx, user); err != nil {
			return nil, apperr.Unexpected("Erreur lors de la génération du QR code", err)
		}
		log.Info().Uint("userID", user.ID).Msg("Invitation: QR code issued")
	}
	return user, nil
}

func (s *invitationService) QRCode(ctx context.Context, userID uint) (string, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return "", err
	}
	return *user.QRCode, nil
}

func (s *invitationService) Card(ctx context.Context, userID uint) (*InvitationCard, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	content, err := s.renderer.Render(user)
	if err != nil {
		log.Error().Err(err).Uint("userID", userID).Msg("Invitation: PDF rendering failed")
		return nil, apperr.Unexpected("Erreur lors de la génération du PDF: "+err.Error(), err)
	}
	return &InvitationCard{Filename: invitation.Filename(user), Content: content}, nil
}
