package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/lshigami/orientation-event/internal/apperr"
	"github.com/lshigami/orientation-event/internal/dto"
	"github.com/lshigami/orientation-event/internal/model"
	"github.com/lshigami/orientation-event/internal/orientation"
	"github.com/lshigami/orientation-event/internal/qrcode"
	"github.com/lshigami/orientation-event/internal/repository"
)

const (
	msgEmailTaken    = "Un utilisateur avec cet email existe déjà"
	msgNoTestForUser = "Aucun test trouvé pour cet utilisateur"
)

// AdminUserService backs the back-office pages for registered guests.
type AdminUserService interface {
	ListUsers(ctx context.Context, q dto.ListQuery) ([]dto.UserSummaryDTO, *dto.Pagination, error)
	CreateUser(ctx context.Context, req dto.CreateUserRequest) (*dto.UserSummaryDTO, error)
	GetUser(ctx context.Context, id uint) (*dto.UserSummaryDTO, error)
	UpdateUser(ctx context.Context, id uint, req dto.UpdateUserRequest) (*dto.UserSummaryDTO, error)
	// TestStatus returns nil when the user has no test yet.
	TestStatus(ctx context.Context, id uint) (*dto.TestStatusDTO, error)
	Report(ctx context.Context, id uint) (*dto.ReportDTO, error)
	SetPresence(ctx context.Context, id uint, present bool) (*dto.PresenceDTO, error)
	ScanQRCode(ctx context.Context, token string) (*dto.ScanResultDTO, error)
	ExportUsers(ctx context.Context, search string) ([]byte, error)
}

type adminUserService struct {
	db    *gorm.DB
	users repository.UserRepository
	tests repository.OrientationTestRepository
	stats StatsService
	now   func() time.Time
}

func NewAdminUserService(
	db *gorm.DB,
	users repository.UserRepository,
	tests repository.OrientationTestRepository,
	stats StatsService,
) AdminUserService {
	return &adminUserService{db: db, users: users, tests: tests, stats: stats, now: time.Now}
}

// summarize builds a listing row from a user and its latest test.
func summarize(user *model.User, test *model.OrientationTest) dto.UserSummaryDTO {
	var out dto.UserSummaryDTO
	if err := copier.Copy(&out, user); err != nil {
		log.Warn().Err(err).Uint("userID", user.ID).Msg("summarize: copy failed")
	}
	out.UserCode = user.CodeOrDefault()
	out.TestStatus = dto.StatusNotStarted
	out.CompletedSteps = []string{}
	if test == nil {
		return out
	}

	out.CompletedSteps = orientation.CompletedSteps(test)
	out.AllStepsCompleted = orientation.AllStepsCompleted(test)
	out.TestCompleted = out.AllStepsCompleted
	switch {
	case out.AllStepsCompleted:
		out.TestStatus = dto.StatusFinished
		if profile, ok := orientation.DominantProfile(test); ok {
			out.DominantProfile = &profile
		}
	case len(out.CompletedSteps) > 0:
		out.TestStatus = dto.StatusInProgress
		step := test.TestType
		out.CurrentStep = &step
	}
	return out
}

func (s *adminUserService) loadUser(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Unexpected("Erreur lors de la récupération de l'utilisateur", err)
	}
	if user == nil {
		return nil, apperr.NotFound(msgUserNotFound)
	}
	return user, nil
}

// ensureUserCode persists the default user code the first time a user is shown.
func (s *adminUserService) ensureUserCode(ctx context.Context, user *model.User) {
	if user.UserCode != nil && *user.UserCode != "" {
		return
	}
	code := model.DefaultUserCode(user.ID)
	user.UserCode = &code
	if err := s.users.Save(ctx, user); err != nil {
		log.Warn().Err(err).Uint("userID", user.ID).Msg("ensureUserCode: save failed")
	}
}

func (s *adminUserService) summaries(ctx context.Context, users []model.User) ([]dto.UserSummaryDTO, error) {
	ids := make([]uint, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}
	latest, err := s.tests.FindLatestByUsers(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserSummaryDTO, 0, len(users))
	for i := range users {
		s.ensureUserCode(ctx, &users[i])
		out = append(out, summarize(&users[i], latest[users[i].ID]))
	}
	return out, nil
}

func (s *adminUserService) ListUsers(ctx context.Context, q dto.ListQuery) ([]dto.UserSummaryDTO, *dto.Pagination, error) {
	users, total, err := s.users.List(ctx, repository.UserFilter{
		Search: q.Search,
		Offset: q.Offset(),
		Limit:  q.Limit,
	})
	if err != nil {
		return nil, nil, apperr.Unexpected("Erreur lors de la récupération des utilisateurs", err)
	}
	rows, err := s.summaries(ctx, users)
	if err != nil {
		return nil, nil, apperr.Unexpected("Erreur lors de la récupération des tests", err)
	}
	return rows, q.Pagination(total), nil
}

func (s *adminUserService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*dto.UserSummaryDTO, error) {
	email := strings.TrimSpace(req.Email)
	if err := s.checkEmailFree(ctx, email, 0); err != nil {
		return nil, err
	}
	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Unexpected("Erreur lors de la création de l'utilisateur", err)
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

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)
		if err := users.Create(ctx, user); err != nil {
			return err
		}
		// codes embed the id, so they are issued after the insert
		if _, err := qrcode.EnsureCodes(user, s.now()); err != nil {
			return err
		}
		return users.Save(ctx, user)
	})
	if err != nil {
		log.Error().Err(err).Str("email", email).Msg("CreateUser: failed")
		return nil, apperr.Unexpected("Erreur lors de la création de l'utilisateur", err)
	}
	s.stats.Invalidate(ctx)

	out := summarize(user, nil)
	return &out, nil
}

func (s *adminUserService) checkEmailFree(ctx context.Context, email string, ownerID uint) error {
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return apperr.Unexpected("Erreur lors de la vérification de l'email", err)
	}
	if existing != nil && existing.ID != ownerID {
		return apperr.Validation(msgEmailTaken)
	}
	return nil
}

func (s *adminUserService) GetUser(ctx context.Context, id uint) (*dto.UserSummaryDTO, error) {
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}
	rows, err := s.summaries(ctx, []model.User{*user})
	if err != nil {
		return nil, apperr.Unexpected("Erreur lors de la récupération du test", err)
	}
	return &rows[0], nil
}

func (s *adminUserService) UpdateUser(ctx context.Context, id uint, req dto.UpdateUserRequest) (*dto.UserSummaryDTO, error) {
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if err := s.checkEmailFree(ctx, email, user.ID); err != nil {
			return nil, err
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
	if req.WhatsappNumber != nil {
		user.WhatsappNumber = req.WhatsappNumber
	}
	if req.Age != nil {
		user.Age = req.Age
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := HashPassword(*req.Password)
		if err != nil {
			return nil, apperr.Unexpected("Erreur lors de la mise à jour", err)
		}
		user.Password = hash
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, apperr.Unexpected("Erreur lors de la mise à jour", err)
	}
	return s.GetUser(ctx, id)
}

func (s *adminUserService) latestTest(ctx context.Context, userID uint) (*model.OrientationTest, error) {
	test, err := s.tests.FindLatestByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Unexpected("Erreur lors de la récupération du test", err)
	}
	return test, nil
}

func (s *adminUserService) TestStatus(ctx context.Context, id uint) (*dto.TestStatusDTO, error) {
	if _, err := s.loadUser(ctx, id); err != nil {
		return nil, err
	}
	test, err := s.latestTest(ctx, id)
	if err != nil || test == nil {
		return nil, err
	}
	return &dto.TestStatusDTO{
		TestView:          orientation.FormatTest(test),
		CompletedSteps:    orientation.CompletedSteps(test),
		AllStepsCompleted: orientation.AllStepsCompleted(test),
	}, nil
}

func (s *adminUserService) Report(ctx context.Context, id uint) (*dto.ReportDTO, error) {
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}
	test, err := s.latestTest(ctx, id)
	if err != nil {
		return nil, err
	}
	if test == nil {
		return nil, apperr.NotFound(msgNoTestForUser)
	}

	completed := orientation.CompletedSteps(test)
	required := orientation.RequiredSteps()
	if len(completed) != len(required) {
		msg := fmt.Sprintf("Le test n'est pas encore finalisé. Étapes complétées: %d/%d", len(completed), len(required))
		return nil, apperr.Validation(msg).
			With("completedSteps", completed).
			With("requiredSteps", required)
	}

	return &dto.ReportDTO{
		TestView: orientation.FormatTest(test),
		User: dto.ReportUserDTO{
			ID:        user.ID,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Email:     user.Email,
			Age:       user.Age,
			Telephone: user.Telephone,
		},
	}, nil
}

func (s *adminUserService) SetPresence(ctx context.Context, id uint, present bool) (*dto.PresenceDTO, error) {
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}
	user.IsPresent = present
	if err := s.users.Save(ctx, user); err != nil {
		return nil, apperr.Unexpected("Erreur lors de la mise à jour de la présence", err)
	}
	s.stats.Invalidate(ctx)
	return &dto.PresenceDTO{ID: user.ID, IsPresent: user.IsPresent}, nil
}

// ScanQRCode checks a guest in from the token printed on the invitation.
func (s *adminUserService) ScanQRCode(ctx context.Context, token string) (*dto.ScanResultDTO, error) {
	userID, ok := qrcode.ParseToken(token)
	if !ok {
		return nil, apperr.Validation("QR code invalide")
	}
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if user.UserCode == nil || *user.UserCode == "" {
		code := model.DefaultUserCode(user.ID)
		user.UserCode = &code
	}
	user.IsPresent = true
	if err := s.users.Save(ctx, user); err != nil {
		return nil, apperr.Unexpected("Erreur lors de l'enregistrement de la présence", err)
	}
	s.stats.Invalidate(ctx)
	log.Info().Uint("userID", user.ID).Msg("ScanQRCode: guest checked in")

	test, err := s.latestTest(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	completed := orientation.CompletedSteps(test)
	all := orientation.AllStepsCompleted(test)
	result := &dto.ScanResultDTO{
		User: dto.ScanUserDTO{
			ID:        user.ID,
			UserCode:  user.CodeOrDefault(),
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Email:     user.Email,
		},
		Test: dto.ScanTestDTO{
			HasTest:           test != nil,
			IsCompleted:       all,
			HasReport:         all,
			CompletedSteps:    completed,
			AllStepsCompleted: all,
		},
		Presence: dto.ScanPresenceDTO{IsPresent: true, UpdatedAt: now},
	}
	if profile, ok := orientation.DominantProfile(test); ok {
		result.Test.DominantProfile = &profile
	}
	return result, nil
}
