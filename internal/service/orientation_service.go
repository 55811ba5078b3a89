package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/lshigami/orientation-event/config"
	"github.com/lshigami/orientation-event/internal/apperr"
	"github.com/lshigami/orientation-event/internal/dto"
	"github.com/lshigami/orientation-event/internal/model"
	"github.com/lshigami/orientation-event/internal/orientation"
	"github.com/lshigami/orientation-event/internal/repository"
)

const (
	msgNoActiveTest = "Aucun test actif trouvé"
	msgStepMissing  = "Données de l'étape manquantes"
)

// OrientationService drives the questionnaire of the authenticated user.
type OrientationService interface {
	Start(ctx context.Context, user *model.User, req dto.StartTestRequest) (*dto.StartResult, error)
	// MyTest returns the latest test, or nil when the user never started one.
	MyTest(ctx context.Context, user *model.User) (*orientation.TestView, error)
	Resume(ctx context.Context, user *model.User) (*orientation.TestView, error)
	Reset(ctx context.Context, user *model.User) error
	SaveStep(ctx context.Context, user *model.User, req dto.SaveStepRequest) (*orientation.TestView, error)
	Complete(ctx context.Context, user *model.User) (*orientation.TestView, error)
}

type orientationService struct {
	db              *gorm.DB
	tests           repository.OrientationTestRepository
	users           repository.UserRepository
	stats           StatsService
	defaultLanguage string
	now             func() time.Time
}

func NewOrientationService(
	db *gorm.DB,
	tests repository.OrientationTestRepository,
	users repository.UserRepository,
	stats StatsService,
	cfg *config.Config,
) OrientationService {
	lang := cfg.DefaultLanguage
	if lang == "" {
		lang = model.DefaultLanguage
	}
	return &orientationService{
		db:              db,
		tests:           tests,
		users:           users,
		stats:           stats,
		defaultLanguage: lang,
		now:             time.Now,
	}
}

func (s *orientationService) language(requested string) string {
	if requested != "" {
		return requested
	}
	return s.defaultLanguage
}

func (s *orientationService) Start(ctx context.Context, user *model.User, req dto.StartTestRequest) (*dto.StartResult, error) {
	var (
		test    *model.OrientationTest
		created bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tests := s.tests.WithTx(tx)
		active, err := tests.FindActiveByUser(ctx, user.ID)
		if err != nil {
			return err
		}
		if active != nil {
			test = active
			return nil
		}
		test = model.NewOrientationTest(user.ID, s.language(req.SelectedLanguage), s.now())
		orientation.StartWelcome(test)
		created = true
		return tests.Create(ctx, test)
	})
	if err != nil && created {
		// a concurrent start may have won the active slot
		if active, findErr := s.tests.FindActiveByUser(ctx, user.ID); findErr == nil && active != nil {
			test, created, err = active, false, nil
		}
	}
	if err != nil {
		log.Error().Err(err).Uint("userID", user.ID).Msg("Start: failed to start test")
		return nil, apperr.Unexpected("Erreur lors du démarrage du test", err)
	}
	if created {
		s.stats.Invalidate(ctx)
		log.Info().Uint("userID", user.ID).Str("uuid", test.UUID).Msg("Start: orientation test created")
	}
	return &dto.StartResult{Test: orientation.FormatTest(test), Created: created}, nil
}

func (s *orientationService) MyTest(ctx context.Context, user *model.User) (*orientation.TestView, error) {
	test, err := s.tests.FindLatestByUser(ctx, user.ID)
	if err != nil {
		return nil, apperr.Unexpected("Erreur lors de la récupération du test", err)
	}
	if test == nil {
		return nil, nil
	}
	view := orientation.FormatTest(test)
	return &view, nil
}

func (s *orientationService) Resume(ctx context.Context, user *model.User) (*orientation.TestView, error) {
	test, err := s.tests.FindActiveByUser(ctx, user.ID)
	if err != nil {
		return nil, apperr.Unexpected("Erreur lors de la récupération du test", err)
	}
	if test == nil {
		return nil, apperr.NotFound(msgNoActiveTest)
	}
	view := orientation.FormatTest(test)
	return &view, nil
}

func (s *orientationService) Reset(ctx context.Context, user *model.User) error {
	test, err := s.tests.FindActiveByUser(ctx, user.ID)
	if err != nil {
		return apperr.Unexpected("Erreur lors de la réinitialisation", err)
	}
	if test == nil {
		return nil
	}
	if err := s.tests.Delete(ctx, test); err != nil {
		return apperr.Unexpected("Erreur lors de la réinitialisation", err)
	}
	s.stats.Invalidate(ctx)
	log.Info().Uint("userID", user.ID).Str("uuid", test.UUID).Msg("Reset: active test deleted")
	return nil
}

// SaveStep merges one step into the active test, creating the test first
// when the user has none. The test and any owner fields copied from
// personalInfo are written in one transaction.
func (s *orientationService) SaveStep(ctx context.Context, user *model.User, req dto.SaveStepRequest) (*orientation.TestView, error) {
	if req.StepName == "" || len(req.StepData) == 0 {
		return nil, apperr.Validation(msgStepMissing)
	}

	test, created, err := s.saveStep(ctx, user, req)
	if err != nil && created {
		// a concurrent start may have won the active slot, merge into its test
		if active, findErr := s.tests.FindActiveByUser(ctx, user.ID); findErr == nil && active != nil {
			test, _, err = s.saveStep(ctx, user, req)
		}
	}
	if err != nil {
		log.Error().Err(err).Uint("userID", user.ID).Str("step", req.StepName).Msg("SaveStep: failed")
		return nil, apperr.Unexpected("Erreur lors de la sauvegarde de l'étape", err)
	}
	s.stats.Invalidate(ctx)

	view := orientation.FormatTest(test)
	return &view, nil
}

// saveStep runs one merge transaction. created reports whether it tried to
// insert a new test.
func (s *orientationService) saveStep(ctx context.Context, user *model.User, req dto.SaveStepRequest) (test *model.OrientationTest, created bool, err error) {
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tests := s.tests.WithTx(tx)
		active, err := tests.FindActiveByUser(ctx, user.ID)
		if err != nil {
			return err
		}
		test, created = active, active == nil
		if created {
			test = model.NewOrientationTest(user.ID, s.language(req.SelectedLanguage), s.now())
		}

		userChanged := orientation.MergeStep(test, user, orientation.Submission{
			StepName: req.StepName,
			Payload:  req.StepData,
			Duration: req.Duration,
		}, s.now())

		if created {
			err = tests.Create(ctx, test)
		} else {
			err = tests.Save(ctx, test)
		}
		if err != nil {
			return err
		}
		if userChanged {
			return s.users.WithTx(tx).Save(ctx, user)
		}
		return nil
	})
	return test, created, err
}

func (s *orientationService) Complete(ctx context.Context, user *model.User) (*orientation.TestView, error) {
	test, err := s.tests.FindActiveByUser(ctx, user.ID)
	if err != nil {
		return nil, apperr.Unexpected("Erreur lors de la finalisation du test", err)
	}
	if test == nil {
		return nil, apperr.NotFound(msgNoActiveTest)
	}

	test.MarkCompleted(s.now())
	meta := test.Meta()
	meta.CompletedAt = test.CompletedAt.Format(time.RFC3339)
	test.SetMeta(meta)

	if err := s.tests.Save(ctx, test); err != nil {
		return nil, apperr.Unexpected("Erreur lors de la finalisation du test", err)
	}
	view := orientation.FormatTest(test)
	return &view, nil
}
