package service

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/lshigami/orientation-event/config"
	"github.com/lshigami/orientation-event/internal/apperr"
	"github.com/lshigami/orientation-event/internal/cache"
	"github.com/lshigami/orientation-event/internal/dto"
	"github.com/lshigami/orientation-event/internal/model"
	"github.com/lshigami/orientation-event/internal/orientation"
	"github.com/lshigami/orientation-event/internal/repository"
	"github.com/lshigami/orientation-event/internal/testutil"
)

func TestMain(m *testing.M) {
	bcryptCost = bcrypt.MinCost
	os.Exit(m.Run())
}

type fixture struct {
	db    *gorm.DB
	cfg   *config.Config
	redis *miniredis.Miniredis
	users repository.UserRepository
	tests repository.OrientationTestRepository
	stats StatsService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Config{
		Auth:            config.Auth{JWTSecret: "test-secret", TokenTTL: time.Hour},
		Redis:           config.Redis{StatsTTL: time.Minute},
		DefaultLanguage: "fr",
	}
	users := repository.NewUserRepository(db)
	tests := repository.NewOrientationTestRepository(db)
	return &fixture{
		db:    db,
		cfg:   cfg,
		redis: mr,
		users: users,
		tests: tests,
		stats: NewStatsService(users, tests, cache.New(client, "stats:"), cfg),
	}
}

func (f *fixture) orientation() OrientationService {
	return NewOrientationService(f.db, f.tests, f.users, f.stats, f.cfg)
}

func (f *fixture) admin() AdminUserService {
	return NewAdminUserService(f.db, f.users, f.tests, f.stats)
}

func strPtr(s string) *string { return &s }

func wantKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	if !apperr.IsKind(err, kind) {
		t.Fatalf("error = %v, want kind %v", err, kind)
	}
}

// completeAllSteps submits every required step for user.
func completeAllSteps(t *testing.T, svc OrientationService, user *model.User, riasec map[string]any) {
	t.Helper()
	ctx := context.Background()
	for _, name := range orientation.RequiredSteps() {
		value := any(map[string]any{"answered": true})
		if name == string(orientation.Riasec) {
			value = map[string]any{"scores": riasec}
		}
		_, err := svc.SaveStep(ctx, user, dto.SaveStepRequest{
			StepName: name,
			StepData: map[string]any{name: value},
		})
		if err != nil {
			t.Fatalf("SaveStep(%s): %v", name, err)
		}
	}
}
