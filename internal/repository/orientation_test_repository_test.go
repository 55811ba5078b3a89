package repository

import (
	"context"
	"testing"
	"time"

	"github.com/lshigami/orientation-event/internal/model"
	"github.com/lshigami/orientation-event/internal/testutil"
)

func TestOrientationTestRepositoryActiveAndLatest(t *testing.T) {
	db := testutil.DB(t)
	repo := NewOrientationTestRepository(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "a@example.com", false)
	start := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

	if got, err := repo.FindActiveByUser(ctx, u.ID); err != nil || got != nil {
		t.Fatalf("FindActiveByUser on empty = %v, %v", got, err)
	}

	done := model.NewOrientationTest(u.ID, "fr", start)
	done.MarkCompleted(start.Add(time.Hour))
	if err := repo.Create(ctx, done); err != nil {
		t.Fatalf("Create completed: %v", err)
	}
	active := model.NewOrientationTest(u.ID, "en", start.Add(2*time.Hour))
	active.StepData["riasec"] = map[string]any{"R": 5}
	if err := repo.Create(ctx, active); err != nil {
		t.Fatalf("Create active: %v", err)
	}

	got, err := repo.FindActiveByUser(ctx, u.ID)
	if err != nil || got == nil || got.UUID != active.UUID {
		t.Fatalf("FindActiveByUser = %v, %v", got, err)
	}
	riasec, ok := got.StepData["riasec"].(map[string]any)
	if !ok || riasec["R"] == nil {
		t.Errorf("step data not persisted: %#v", got.StepData)
	}
	if got.Meta().Version != model.MetadataVersion {
		t.Errorf("metadata not persisted: %+v", got.Meta())
	}

	latest, err := repo.FindLatestByUser(ctx, u.ID)
	if err != nil || latest == nil || latest.UUID != active.UUID {
		t.Errorf("FindLatestByUser = %v, %v", latest, err)
	}
}

func TestOrientationTestRepositorySingleActive(t *testing.T) {
	db := testutil.DB(t)
	repo := NewOrientationTestRepository(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "a@example.com", false)
	now := time.Now()

	if err := repo.Create(ctx, model.NewOrientationTest(u.ID, "fr", now)); err != nil {
		t.Fatalf("first active: %v", err)
	}
	if err := repo.Create(ctx, model.NewOrientationTest(u.ID, "fr", now)); err == nil {
		t.Error("second active test for the same user must be rejected")
	}
}

func TestOrientationTestRepositoryBulk(t *testing.T) {
	db := testutil.DB(t)
	repo := NewOrientationTestRepository(db)
	ctx := context.Background()
	a := testutil.CreateUser(t, db, "a@example.com", false)
	b := testutil.CreateUser(t, db, "b@example.com", false)
	c := testutil.CreateUser(t, db, "c@example.com", false)
	start := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

	old := model.NewOrientationTest(a.ID, "fr", start)
	old.MarkCompleted(start)
	newer := model.NewOrientationTest(a.ID, "fr", start.Add(time.Hour))
	other := model.NewOrientationTest(b.ID, "fr", start)
	for _, test := range []*model.OrientationTest{old, newer, other} {
		if err := repo.Create(ctx, test); err != nil {
			t.Fatal(err)
		}
	}

	latest, err := repo.FindLatestByUsers(ctx, []uint{a.ID, b.ID, c.ID})
	if err != nil {
		t.Fatalf("FindLatestByUsers: %v", err)
	}
	if len(latest) != 2 || latest[a.ID].UUID != newer.UUID || latest[b.ID].UUID != other.UUID {
		t.Errorf("FindLatestByUsers = %v", latest)
	}
	if _, ok := latest[c.ID]; ok {
		t.Error("user without tests must be absent")
	}

	if n, err := repo.CountUsersWithTests(ctx); err != nil || n != 2 {
		t.Errorf("CountUsersWithTests = %d, %v", n, err)
	}
	all, err := repo.FindAll(ctx)
	if err != nil || len(all) != 3 {
		t.Errorf("FindAll = %d, %v", len(all), err)
	}

	if err := repo.Delete(ctx, newer); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := repo.FindActiveByUser(ctx, a.ID); got != nil {
		t.Errorf("deleted test still active: %v", got.UUID)
	}
}
