package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/lshigami/orientation-event/internal/model"
)

type OrientationTestRepository interface {
	WithTx(tx *gorm.DB) OrientationTestRepository
	Create(ctx context.Context, test *model.OrientationTest) error
	Save(ctx context.Context, test *model.OrientationTest) error
	Delete(ctx context.Context, test *model.OrientationTest) error
	// FindActiveByUser returns the user's test with IsCompleted=false, or nil.
	FindActiveByUser(ctx context.Context, userID uint) (*model.OrientationTest, error)
	// FindLatestByUser returns the most recently started test, or nil.
	FindLatestByUser(ctx context.Context, userID uint) (*model.OrientationTest, error)
	// FindLatestByUsers maps each user id that has a test to its latest one.
	FindLatestByUsers(ctx context.Context, userIDs []uint) (map[uint]*model.OrientationTest, error)
	FindAll(ctx context.Context) ([]model.OrientationTest, error)
	CountUsersWithTests(ctx context.Context) (int64, error)
}

type orientationTestRepository struct {
	db *gorm.DB
}

func NewOrientationTestRepository(db *gorm.DB) OrientationTestRepository {
	return &orientationTestRepository{db: db}
}

func (r *orientationTestRepository) WithTx(tx *gorm.DB) OrientationTestRepository {
	return &orientationTestRepository{db: tx}
}

func (r *orientationTestRepository) Create(ctx context.Context, test *model.OrientationTest) error {
	return r.db.WithContext(ctx).Omit("User").Create(test).Error
}

func (r *orientationTestRepository) Save(ctx context.Context, test *model.OrientationTest) error {
	return r.db.WithContext(ctx).Omit("User").Save(test).Error
}

func (r *orientationTestRepository) Delete(ctx context.Context, test *model.OrientationTest) error {
	return r.db.WithContext(ctx).Delete(test).Error
}

func (r *orientationTestRepository) FindActiveByUser(ctx context.Context, userID uint) (*model.OrientationTest, error) {
	return r.latest(r.db.WithContext(ctx).Where("user_id = ? AND is_completed = ?", userID, false))
}

func (r *orientationTestRepository) FindLatestByUser(ctx context.Context, userID uint) (*model.OrientationTest, error) {
	return r.latest(r.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (r *orientationTestRepository) latest(query *gorm.DB) (*model.OrientationTest, error) {
	var test model.OrientationTest
	err := query.Order("started_at DESC").Order("id DESC").First(&test).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &test, nil
}

func (r *orientationTestRepository) FindLatestByUsers(ctx context.Context, userIDs []uint) (map[uint]*model.OrientationTest, error) {
	out := make(map[uint]*model.OrientationTest, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var tests []model.OrientationTest
	err := r.db.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Order("user_id").Order("started_at DESC").Order("id DESC").
		Find(&tests).Error
	if err != nil {
		return nil, err
	}
	for i := range tests {
		if _, seen := out[tests[i].UserID]; !seen {
			out[tests[i].UserID] = &tests[i]
		}
	}
	return out, nil
}

func (r *orientationTestRepository) FindAll(ctx context.Context) ([]model.OrientationTest, error) {
	var tests []model.OrientationTest
	err := r.db.WithContext(ctx).Order("id").Find(&tests).Error
	return tests, err
}

func (r *orientationTestRepository) CountUsersWithTests(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.OrientationTest{}).Distinct("user_id").Count(&n).Error
	return n, err
}
