package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	DefaultTestType = "welcome"
	MetadataVersion = "1.0"
	DefaultLanguage = "fr"
	SessionKey      = "session"
	SelectedLangKey = "selectedLanguage"
)

// TestMetadata is the bookkeeping blob stored next to the step data.
type TestMetadata struct {
	SelectedLanguage string             `json:"selectedLanguage"`
	StartedAt        string             `json:"startedAt"`
	StepDurations    map[string]float64 `json:"stepDurations"`
	Version          string             `json:"version"`
	CompletedAt      string             `json:"completedAt,omitempty"`
}

// OrientationTest is one run of the orientation questionnaire for a user.
// Only one row per user may have IsCompleted=false (partial unique index).
type OrientationTest struct {
	ID             uint                             `gorm:"primarykey" json:"id"`
	UserID         uint                             `json:"user_id" gorm:"not null;index;index:idx_orientation_tests_active_user,unique,where:is_completed = false"`
	User           *User                            `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	UUID           string                           `json:"uuid" gorm:"column:uuid;size:36;not null;uniqueIndex"`
	TestType       string                           `json:"test_type" gorm:"size:50;not null;default:'welcome'"`
	StartedAt      time.Time                        `json:"started_at" gorm:"not null"`
	CompletedAt    *time.Time                       `json:"completed_at,omitempty"`
	Duration       *int64                           `json:"duration,omitempty"`
	Language       string                           `json:"language" gorm:"size:2;not null;default:'fr'"`
	TotalQuestions int                              `json:"total_questions" gorm:"not null;default:0"`
	Metadata       datatypes.JSONType[TestMetadata] `json:"metadata"`
	StepData       datatypes.JSONMap                `json:"current_step" gorm:"column:current_step"`
	IsCompleted    bool                             `json:"is_completed" gorm:"not null;default:false"`
	CreatedAt      time.Time                        `json:"created_at"`
	UpdatedAt      time.Time                        `json:"updated_at"`
}

// NewOrientationTest builds an unsaved active test with a fresh uuid and
// initialised metadata.
func NewOrientationTest(userID uint, language string, now time.Time) *OrientationTest {
	if language == "" {
		language = DefaultLanguage
	}
	t := &OrientationTest{
		UserID:    userID,
		UUID:      uuid.NewString(),
		TestType:  DefaultTestType,
		StartedAt: now,
		Language:  language,
		StepData:  datatypes.JSONMap{},
	}
	t.Metadata = datatypes.NewJSONType(TestMetadata{
		SelectedLanguage: language,
		StartedAt:        now.Format(time.RFC3339),
		StepDurations:    map[string]float64{},
		Version:          MetadataVersion,
	})
	return t
}

// MarkCompleted flips the completion flag. CompletedAt and Duration are only
// stamped the first time.
func (t *OrientationTest) MarkCompleted(now time.Time) {
	t.IsCompleted = true
	if t.CompletedAt != nil {
		return
	}
	completed := now
	t.CompletedAt = &completed
	d := int64(completed.Sub(t.StartedAt) / time.Second)
	t.Duration = &d
}

// Meta returns a copy of the metadata with a non-nil durations map.
func (t *OrientationTest) Meta() TestMetadata {
	m := t.Metadata.Data()
	if m.StepDurations == nil {
		m.StepDurations = map[string]float64{}
	} else {
		cp := make(map[string]float64, len(m.StepDurations))
		for k, v := range m.StepDurations {
			cp[k] = v
		}
		m.StepDurations = cp
	}
	return m
}

func (t *OrientationTest) SetMeta(m TestMetadata) {
	t.Metadata = datatypes.NewJSONType(m)
}
