package orientation

import (
	"time"

	"github.com/lshigami/orientation-event/internal/model"
	"gorm.io/datatypes"
)

// Payload keys that describe the submission itself and are never stored as
// step data.
var reservedPayloadKeys = map[string]struct{}{
	"timestamp":      {},
	"totalQuestions": {},
	"questions":      {},
	model.SessionKey: {},
}

// Submission is one save-step call.
type Submission struct {
	StepName string
	Payload  map[string]any
	// Duration is the time spent on the step in seconds, when reported.
	Duration *float64
}

// MergeStep folds a step submission into the test's accumulated data.
// Previously stored steps are kept; keys sent again are overwritten.
// When the step is personalInfo, non-empty contact fields are copied onto
// owner and the returned flag reports whether owner was modified.
func MergeStep(test *model.OrientationTest, owner *model.User, sub Submission, now time.Time) bool {
	payload := Data(sub.Payload)
	duration := 0.0
	if sub.Duration != nil {
		duration = *sub.Duration
	}

	test.TestType = sub.StepName

	data := Data(test.StepData)
	if data == nil {
		data = Data{}
	}
	data[model.SelectedLangKey] = test.Language
	data[model.SessionKey] = map[string]any{
		"testType":       sub.StepName,
		"startedAt":      test.StartedAt.Format(time.RFC3339),
		"completedAt":    now.Format(time.RFC3339),
		"duration":       duration,
		"language":       test.Language,
		"totalQuestions": sessionValue(payload, "totalQuestions", 0),
		"questions":      sessionValue(payload, "questions", []any{}),
	}

	for key, value := range payload {
		if _, reserved := reservedPayloadKeys[key]; reserved {
			continue
		}
		data[storageKey(sub.StepName, key)] = value
	}
	test.StepData = datatypes.JSONMap(data)

	meta := test.Meta()
	if meta.Version == "" {
		meta.Version = model.MetadataVersion
		meta.SelectedLanguage = test.Language
		meta.StartedAt = test.StartedAt.Format(time.RFC3339)
	}
	meta.StepDurations[sub.StepName] = duration
	test.SetMeta(meta)

	if v, ok := payload.lookup("totalQuestions"); ok {
		if n, ok := toFloat(v); ok {
			test.TotalQuestions += int(n)
		}
	}

	if Kind(sub.StepName) != PersonalInfo || owner == nil {
		return false
	}
	info, ok := payload.lookup(string(PersonalInfo))
	if !ok {
		return false
	}
	fields, ok := asMap(info)
	if !ok {
		return false
	}
	return applyPersonalInfo(owner, fields)
}

// storageKey keeps the historical storage keys for the two steps whose
// payload key differs from the step name.
func storageKey(stepName, key string) string {
	switch {
	case Kind(stepName) == CareerCompatibility && key == legacyCareersKey:
		return string(CareerCompatibility)
	case Kind(stepName) == LanguageSkills && key == legacyLanguagesKey:
		return legacyLanguagesKey
	}
	return key
}

// sessionValue reads key from the payload, then from payload.session.
func sessionValue(payload Data, key string, fallback any) any {
	if v, ok := payload.lookup(key); ok {
		return v
	}
	if s, ok := payload.lookup(model.SessionKey); ok {
		if m, ok := asMap(s); ok {
			if v, ok := Data(m).lookup(key); ok {
				return v
			}
		}
	}
	return fallback
}

func applyPersonalInfo(u *model.User, info map[string]any) bool {
	changed := false
	setText := func(dst **string, key string) {
		v := info[key]
		if isEmpty(v) {
			return
		}
		s, ok := toText(v)
		if !ok {
			return
		}
		if *dst != nil && **dst == s {
			return
		}
		*dst = &s
		changed = true
	}
	setText(&u.Telephone, "phoneNumber")
	setText(&u.WhatsappNumber, "whatsappNumber")
	setText(&u.FirstName, "firstName")
	setText(&u.LastName, "lastName")

	if v := info["age"]; !isEmpty(v) {
		if f, ok := toFloat(v); ok {
			age := int(f)
			if u.Age == nil || *u.Age != age {
				u.Age = &age
				changed = true
			}
		}
	}
	return changed
}

// StartWelcome seeds a new test with the welcome session that precedes the
// first step.
func StartWelcome(test *model.OrientationTest) {
	test.TestType = model.DefaultTestType
	test.StepData = datatypes.JSONMap{
		model.SelectedLangKey: test.Language,
		model.SessionKey: map[string]any{
			"testType":       model.DefaultTestType,
			"startedAt":      test.StartedAt.Format(time.RFC3339),
			"completedAt":    nil,
			"duration":       0,
			"language":       test.Language,
			"totalQuestions": 0,
			"questions":      []any{},
		},
	}
}
