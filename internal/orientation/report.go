package orientation

import "github.com/lshigami/orientation-event/internal/model"

// TestView is the normalised, client-facing shape of a test.
type TestView struct {
	UUID                string             `json:"uuid"`
	SelectedLanguage    string             `json:"selectedLanguage"`
	IsCompleted         bool               `json:"isCompleted"`
	CurrentStepID       string             `json:"currentStepId"`
	TestMetadata        model.TestMetadata `json:"testMetadata"`
	CurrentStep         map[string]any     `json:"currentStep,omitempty"`
	PersonalInfo        any                `json:"personalInfo,omitempty"`
	RiasecScores        any                `json:"riasecScores,omitempty"`
	PersonalityScores   any                `json:"personalityScores,omitempty"`
	AcademicInterests   any                `json:"academicInterests,omitempty"`
	CareerCompatibility any                `json:"careerCompatibility,omitempty"`
	Constraints         any                `json:"constraints,omitempty"`
	LanguageSkills      any                `json:"languageSkills,omitempty"`
}

// FormatTest projects a stored test into a TestView. It does not modify
// the test.
func FormatTest(test *model.OrientationTest) TestView {
	view := TestView{
		UUID:             test.UUID,
		SelectedLanguage: test.Language,
		IsCompleted:      test.IsCompleted,
		CurrentStepID:    test.TestType,
		TestMetadata:     test.Meta(),
	}
	if len(test.StepData) == 0 {
		return view
	}
	data := Data(test.StepData)
	view.CurrentStep = map[string]any(data)
	for _, s := range steps {
		if v, ok := s.project(data); ok {
			*s.field(&view) = v
		}
	}
	return view
}
