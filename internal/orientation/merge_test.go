package orientation

import (
	"reflect"
	"testing"
	"time"

	"github.com/lshigami/orientation-event/internal/model"
)

var testNow = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

func newTest() *model.OrientationTest {
	return model.NewOrientationTest(7, "fr", testNow.Add(-time.Hour))
}

func seconds(f float64) *float64 { return &f }

func TestMergeStepKeepsEarlierSteps(t *testing.T) {
	test := newTest()
	names := []string{"personalInfo", "riasec", "personality", "interests"}
	for i, name := range names {
		MergeStep(test, nil, Submission{
			StepName: name,
			Payload:  map[string]any{name: map[string]any{"n": i + 1}},
		}, testNow)
	}
	for i, name := range names {
		got, ok := test.StepData[name].(map[string]any)
		if !ok {
			t.Fatalf("step %s missing from step data", name)
		}
		if got["n"] != i+1 {
			t.Errorf("step %s = %v, want n=%d", name, got, i+1)
		}
	}
	if test.TestType != "interests" {
		t.Errorf("TestType = %q, want interests", test.TestType)
	}
}

func TestMergeStepSession(t *testing.T) {
	test := newTest()
	MergeStep(test, nil, Submission{
		StepName: "riasec",
		Payload: map[string]any{
			"riasec":    map[string]any{"R": 5},
			"timestamp": "2025-03-14T10:00:00Z",
			"session":   map[string]any{"totalQuestions": 12, "questions": []any{"q1"}},
		},
		Duration: seconds(30),
	}, testNow)

	session, ok := test.StepData[model.SessionKey].(map[string]any)
	if !ok {
		t.Fatalf("session not written: %#v", test.StepData)
	}
	if session["testType"] != "riasec" {
		t.Errorf("session testType = %v", session["testType"])
	}
	if session["completedAt"] != testNow.Format(time.RFC3339) {
		t.Errorf("session completedAt = %v", session["completedAt"])
	}
	if session["duration"] != 30.0 {
		t.Errorf("session duration = %v, want 30", session["duration"])
	}
	if session["totalQuestions"] != 12 {
		t.Errorf("session totalQuestions = %v, want nested value 12", session["totalQuestions"])
	}
	if !reflect.DeepEqual(session["questions"], []any{"q1"}) {
		t.Errorf("session questions = %v", session["questions"])
	}
	if _, ok := test.StepData["timestamp"]; ok {
		t.Error("timestamp must not be stored as step data")
	}
	if test.StepData[model.SelectedLangKey] != "fr" {
		t.Errorf("selectedLanguage = %v", test.StepData[model.SelectedLangKey])
	}
	if got := test.Meta().StepDurations["riasec"]; got != 30 {
		t.Errorf("stepDurations[riasec] = %v, want 30", got)
	}
}

func TestMergeStepDefaultsMissingDuration(t *testing.T) {
	test := newTest()
	MergeStep(test, nil, Submission{StepName: "constraints", Payload: map[string]any{"constraints": []any{"x"}}}, testNow)

	if got, ok := test.Meta().StepDurations["constraints"]; !ok || got != 0 {
		t.Errorf("stepDurations[constraints] = %v, %v; want 0, true", got, ok)
	}
	session := test.StepData[model.SessionKey].(map[string]any)
	if session["totalQuestions"] != 0 {
		t.Errorf("session totalQuestions = %v, want 0", session["totalQuestions"])
	}
	if !reflect.DeepEqual(session["questions"], []any{}) {
		t.Errorf("session questions = %#v, want empty list", session["questions"])
	}
}

func TestMergeStepAccumulatesTotalQuestions(t *testing.T) {
	test := newTest()
	MergeStep(test, nil, Submission{StepName: "riasec", Payload: map[string]any{"totalQuestions": 10.0}}, testNow)
	MergeStep(test, nil, Submission{StepName: "personality", Payload: map[string]any{"totalQuestions": "5"}}, testNow)
	MergeStep(test, nil, Submission{StepName: "interests", Payload: map[string]any{"interests": []any{"math"}}}, testNow)

	if test.TotalQuestions != 15 {
		t.Errorf("TotalQuestions = %d, want 15", test.TotalQuestions)
	}
	if _, ok := test.StepData["totalQuestions"]; ok {
		t.Error("totalQuestions must not be stored as step data")
	}
}

func TestMergeStepStorageAliases(t *testing.T) {
	careers := []any{"engineer", "nurse"}
	test := newTest()
	MergeStep(test, nil, Submission{StepName: "careerCompatibility", Payload: map[string]any{"careers": careers}}, testNow)

	if !reflect.DeepEqual(test.StepData["careerCompatibility"], careers) {
		t.Errorf("careerCompatibility = %v, want %v", test.StepData["careerCompatibility"], careers)
	}
	if _, ok := test.StepData["careers"]; ok {
		t.Error("careers must be stored under careerCompatibility")
	}

	langs := map[string]any{"fr": "C1"}
	MergeStep(test, nil, Submission{StepName: "languageSkills", Payload: map[string]any{"languages": langs}}, testNow)
	if !reflect.DeepEqual(test.StepData["languages"], langs) {
		t.Errorf("languages = %v, want %v", test.StepData["languages"], langs)
	}
	if _, ok := test.StepData["languageSkills"]; ok {
		t.Error("languages payload must not be stored under languageSkills")
	}
}

func TestMergeStepAcceptsUnknownSteps(t *testing.T) {
	test := newTest()
	MergeStep(test, nil, Submission{StepName: "bonus", Payload: map[string]any{"extra": true}}, testNow)
	if test.StepData["extra"] != true {
		t.Errorf("unknown step data not merged: %v", test.StepData)
	}
	if test.TestType != "bonus" {
		t.Errorf("TestType = %q", test.TestType)
	}
}

func TestMergeStepPersonalInfoUpdatesOwner(t *testing.T) {
	oldPhone := "0600000000"
	owner := &model.User{ID: 7, Email: "a@b.c", Telephone: &oldPhone}
	test := newTest()

	changed := MergeStep(test, owner, Submission{
		StepName: "personalInfo",
		Payload: map[string]any{"personalInfo": map[string]any{
			"phoneNumber":    "0711111111",
			"whatsappNumber": "",
			"firstName":      "Awa",
			"lastName":       "Diallo",
			"age":            "17",
		}},
	}, testNow)

	if !changed {
		t.Fatal("expected owner to be reported as changed")
	}
	if *owner.Telephone != "0711111111" {
		t.Errorf("Telephone = %q", *owner.Telephone)
	}
	if owner.WhatsappNumber != nil {
		t.Errorf("empty whatsappNumber must be ignored, got %q", *owner.WhatsappNumber)
	}
	if *owner.FirstName != "Awa" || *owner.LastName != "Diallo" {
		t.Errorf("names = %q %q", *owner.FirstName, *owner.LastName)
	}
	if owner.Age == nil || *owner.Age != 17 {
		t.Errorf("Age = %v, want 17", owner.Age)
	}

	again := MergeStep(test, owner, Submission{
		StepName: "personalInfo",
		Payload:  map[string]any{"personalInfo": map[string]any{"firstName": "Awa", "age": 0}},
	}, testNow)
	if again {
		t.Error("identical values must not report a change")
	}
}

func TestMergeStepIgnoresPersonalInfoOnOtherSteps(t *testing.T) {
	owner := &model.User{ID: 7, Email: "a@b.c"}
	changed := MergeStep(newTest(), owner, Submission{
		StepName: "riasec",
		Payload:  map[string]any{"personalInfo": map[string]any{"firstName": "Awa"}},
	}, testNow)
	if changed || owner.FirstName != nil {
		t.Error("owner must only be updated by the personalInfo step")
	}
}

func TestStartWelcome(t *testing.T) {
	test := newTest()
	StartWelcome(test)

	session, ok := test.StepData[model.SessionKey].(map[string]any)
	if !ok || session["testType"] != "welcome" || session["completedAt"] != nil {
		t.Errorf("welcome session = %#v", test.StepData)
	}
	if got := CompletedSteps(test); len(got) != 0 {
		t.Errorf("welcome data counted as steps: %v", got)
	}
}
