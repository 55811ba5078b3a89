package orientation

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"gorm.io/datatypes"
)

func fullStepData() datatypes.JSONMap {
	return datatypes.JSONMap{
		"personalInfo":        map[string]any{"firstName": "Awa"},
		"riasec":              map[string]any{"scores": map[string]any{"R": 3, "A": 3}},
		"personality":         map[string]any{"O": 1},
		"interests":           []any{"math"},
		"careerCompatibility": []any{"engineer"},
		"constraints":         map[string]any{"budget": "low"},
		"languageSkills":      map[string]any{"languages": []any{"fr"}},
	}
}

func TestCompletedStepsEmpty(t *testing.T) {
	test := newTest()
	test.StepData = nil
	if got := CompletedSteps(test); len(got) != 0 {
		t.Errorf("CompletedSteps = %v, want none", got)
	}
	if AllStepsCompleted(test) {
		t.Error("AllStepsCompleted on empty data")
	}
}

func TestCompletedStepsOrderAndEmptiness(t *testing.T) {
	test := newTest()
	test.StepData = datatypes.JSONMap{
		"languages":    []any{"fr"},
		"riasec":       map[string]any{"R": 1},
		"personality":  map[string]any{},
		"interests":    "0",
		"constraints":  false,
		"careers":      []any{"nurse"},
		"personalInfo": json.Number("0"),
	}
	want := []string{"riasec", "careerCompatibility", "languageSkills"}
	if got := CompletedSteps(test); !reflect.DeepEqual(got, want) {
		t.Errorf("CompletedSteps = %v, want %v", got, want)
	}
}

func TestCompletedStepsMonotonic(t *testing.T) {
	test := newTest()
	prev := 0
	for _, name := range RequiredSteps() {
		MergeStep(test, nil, Submission{StepName: name, Payload: map[string]any{name: map[string]any{"v": 1}}}, testNow)
		n := len(CompletedSteps(test))
		if n < prev {
			t.Fatalf("completed steps dropped from %d to %d after %s", prev, n, name)
		}
		prev = n
	}
	if !AllStepsCompleted(test) {
		t.Errorf("all steps merged but CompletedSteps = %v", CompletedSteps(test))
	}
}

func TestAllStepsCompletedIgnoresFlag(t *testing.T) {
	done := newTest()
	done.StepData = fullStepData()
	if done.IsCompleted || !AllStepsCompleted(done) {
		t.Error("expected all steps completed with IsCompleted=false")
	}

	flagged := newTest()
	flagged.MarkCompleted(testNow)
	if !flagged.IsCompleted || AllStepsCompleted(flagged) {
		t.Error("expected IsCompleted=true without all steps completed")
	}
}

func TestRequiredSteps(t *testing.T) {
	want := []string{"personalInfo", "riasec", "personality", "interests", "careerCompatibility", "constraints", "languageSkills"}
	if got := RequiredSteps(); !reflect.DeepEqual(got, want) {
		t.Errorf("RequiredSteps = %v", got)
	}
}

func TestMarkCompletedStampsOnce(t *testing.T) {
	test := newTest()
	test.MarkCompleted(testNow)
	first := *test.CompletedAt
	if *test.Duration != 3600 {
		t.Errorf("Duration = %d, want 3600", *test.Duration)
	}
	test.MarkCompleted(testNow.Add(time.Hour))
	if !test.CompletedAt.Equal(first) {
		t.Error("CompletedAt changed on second completion")
	}
}
