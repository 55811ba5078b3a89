package orientation

import (
	"encoding/json"
	"testing"
)

func TestDominantProfile(t *testing.T) {
	tests := []struct {
		name   string
		scores any
		want   string
		wantOK bool
	}{
		{"tie keeps first scanned", map[string]any{"R": 3, "A": 3}, "R", true},
		{"highest wins", map[string]any{"R": 1, "I": 2, "S": 9, "C": 4}, "S", true},
		{"french aliases", map[string]any{"Réaliste": 2, "Artistique": 7}, "A", true},
		{"alias beats canonical of later trait", map[string]any{"Investigateur": 6, "S": 5}, "I", true},
		{"numeric strings", map[string]any{"I": "4", "E": "10"}, "E", true},
		{"stored numbers", map[string]any{"A": json.Number("2.5"), "C": json.Number("2.4")}, "A", true},
		{"non numeric skipped", map[string]any{"R": "high", "C": 0}, "C", true},
		{"zero beats start value", map[string]any{"R": 0}, "R", true},
		{"no known keys", map[string]any{"X": 10}, "", false},
		{"scores not an object", []any{1, 2}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			test := newTest()
			test.StepData = fullStepData()
			test.StepData["riasec"] = map[string]any{"scores": tt.scores}

			got, ok := DominantProfile(test)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("DominantProfile = %q, %v; want %q, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestDominantProfileRequiresAllSteps(t *testing.T) {
	test := newTest()
	test.StepData = fullStepData()
	delete(test.StepData, "constraints")
	test.StepData["riasec"] = map[string]any{"scores": map[string]any{"R": 99}}

	if got, ok := DominantProfile(test); ok {
		t.Errorf("DominantProfile = %q on an incomplete test", got)
	}
}

func TestDominantProfileNestedRiasec(t *testing.T) {
	test := newTest()
	test.StepData = fullStepData()
	test.StepData["riasec"] = map[string]any{
		"riasec": map[string]any{"scores": map[string]any{"I": 8, "S": 5}},
	}
	if got, _ := DominantProfile(test); got != "I" {
		t.Errorf("DominantProfile = %q, want I", got)
	}
}
