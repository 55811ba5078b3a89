// Package orientation holds the questionnaire progress rules: merging step
// submissions into the stored blob, deciding which steps are complete,
// projecting the blob for API consumers and scoring the RIASEC profile.
//
// Every required step is described once in the steps table below. The
// completion rules and the report projection both read from that table.
package orientation

import (
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
)

// Kind names a questionnaire step as submitted by clients.
type Kind string

const (
	PersonalInfo        Kind = "personalInfo"
	Riasec              Kind = "riasec"
	Personality         Kind = "personality"
	Interests           Kind = "interests"
	CareerCompatibility Kind = "careerCompatibility"
	Constraints         Kind = "constraints"
	LanguageSkills      Kind = "languageSkills"
)

// Legacy storage keys still found in older rows.
const (
	legacyCareersKey   = "careers"
	legacyLanguagesKey = "languages"
)

// Data is the accumulated step blob of a test.
type Data map[string]any

// lookup mirrors an isset check: the key exists and is not null.
func (d Data) lookup(key string) (any, bool) {
	v, ok := d[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

type step struct {
	kind Kind
	// keys are the storage keys that count as evidence of completion.
	keys []string
	// project resolves the value exposed in the report view.
	project func(Data) (any, bool)
	// field selects the report view slot filled by project.
	field func(*TestView) *any
}

var steps = []step{
	{
		kind:    PersonalInfo,
		keys:    []string{string(PersonalInfo)},
		project: unwrapSelfNested(string(PersonalInfo)),
		field:   func(v *TestView) *any { return &v.PersonalInfo },
	},
	{
		kind:    Riasec,
		keys:    []string{string(Riasec)},
		project: unwrapSelfNested(string(Riasec)),
		field:   func(v *TestView) *any { return &v.RiasecScores },
	},
	{
		kind:    Personality,
		keys:    []string{string(Personality)},
		project: unwrapSelfNested(string(Personality)),
		field:   func(v *TestView) *any { return &v.PersonalityScores },
	},
	{
		kind:    Interests,
		keys:    []string{string(Interests)},
		project: unwrapSelfNested(string(Interests)),
		field:   func(v *TestView) *any { return &v.AcademicInterests },
	},
	{
		kind:    CareerCompatibility,
		keys:    []string{string(CareerCompatibility), legacyCareersKey},
		project: firstPresent(string(CareerCompatibility), legacyCareersKey),
		field:   func(v *TestView) *any { return &v.CareerCompatibility },
	},
	{
		kind:    Constraints,
		keys:    []string{string(Constraints)},
		project: unwrapSelfNested(string(Constraints)),
		field:   func(v *TestView) *any { return &v.Constraints },
	},
	{
		kind:    LanguageSkills,
		keys:    []string{string(LanguageSkills), legacyLanguagesKey},
		project: projectLanguageSkills,
		field:   func(v *TestView) *any { return &v.LanguageSkills },
	},
}

// RequiredSteps lists the steps a test needs before a report is available,
// in evaluation order.
func RequiredSteps() []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = string(s.kind)
	}
	return out
}

// unwrapSelfNested handles both {"riasec": {...}} and the legacy
// {"riasec": {"riasec": {...}}} storage shapes.
func unwrapSelfNested(key string) func(Data) (any, bool) {
	return func(d Data) (any, bool) {
		v, ok := d.lookup(key)
		if !ok {
			return nil, false
		}
		if m, isMap := asMap(v); isMap {
			if inner, ok := m[key]; ok && isContainer(inner) {
				return inner, true
			}
		}
		return v, true
	}
}

func firstPresent(keys ...string) func(Data) (any, bool) {
	return func(d Data) (any, bool) {
		for _, k := range keys {
			if v, ok := d.lookup(k); ok {
				return v, true
			}
		}
		return nil, false
	}
}

func projectLanguageSkills(d Data) (any, bool) {
	if v, ok := d.lookup(legacyLanguagesKey); ok {
		return v, true
	}
	v, ok := d.lookup(string(LanguageSkills))
	if !ok {
		return nil, false
	}
	if m, isMap := asMap(v); isMap {
		if inner, ok := m[legacyLanguagesKey]; ok && isContainer(inner) {
			return inner, true
		}
	}
	return v, true
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Data:
		return m, true
	}
	return nil, false
}

// isContainer reports whether v is a JSON object or array.
func isContainer(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return true
	}
	return false
}

// isEmpty follows the loose emptiness rules the stored data was written
// against: null, false, zero, "", "0" and empty collections are empty.
func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	switch x := v.(type) {
	case bool:
		return !x
	case string:
		return x == "" || x == "0"
	case json.Number:
		f, err := x.Float64()
		return err == nil && f == 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return rv.Len() == 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// toFloat converts JSON numbers and numeric strings.
func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case uint:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	}
	return 0, false
}

func toText(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case json.Number:
		return x.String(), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	}
	return "", false
}
