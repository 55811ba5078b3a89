package orientation

import "github.com/lshigami/orientation-event/internal/model"

// RIASEC trait codes in scan order with the score keys accepted for each.
var traitAliases = []struct {
	code    string
	aliases []string
}{
	{"R", []string{"R", "Realiste", "Réaliste"}},
	{"I", []string{"I", "Investigateur"}},
	{"A", []string{"A", "Artistique"}},
	{"S", []string{"S", "Social"}},
	{"E", []string{"E", "Entreprenant"}},
	{"C", []string{"C", "Conventionnel"}},
}

// DominantProfile returns the code (R, I, A, S, E or C) of the highest
// RIASEC score.
// Ties go to the trait scanned first. ok is false until every required step
// is completed or when no usable score exists.
func DominantProfile(test *model.OrientationTest) (profile string, ok bool) {
	if !AllStepsCompleted(test) {
		return "", false
	}
	view := FormatTest(test)
	riasec, isMap := asMap(view.RiasecScores)
	if !isMap {
		return "", false
	}
	scores, isMap := asMap(riasec["scores"])
	if !isMap {
		return "", false
	}

	best := -1.0
	for _, t := range traitAliases {
		for _, alias := range t.aliases {
			raw, present := scores[alias]
			if !present || raw == nil {
				continue
			}
			score, numeric := toFloat(raw)
			if !numeric {
				continue
			}
			if score > best {
				best = score
				profile = t.code
				ok = true
			}
		}
	}
	return profile, ok
}
