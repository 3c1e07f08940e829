package models

// Split names the muscle-group grouping of a session.
const (
	SplitPush = "Push"
	SplitPull = "Pull"
	SplitLegs = "Legs"
)

// Splits lists the valid split values in display order.
var Splits = []string{SplitPush, SplitPull, SplitLegs}

// ValidSplit reports whether s is one of the known splits.
func ValidSplit(s string) bool {
	for _, v := range Splits {
		if v == s {
			return true
		}
	}
	return false
}

// PlanEntry is one row of the exercise plan. The plan is read-only source
// data; nothing in this package or its consumers mutates it.
type PlanEntry struct {
	Phase        int    `json:"phase"`
	Split        string `json:"split"`
	Day          int    `json:"day"`
	Exercise     string `json:"exercise"`
	WarmUp       string `json:"warm_up"`
	Sets         int    `json:"sets"`
	Reps         string `json:"reps"`
	RPE          string `json:"rpe"`
	Alternative1 string `json:"alternative_1,omitempty"`
	Alternative2 string `json:"alternative_2,omitempty"`
}
