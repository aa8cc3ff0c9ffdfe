// Package training defines the fixed set of training modules and the
// validation rules for score submissions.
package training

// Module identifiers. The set is closed; submissions against any other id
// are rejected.
const (
	ModulePhishing  = "phishing"
	ModulePassword  = "password"
	ModuleQuiz      = "quiz"
	ModuleInjection = "injection"
)

// Score bounds for a single module completion.
const (
	MinScore = 0
	MaxScore = 100
)

var known = map[string]struct{}{
	ModulePhishing:  {},
	ModulePassword:  {},
	ModuleQuiz:      {},
	ModuleInjection: {},
}

// Modules returns the known module ids. The slice is a copy; callers may
// reorder it freely.
func Modules() []string {
	return []string{ModulePhishing, ModulePassword, ModuleQuiz, ModuleInjection}
}

// IsKnown reports whether id names one of the fixed training modules.
func IsKnown(id string) bool {
	_, ok := known[id]
	return ok
}

// ValidateSubmission checks a (moduleID, score) pair against the closed
// module set and the score range.
func ValidateSubmission(moduleID string, score int) error {
	if !IsKnown(moduleID) {
		return NewUnknownModule(moduleID)
	}
	if score < MinScore || score > MaxScore {
		return NewScoreOutOfRange(score)
	}
	return nil
}
