package score

import "fmt"

// RuleSet is an advisory score range. Violations are reported, never enforced.
type RuleSet struct {
	Name string  `json:"name" yaml:"name"`
	Min  float64 `json:"min" yaml:"min"`
	Max  float64 `json:"max" yaml:"max"`
}

// DefaultRuleSet is the 0..100 range the search forms use.
var DefaultRuleSet = RuleSet{Name: "default", Min: 0, Max: 100}

const (
	ErrorTypeValidation = "validation"
	CodeOutOfRange      = "SCORE_OUT_OF_RANGE"
)

// ValidationError is informational feedback for a single subject score.
type ValidationError struct {
	Type        string `json:"type"`
	Code        string `json:"code"`
	Message     string `json:"message"`
	SubjectName string `json:"subjectName"`
}

// Validate reports every score in r that falls outside rules. Subjects are
// visited in lexical order.
func Validate(r SubjectScoreRecord, rules RuleSet) []ValidationError {
	return validate(r, rules, func(v float64) bool { return inRange(v, rules) })
}

func inRange(v float64, rules RuleSet) bool { return v >= rules.Min && v <= rules.Max }

func validate(r SubjectScoreRecord, rules RuleSet, ok func(float64) bool) []ValidationError {
	var out []ValidationError
	for _, name := range subjectNames(r) {
		s := r[name]
		for _, f := range []struct {
			label string
			v     float64
		}{{"commonTest", s.CommonTest}, {"secondTest", s.SecondTest}} {
			if !ok(f.v) {
				out = append(out, ValidationError{
					Type:        ErrorTypeValidation,
					Code:        CodeOutOfRange,
					Message:     fmt.Sprintf("%s %s=%g is outside %g..%g", name, f.label, f.v, rules.Min, rules.Max),
					SubjectName: name,
				})
			}
		}
	}
	return out
}
