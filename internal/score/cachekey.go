package score

import (
	"errors"
	"math"
	"strconv"
)

var (
	ErrNonFiniteValue = errors.New("value must be finite")
	ErrMissingRuleSet = errors.New("rule set is required")
)

// KeyError is returned by CacheKey for inputs it cannot build a key from.
type KeyError struct {
	Field string
	Err   error
}

func (e *KeyError) Error() string { return "score: cache key: " + e.Field + ": " + e.Err.Error() }
func (e *KeyError) Unwrap() error { return e.Err }

// CacheKey builds the key under which the validation result for value under
// rules is memoised.
func CacheKey(value float64, rules *RuleSet) (string, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "", &KeyError{Field: "value", Err: ErrNonFiniteValue}
	}
	if rules == nil {
		return "", &KeyError{Field: "rules", Err: ErrMissingRuleSet}
	}
	return "score-validation:" + rules.Name +
		":" + fmtFloat(rules.Min) + ":" + fmtFloat(rules.Max) +
		":" + fmtFloat(value), nil
}

func fmtFloat(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }
