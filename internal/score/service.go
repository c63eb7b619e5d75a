package score

import (
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// SecondSuffix marks second-stage slices when a chart splits subjects by
// test. The common-test suffix is built from the service's common token.
const SecondSuffix = "(二次)"

// Service bundles the subject order, common token and rule set so callers
// receive one configured value instead of reaching for package globals.
type Service struct {
	order  []string
	common string
	rules  RuleSet
}

type Option func(*Service)

// WithCommonToken overrides the substring that marks common-test entries.
func WithCommonToken(tok string) Option { return func(s *Service) { s.common = tok } }

// NewService returns a Service. A nil order falls back to SubjectOrder.
func NewService(order []string, rules RuleSet, opts ...Option) *Service {
	if order == nil {
		order = SubjectOrder
	}
	s := &Service{order: slices.Clone(order), common: CommonToken, rules: rules}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) Rules() RuleSet { return s.rules }

// Chart builds one slice per category, each annotated with its share of the
// grand total, in display order.
func (s *Service) Chart(r SubjectScoreRecord) Chart {
	total := Total(r)
	totals := CategoryTotals(r)
	cats := make([]string, 0, len(totals))
	for c := range totals {
		cats = append(cats, c)
	}
	slices.Sort(cats)

	points := make([]ChartPoint, 0, len(cats))
	for _, c := range cats {
		points = append(points, ToPieData(PieInput{Value: totals[c], TotalScore: total, Name: c}).Data)
	}
	return Chart{Total: total, Points: s.Sort(points)}
}

// ChartByTestType builds two slices per subject, "<subject>(共通)" and
// "<subject>(二次)", so the common-test share is drawn first.
func (s *Service) ChartByTestType(r SubjectScoreRecord) Chart {
	total := Total(r)
	points := make([]ChartPoint, 0, 2*len(r))
	for _, name := range subjectNames(r) {
		sc := r[name]
		points = append(points,
			ToPieData(PieInput{Value: sc.CommonTest, TotalScore: total, Name: name + "(" + s.common + ")"}).Data,
			ToPieData(PieInput{Value: sc.SecondTest, TotalScore: total, Name: name + SecondSuffix}).Data,
		)
	}
	return Chart{Total: total, Points: s.Sort(points)}
}

// Fingerprint identifies the ordering and validation rules of s. Two
// services with the same fingerprint produce identical charts and verdicts.
func (s *Service) Fingerprint() string {
	var b strings.Builder
	b.WriteString(strings.Join(s.order, "\x1f"))
	b.WriteString("\x1e" + s.common)
	b.WriteString("\x1e" + s.rules.Name + ":" + fmtFloat(s.rules.Min) + ":" + fmtFloat(s.rules.Max))
	return strconv.FormatUint(xxhash.Sum64String(b.String()), 36)
}

// Sort orders points with the service's subject order and common token.
func (s *Service) Sort(points []ChartPoint) []ChartPoint {
	return sortEntries(points, s.order, s.common)
}

// Validate checks r against the service's rule set.
func (s *Service) Validate(r SubjectScoreRecord) []ValidationError {
	return Validate(r, s.rules)
}

// VerdictCache memoises whether a value lies inside a rule set's range,
// keyed by CacheKey.
type VerdictCache interface {
	Lookup(key string) (inRange, ok bool)
	Store(key string, inRange bool)
}

// ValidateCached is Validate with per-value verdicts looked up in vc first.
// Values CacheKey rejects are checked directly.
func (s *Service) ValidateCached(r SubjectScoreRecord, vc VerdictCache) []ValidationError {
	return validate(r, s.rules, func(v float64) bool {
		key, err := s.CacheKey(v)
		if err != nil {
			return inRange(v, s.rules)
		}
		if ok, hit := vc.Lookup(key); hit {
			return ok
		}
		ok := inRange(v, s.rules)
		vc.Store(key, ok)
		return ok
	})
}

// CacheKey builds a validation cache key for value under the service's rules.
func (s *Service) CacheKey(value float64) (string, error) {
	rules := s.rules
	return CacheKey(value, &rules)
}
