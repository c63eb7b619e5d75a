package score

import "sort"

// Total sums commonTest + secondTest over every subject in r.
func Total(r SubjectScoreRecord) float64 {
	total := 0.0
	for _, s := range r {
		total += s.Sum()
	}
	return total
}

// CategoryTotal sums the subjects of r whose CategoryOf equals category.
func CategoryTotal(r SubjectScoreRecord, category string) float64 {
	total := 0.0
	for name, s := range r {
		if CategoryOf(name) == category {
			total += s.Sum()
		}
	}
	return total
}

// CategoryTotals returns the total for every category present in r.
func CategoryTotals(r SubjectScoreRecord) map[string]float64 {
	out := make(map[string]float64, len(r))
	for name, s := range r {
		out[CategoryOf(name)] += s.Sum()
	}
	return out
}

// subjectNames returns the keys of r in lexical order so that map iteration
// never leaks into chart ordering.
func subjectNames(r SubjectScoreRecord) []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
