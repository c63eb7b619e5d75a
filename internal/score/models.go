package score

import (
	"encoding/json"
	"math"
)

// SubjectScore is the points a subject carries in the common test (共通テスト)
// and the university's own second-stage test (二次試験).
type SubjectScore struct {
	CommonTest float64 `json:"commonTest"`
	SecondTest float64 `json:"secondTest"`
}

// Sum returns commonTest + secondTest.
func (s SubjectScore) Sum() float64 { return s.CommonTest + s.SecondTest }

// SubjectScoreRecord maps a subject name (e.g. "英語R", "数学") to its scores.
type SubjectScoreRecord map[string]SubjectScore

// ChartPoint is a single donut/pie slice.
// Percentage is on a 0..100 scale and is not guarded against a zero total.
type ChartPoint struct {
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}

// MarshalJSON writes non-finite percentages as null; encoding/json refuses
// to encode ±Inf and NaN.
func (p ChartPoint) MarshalJSON() ([]byte, error) {
	out := struct {
		Name       string   `json:"name"`
		Value      float64  `json:"value"`
		Percentage *float64 `json:"percentage"`
	}{Name: p.Name, Value: p.Value}
	if !math.IsInf(p.Percentage, 0) && !math.IsNaN(p.Percentage) {
		pct := p.Percentage
		out.Percentage = &pct
	}
	return json.Marshal(out)
}

// Chart is the ordered output handed to the rendering layer.
type Chart struct {
	Total  float64      `json:"total"`
	Points []ChartPoint `json:"points"`
}
