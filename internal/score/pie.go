package score

// PieInput is one slice before percentages are known.
type PieInput struct {
	Value      float64 `json:"value"`
	TotalScore float64 `json:"totalScore"`
	Name       string  `json:"name"`
}

// PieData wraps the chart point the way chart components consume it.
type PieData struct {
	Data ChartPoint `json:"data"`
}

// Percentage returns value/total*100. A zero total yields +Inf (or NaN for
// 0/0); callers rendering the value must handle that.
func Percentage(value, total float64) float64 {
	return value / total * 100
}

// ToPieData annotates in with its percentage of in.TotalScore.
func ToPieData(in PieInput) PieData {
	return PieData{Data: ChartPoint{
		Name:       in.Name,
		Value:      in.Value,
		Percentage: Percentage(in.Value, in.TotalScore),
	}}
}
