package catalog

import "github.com/mind-engage/examinfo/internal/score"

// Admission is one university / department / major / schedule combination
// together with how its entrance-exam points are allocated per subject.
type Admission struct {
	ID string `json:"id"`

	UniversityID   string `json:"university_id"`
	UniversityName string `json:"university_name"`
	Prefecture     string `json:"prefecture,omitempty"`
	UniversityType string `json:"university_type,omitempty"` // national|public|private

	DepartmentID   string `json:"department_id"`
	DepartmentName string `json:"department_name"`
	MajorID        string `json:"major_id,omitempty"`
	MajorName      string `json:"major_name,omitempty"`

	ScheduleID   string `json:"schedule_id"`
	ScheduleName string `json:"schedule_name"` // 前期|中期|後期

	Subjects score.SubjectScoreRecord `json:"subjects"`

	UpdatedAt int64 `json:"updated_at,omitempty"`
}

// AdmissionSummary is a search result row.
type AdmissionSummary struct {
	ID             string  `json:"id"`
	UniversityName string  `json:"university_name"`
	Prefecture     string  `json:"prefecture,omitempty"`
	DepartmentName string  `json:"department_name"`
	MajorName      string  `json:"major_name,omitempty"`
	ScheduleName   string  `json:"schedule_name"`
	Total          float64 `json:"total"`
}

type University struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Prefecture string `json:"prefecture,omitempty"`
	Type       string `json:"type,omitempty"`
	Admissions int    `json:"admissions"`
}

func (a Admission) Summary() AdmissionSummary {
	return AdmissionSummary{
		ID:             a.ID,
		UniversityName: a.UniversityName,
		Prefecture:     a.Prefecture,
		DepartmentName: a.DepartmentName,
		MajorName:      a.MajorName,
		ScheduleName:   a.ScheduleName,
		Total:          score.Total(a.Subjects),
	}
}
