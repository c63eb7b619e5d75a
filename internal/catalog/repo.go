package catalog

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("admission not found")

type SearchOpts struct {
	Q          string // matches university, department or major name
	Prefecture string
	Schedule   string // schedule name, e.g. 前期
	Limit      int
	Offset     int
}

type Store interface {
	PutAdmission(ctx context.Context, a Admission) error
	GetAdmission(ctx context.Context, id string) (Admission, error)
	SearchAdmissions(ctx context.Context, opts SearchOpts) ([]AdmissionSummary, error)
	ListUniversities(ctx context.Context) ([]University, error)
	CountAdmissions(ctx context.Context) (int, error)
}

func (o SearchOpts) limit() int {
	switch {
	case o.Limit <= 0:
		return 50
	case o.Limit > 500:
		return 500
	}
	return o.Limit
}
