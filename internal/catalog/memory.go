package catalog

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryStore struct {
	mu         sync.RWMutex
	admissions map[string]Admission
}

// NewInMemoryStore is used offline and in tests.
func NewInMemoryStore() Store {
	return &memoryStore{admissions: map[string]Admission{}}
}

func (m *memoryStore) PutAdmission(_ context.Context, a Admission) error {
	if a.ID == "" {
		return errors.New("admission id required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a.UpdatedAt = time.Now().Unix()
	m.admissions[a.ID] = a
	return nil
}

func (m *memoryStore) GetAdmission(_ context.Context, id string) (Admission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.admissions[id]
	if !ok {
		return Admission{}, ErrNotFound
	}
	return a, nil
}

func (m *memoryStore) SearchAdmissions(_ context.Context, opts SearchOpts) ([]AdmissionSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var hits []Admission
	for _, a := range m.admissions {
		if opts.Q != "" && !strings.Contains(a.UniversityName, opts.Q) &&
			!strings.Contains(a.DepartmentName, opts.Q) && !strings.Contains(a.MajorName, opts.Q) {
			continue
		}
		if opts.Prefecture != "" && a.Prefecture != opts.Prefecture {
			continue
		}
		if opts.Schedule != "" && a.ScheduleName != opts.Schedule {
			continue
		}
		hits = append(hits, a)
	}
	sort.Slice(hits, func(i, j int) bool { return lessAdmission(hits[i], hits[j]) })

	out := []AdmissionSummary{}
	for i := max(opts.Offset, 0); i < len(hits) && len(out) < opts.limit(); i++ {
		out = append(out, hits[i].Summary())
	}
	return out, nil
}

func (m *memoryStore) ListUniversities(_ context.Context) ([]University, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	byID := map[string]*University{}
	for _, a := range m.admissions {
		u, ok := byID[a.UniversityID]
		if !ok {
			u = &University{ID: a.UniversityID, Name: a.UniversityName, Prefecture: a.Prefecture, Type: a.UniversityType}
			byID[a.UniversityID] = u
		}
		u.Admissions++
	}
	out := make([]University, 0, len(byID))
	for _, u := range byID {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memoryStore) CountAdmissions(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.admissions), nil
}

// lessAdmission matches the SQL store's ORDER BY.
func lessAdmission(a, b Admission) bool {
	if a.UniversityName != b.UniversityName {
		return a.UniversityName < b.UniversityName
	}
	if a.DepartmentName != b.DepartmentName {
		return a.DepartmentName < b.DepartmentName
	}
	if a.MajorName != b.MajorName {
		return a.MajorName < b.MajorName
	}
	return a.ScheduleName < b.ScheduleName
}
