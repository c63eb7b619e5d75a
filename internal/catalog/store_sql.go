package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mind-engage/examinfo/internal/score"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) PutAdmission(ctx context.Context, a Admission) error {
	if a.ID == "" {
		return errors.New("admission id required")
	}
	if a.Subjects == nil {
		a.Subjects = score.SubjectScoreRecord{}
	}
	sj, err := json.Marshal(a.Subjects)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO admissions (
			id, university_id, university_name, prefecture, university_type,
			department_id, department_name, major_id, major_name,
			schedule_id, schedule_name, subjects_json, total, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (id) DO UPDATE SET
			university_id=EXCLUDED.university_id, university_name=EXCLUDED.university_name,
			prefecture=EXCLUDED.prefecture, university_type=EXCLUDED.university_type,
			department_id=EXCLUDED.department_id, department_name=EXCLUDED.department_name,
			major_id=EXCLUDED.major_id, major_name=EXCLUDED.major_name,
			schedule_id=EXCLUDED.schedule_id, schedule_name=EXCLUDED.schedule_name,
			subjects_json=EXCLUDED.subjects_json, total=EXCLUDED.total, updated_at=EXCLUDED.updated_at`,
		a.ID, a.UniversityID, a.UniversityName, a.Prefecture, a.UniversityType,
		a.DepartmentID, a.DepartmentName, a.MajorID, a.MajorName,
		a.ScheduleID, a.ScheduleName, string(sj), score.Total(a.Subjects), time.Now().Unix())
	return err
}

func (s *SQLStore) GetAdmission(ctx context.Context, id string) (Admission, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, university_id, university_name, prefecture, university_type,
			department_id, department_name, major_id, major_name,
			schedule_id, schedule_name, subjects_json, updated_at
		FROM admissions WHERE id=$1`, id)
	var a Admission
	var sjson string
	if err := row.Scan(&a.ID, &a.UniversityID, &a.UniversityName, &a.Prefecture, &a.UniversityType,
		&a.DepartmentID, &a.DepartmentName, &a.MajorID, &a.MajorName,
		&a.ScheduleID, &a.ScheduleName, &sjson, &a.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Admission{}, ErrNotFound
		}
		return Admission{}, err
	}
	if err := json.Unmarshal([]byte(sjson), &a.Subjects); err != nil {
		return Admission{}, fmt.Errorf("decode subjects for %s: %w", id, err)
	}
	return a, nil
}

func (s *SQLStore) SearchAdmissions(ctx context.Context, opts SearchOpts) ([]AdmissionSummary, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if q := strings.TrimSpace(opts.Q); q != "" {
		p := arg("%" + q + "%")
		where = append(where, "(university_name LIKE "+p+" OR department_name LIKE "+p+" OR major_name LIKE "+p+")")
	}
	if opts.Prefecture != "" {
		where = append(where, "prefecture = "+arg(opts.Prefecture))
	}
	if opts.Schedule != "" {
		where = append(where, "schedule_name = "+arg(opts.Schedule))
	}

	query := `SELECT id, university_name, prefecture, department_name, major_name, schedule_name, total FROM admissions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY university_name, department_name, major_name, schedule_name"
	query += " LIMIT " + arg(opts.limit()) + " OFFSET " + arg(max(opts.Offset, 0))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []AdmissionSummary{}
	for rows.Next() {
		var r AdmissionSummary
		if err := rows.Scan(&r.ID, &r.UniversityName, &r.Prefecture, &r.DepartmentName, &r.MajorName, &r.ScheduleName, &r.Total); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) ListUniversities(ctx context.Context) ([]University, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT university_id, MAX(university_name), MAX(prefecture), MAX(university_type), COUNT(*)
		  FROM admissions
		 GROUP BY university_id
		 ORDER BY MAX(university_name)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []University{}
	for rows.Next() {
		var u University
		if err := rows.Scan(&u.ID, &u.Name, &u.Prefecture, &u.Type, &u.Admissions); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *SQLStore) CountAdmissions(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admissions`).Scan(&n)
	return n, err
}
