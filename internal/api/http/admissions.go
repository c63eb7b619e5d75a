package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/examinfo/internal/cache"
	"github.com/mind-engage/examinfo/internal/catalog"
	"github.com/mind-engage/examinfo/internal/score"
)

// GET /admissions?q=...&prefecture=...&schedule=...&limit=50&offset=0
func SearchAdmissionsHandler(store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		list, err := store.SearchAdmissions(r.Context(), catalog.SearchOpts{
			Q:          strings.TrimSpace(q.Get("q")),
			Prefecture: strings.TrimSpace(q.Get("prefecture")),
			Schedule:   strings.TrimSpace(q.Get("schedule")),
			Limit:      parseIntDefault(q.Get("limit"), 50),
			Offset:     parseIntDefault(q.Get("offset"), 0),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

type admissionDetail struct {
	catalog.Admission
	Total          float64                 `json:"total"`
	CategoryTotals map[string]float64      `json:"category_totals"`
	Validation     []score.ValidationError `json:"validation"`
	// Labels holds the short tab label of subjects that have one ("英語R" → "R").
	Labels map[string]string `json:"labels"`
}

func subjectLabels(r score.SubjectScoreRecord) map[string]string {
	out := map[string]string{}
	for name := range r {
		if l := score.DisplayName(name); l != "" {
			out[name] = l
		}
	}
	return out
}

// GET /admissions/{id}
func GetAdmissionHandler(store catalog.Store, svc *score.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := store.GetAdmission(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		v := svc.Validate(a.Subjects)
		if v == nil {
			v = []score.ValidationError{}
		}
		writeJSON(w, http.StatusOK, admissionDetail{
			Admission:      a,
			Total:          score.Total(a.Subjects),
			CategoryTotals: score.CategoryTotals(a.Subjects),
			Validation:     v,
			Labels:         subjectLabels(a.Subjects),
		})
	}
}

type chartResponse struct {
	AdmissionID string `json:"admission_id"`
	By          string `json:"by"`
	score.Chart
}

const (
	chartByCategory = "category"
	chartByTest     = "test"
)

// chartCacheKey scopes charts by the service's rules so deployments with
// different rule files never share an entry.
func chartCacheKey(svc *score.Service, id, by string) string {
	return "chart:" + svc.Fingerprint() + ":" + id + ":" + by
}

// GET /admissions/{id}/chart?by=category|test
func ChartHandler(store catalog.Store, svc *score.Service, c cache.Cache, ttl time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		by := r.URL.Query().Get("by")
		switch by {
		case "":
			by = chartByCategory
		case chartByCategory, chartByTest:
		default:
			http.Error(w, "by must be category or test", http.StatusBadRequest)
			return
		}

		key := chartCacheKey(svc, id, by)
		if b, err := c.Get(r.Context(), key); err == nil {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Cache", "hit")
			_, _ = w.Write(b)
			return
		}

		a, err := store.GetAdmission(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		resp := chartResponse{AdmissionID: id, By: by}
		if by == chartByTest {
			resp.Chart = svc.ChartByTestType(a.Subjects)
		} else {
			resp.Chart = svc.Chart(a.Subjects)
		}
		b, err := jsonLine(resp)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = c.Set(r.Context(), key, b, ttl)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "miss")
		_, _ = w.Write(b)
	}
}

// invalidateCharts drops cached charts of the given admissions.
func invalidateCharts(ctx context.Context, c cache.Cache, svc *score.Service, ids ...string) error {
	keys := make([]string, 0, 2*len(ids))
	for _, id := range ids {
		keys = append(keys, chartCacheKey(svc, id, chartByCategory), chartCacheKey(svc, id, chartByTest))
	}
	return c.Delete(ctx, keys...)
}

// GET /universities
func ListUniversitiesHandler(store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListUniversities(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}
