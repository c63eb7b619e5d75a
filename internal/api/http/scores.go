package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/mind-engage/examinfo/internal/cache"
	"github.com/mind-engage/examinfo/internal/score"
	"github.com/mind-engage/examinfo/internal/upstream"
)

// cacheVerdicts adapts a cache.Cache to score.VerdictCache for one request.
type cacheVerdicts struct {
	ctx context.Context
	c   cache.Cache
	ttl time.Duration
}

func (v cacheVerdicts) Lookup(key string) (bool, bool) {
	b, err := v.c.Get(v.ctx, key)
	if err != nil || len(b) != 1 {
		return false, false
	}
	return b[0] == '1', true
}

func (v cacheVerdicts) Store(key string, inRange bool) {
	b := []byte{'0'}
	if inRange {
		b[0] = '1'
	}
	_ = v.c.Set(v.ctx, key, b, v.ttl)
}

type validateReq struct {
	Subjects map[string]score.SubjectScore `json:"subjects"`
}

type validateResp struct {
	Valid  bool                    `json:"valid"`
	Total  float64                 `json:"total"`
	Errors []score.ValidationError `json:"errors"`
}

// POST /scores/validate  {"subjects": {"英語R": {"commonTest": 40, "secondTest": 60}}}
func ValidateScoresHandler(svc *score.Service, c cache.Cache, ttl time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req validateReq
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		rec := upstream.NormalizeSubjects(req.Subjects)
		errs := svc.ValidateCached(rec, cacheVerdicts{ctx: r.Context(), c: c, ttl: ttl})
		if errs == nil {
			errs = []score.ValidationError{}
		}
		writeJSON(w, http.StatusOK, validateResp{Valid: len(errs) == 0, Total: score.Total(rec), Errors: errs})
	}
}
