package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/examinfo/internal/score"
)

const tokyoJSON = `{
  "id": "tokyo-sci-1-zenki",
  "universityId": "tokyo", "universityName": "東京大学", "prefecture": "東京都",
  "departmentId": "sci", "departmentName": "理科一類",
  "scheduleId": "zenki", "scheduleName": "前期",
  "subjects": {
    "英語Ｒ": {"commonTest": 40, "secondTest": 60},
    "英語L": {"commonTest": 20, "secondTest": 0},
    "数学": {"commonTest": 50, "secondTest": 50}
  }
}`

func newAPI(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var flaky atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/admissions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("page") {
		case "1":
			_, _ = w.Write([]byte(`{"items":[` + tokyoJSON + `],"nextPage":2}`))
		default:
			_, _ = w.Write([]byte(`{"items":[{"id":"kyoto-eng-zenki","universityId":"kyoto","universityName":"京都大学"}],"nextPage":0}`))
		}
	})
	mux.HandleFunc("/api/admissions/tokyo-sci-1-zenki", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(tokyoJSON))
	})
	mux.HandleFunc("/api/admissions/flaky", func(w http.ResponseWriter, r *http.Request) {
		if flaky.Add(1) < 3 {
			http.Error(w, "try later", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"universityName":"大阪大学","subjects":{}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &flaky
}

func TestListAdmissions(t *testing.T) {
	srv, _ := newAPI(t)
	c := New(srv.URL+"/api/", WithBackoff(time.Millisecond))

	p, err := c.ListAdmissions(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, p.NextPage)
	require.Len(t, p.Items, 1)
	a := p.Items[0]
	assert.Equal(t, "東京大学", a.UniversityName)
	assert.Equal(t, 220.0, score.Total(a.Subjects))
	// full-width Ｒ folded to R
	assert.Equal(t, score.SubjectScore{CommonTest: 40, SecondTest: 60}, a.Subjects["英語R"])
	assert.Equal(t, 120.0, score.CategoryTotal(a.Subjects, "英語"))

	p, err = c.ListAdmissions(context.Background(), 2)
	require.NoError(t, err)
	assert.Zero(t, p.NextPage)
}

func TestGetAdmissionRetries(t *testing.T) {
	srv, flaky := newAPI(t)
	c := New(srv.URL+"/api", WithBackoff(time.Millisecond), WithRetries(2))

	a, err := c.GetAdmission(context.Background(), "flaky")
	require.NoError(t, err)
	assert.Equal(t, "flaky", a.ID)
	assert.Equal(t, "大阪大学", a.UniversityName)
	assert.EqualValues(t, 3, flaky.Load())
}

func TestGetAdmissionGivesUp(t *testing.T) {
	srv, flaky := newAPI(t)
	c := New(srv.URL+"/api", WithBackoff(time.Millisecond), WithRetries(1))

	_, err := c.GetAdmission(context.Background(), "flaky")
	require.Error(t, err)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusServiceUnavailable, se.Status)
	assert.EqualValues(t, 2, flaky.Load())
}

func TestGetAdmissionNotFoundNoRetry(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := New(srv.URL, WithBackoff(time.Millisecond)).GetAdmission(context.Background(), "nope")
	assert.True(t, IsNotFound(err))
	assert.EqualValues(t, 1, hits.Load())
}

func TestClientCredentials(t *testing.T) {
	token := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.Form.Get("grant_type"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-123", "token_type": "bearer", "expires_in": 3600,
		})
	}))
	defer token.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(tokyoJSON))
	}))
	defer api.Close()

	c := New(api.URL, WithTimeout(5*time.Second), WithClientCredentials(token.URL, "id", "secret"))
	a, err := c.GetAdmission(context.Background(), "tokyo-sci-1-zenki")
	require.NoError(t, err)
	assert.Equal(t, "tokyo-sci-1-zenki", a.ID)
}

func TestNormalizeSubjectsMergesCollisions(t *testing.T) {
	got := NormalizeSubjects(map[string]score.SubjectScore{
		"英語Ｒ":  {CommonTest: 10},
		"英語R":  {SecondTest: 5},
		" 数学 ": {CommonTest: 1},
	})
	assert.Equal(t, score.SubjectScoreRecord{
		"英語R": {CommonTest: 10, SecondTest: 5},
		"数学":  {CommonTest: 1},
	}, got)
}
