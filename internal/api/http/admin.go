package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mind-engage/examinfo/internal/cache"
	"github.com/mind-engage/examinfo/internal/catalog"
	"github.com/mind-engage/examinfo/internal/score"
	"github.com/mind-engage/examinfo/internal/storage"
	syncx "github.com/mind-engage/examinfo/internal/sync"
	"github.com/mind-engage/examinfo/internal/upstream"
)

type EventLog interface {
	syncx.Appender
	List(ctx context.Context, typ string, limit int) ([]syncx.Event, error)
}

type SyncRunner interface {
	Run(ctx context.Context) (syncx.Report, error)
}

const (
	maxImportBytes     = 32 << 20
	defaultSyncTimeout = 30 * time.Minute
)

type importResp struct {
	UploadID string   `json:"upload_id"`
	BlobKey  string   `json:"blob_key"`
	BlobURL  string   `json:"blob_url,omitempty"`
	Imported int      `json:"imported"`
	IDs      []string `json:"ids"`
}

// POST /admin/import  body: JSON array of admissions.
// The raw body is kept in the blob store before anything is upserted.
func ImportHandler(store catalog.Store, svc *score.Service, events EventLog, bs storage.BlobStore, c cache.Cache, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
		if err != nil {
			http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
			return
		}
		var list []catalog.Admission
		if err := json.Unmarshal(raw, &list); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}

		uploadID := uuid.NewString()
		key, err := bs.Put(storage.ImportKey(uploadID, time.Now()), bytes.NewReader(raw))
		if err != nil {
			http.Error(w, "store error: "+err.Error(), http.StatusInternalServerError)
			return
		}
		resp := importResp{UploadID: uploadID, BlobKey: key, IDs: make([]string, 0, len(list))}
		resp.BlobURL, _ = bs.SignedURL(key)

		// Charts of everything upserted so far go stale, even when a later
		// admission in the batch fails.
		defer func() {
			if err := invalidateCharts(context.WithoutCancel(r.Context()), c, svc, resp.IDs...); err != nil {
				log.Warn("chart cache invalidation failed", zap.Error(err))
			}
		}()
		for _, a := range list {
			if a.ID == "" {
				a.ID = uuid.NewString()
			}
			a.Subjects = upstream.NormalizeSubjects(a.Subjects)
			if err := syncx.Import(r.Context(), store, events, a, uploadID); err != nil {
				log.Error("import failed", zap.String("upload_id", uploadID), zap.String("admission_id", a.ID), zap.Error(err))
				writeError(w, err)
				return
			}
			resp.IDs = append(resp.IDs, a.ID)
		}
		resp.Imported = len(resp.IDs)
		log.Info("import finished", zap.String("upload_id", uploadID), zap.Int("imported", resp.Imported))
		writeJSON(w, http.StatusOK, resp)
	}
}

// POST /admin/sync[?wait=false]
//
// The run is detached from the request so neither a client disconnect nor
// the router timeout cuts it short; timeout bounds it instead. With
// wait=false the handler answers 202 at once and the report is only logged.
func SyncHandler(s SyncRunner, timeout time.Duration, log *zap.Logger) http.HandlerFunc {
	if timeout <= 0 {
		timeout = defaultSyncTimeout
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if s == nil {
			http.Error(w, "sync not configured", http.StatusServiceUnavailable)
			return
		}
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), timeout)

		if r.URL.Query().Get("wait") == "false" {
			go func() {
				defer cancel()
				if _, err := s.Run(ctx); err != nil {
					log.Error("background sync failed", zap.Error(err))
				}
			}()
			writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
			return
		}

		defer cancel()
		rep, err := s.Run(ctx)
		if err != nil {
			http.Error(w, "sync: "+err.Error(), http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusOK, rep)
	}
}

// GET /admin/events?type=AdmissionImported&limit=100
func ListEventsHandler(events EventLog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := events.List(r.Context(), r.URL.Query().Get("type"), parseIntDefault(r.URL.Query().Get("limit"), 100))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}
