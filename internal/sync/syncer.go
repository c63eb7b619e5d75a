package syncx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mind-engage/examinfo/internal/catalog"
	"github.com/mind-engage/examinfo/internal/upstream"
)

// Source is the upstream API as the Syncer sees it.
type Source interface {
	ListAdmissions(ctx context.Context, page int) (upstream.Page, error)
	GetAdmission(ctx context.Context, id string) (catalog.Admission, error)
}

type Appender interface {
	Append(ctx context.Context, e Event) error
}

type Report struct {
	RunID      string        `json:"run_id"`
	Pages      int           `json:"pages"`
	Imported   int           `json:"imported"`
	Skipped    int           `json:"skipped"`
	Duration   time.Duration `json:"duration_ns"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
}

type Syncer struct {
	Source      Source
	Store       catalog.Store
	Events      Appender // optional
	Concurrency int
	Log         *zap.Logger
	Now         func() time.Time
}

func New(src Source, store catalog.Store, events Appender, concurrency int, log *zap.Logger) *Syncer {
	if concurrency <= 0 {
		concurrency = 4
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Syncer{Source: src, Store: store, Events: events, Concurrency: concurrency, Log: log, Now: time.Now}
}

// Run pages through the upstream listing and upserts every admission's
// detail. Admissions that vanished upstream between listing and fetch are
// skipped; any other failure aborts the run.
func (s *Syncer) Run(ctx context.Context) (Report, error) {
	rep := Report{RunID: uuid.NewString(), StartedAt: s.Now()}
	log := s.Log.With(zap.String("run_id", rep.RunID))
	log.Info("sync started")

	var imported, skipped atomic.Int64
	seen := map[int]bool{}
	for page := 1; page > 0 && !seen[page]; {
		seen[page] = true
		p, err := s.Source.ListAdmissions(ctx, page)
		if err != nil {
			return rep, fmt.Errorf("sync page %d: %w", page, err)
		}
		rep.Pages++

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.Concurrency)
		for _, item := range p.Items {
			id := item.ID
			if id == "" {
				skipped.Add(1)
				continue
			}
			g.Go(func() error {
				a, err := s.Source.GetAdmission(gctx, id)
				if upstream.IsNotFound(err) {
					log.Warn("admission vanished upstream", zap.String("admission_id", id))
					skipped.Add(1)
					return nil
				}
				if err != nil {
					return fmt.Errorf("fetch %s: %w", id, err)
				}
				if err := Import(gctx, s.Store, s.Events, a, rep.RunID); err != nil {
					return err
				}
				imported.Add(1)
				log.Debug("admission imported", zap.String("admission_id", id))
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			rep.Imported, rep.Skipped = int(imported.Load()), int(skipped.Load())
			log.Error("sync failed", zap.Error(err), zap.Int("imported", rep.Imported))
			return rep, err
		}
		page = p.NextPage
	}

	rep.Imported, rep.Skipped = int(imported.Load()), int(skipped.Load())
	rep.FinishedAt = s.Now()
	rep.Duration = rep.FinishedAt.Sub(rep.StartedAt)
	if s.Events != nil {
		data, _ := json.Marshal(rep)
		if err := s.Events.Append(ctx, Event{Type: EventSyncCompleted, Key: rep.RunID, DataJSON: string(data)}); err != nil {
			return rep, fmt.Errorf("sync event: %w", err)
		}
	}
	log.Info("sync finished",
		zap.Int("pages", rep.Pages),
		zap.Int("imported", rep.Imported),
		zap.Int("skipped", rep.Skipped),
		zap.Duration("duration", rep.Duration))
	return rep, nil
}

// Import upserts a and, when events is non-nil, records it in the event log
// under source (a sync run id or an upload id).
func Import(ctx context.Context, store catalog.Store, events Appender, a catalog.Admission, source string) error {
	if a.ID == "" {
		return errors.New("import: admission id required")
	}
	if err := store.PutAdmission(ctx, a); err != nil {
		return fmt.Errorf("store %s: %w", a.ID, err)
	}
	if events == nil {
		return nil
	}
	data, _ := json.Marshal(map[string]any{
		"source":     source,
		"university": a.UniversityName,
		"schedule":   a.ScheduleName,
		"subjects":   len(a.Subjects),
	})
	if err := events.Append(ctx, Event{Type: EventAdmissionImported, Key: a.ID, DataJSON: string(data)}); err != nil {
		return fmt.Errorf("event %s: %w", a.ID, err)
	}
	return nil
}
