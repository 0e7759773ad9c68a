package scheduler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/speedial/speedial/internal/backup"
	"github.com/speedial/speedial/internal/githubsync"
	"github.com/speedial/speedial/internal/logger"
	"github.com/speedial/speedial/internal/store/sqlite"
)

func newTestCodec(t *testing.T) *backup.Codec {
	t.Helper()
	db, err := sqlite.New(filepath.Join(t.TempDir(), "sched.db"))
	if err != nil {
		t.Fatalf("sqlite.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return backup.NewCodec(sqlite.NewGroupStore(db), sqlite.NewDialStore(db), logger.New("error", false))
}

func TestStartUnconfigured(t *testing.T) {
	codec := newTestCodec(t)
	syncer := githubsync.NewSyncer(codec, &githubsync.Config{}, logger.New("error", false))

	ds := NewDailySyncer(syncer, logger.New("error", false), nil)
	if err := ds.Start(context.Background()); !errors.Is(err, githubsync.ErrNotConfigured) {
		t.Errorf("Start() error = %v, want ErrNotConfigured", err)
	}
}

func TestManualTriggerRunsUpload(t *testing.T) {
	var puts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			http.NotFound(w, r)
		case http.MethodPut:
			puts.Add(1)
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"content":{"sha":"new"}}`))
		}
	}))
	defer srv.Close()

	codec := newTestCodec(t)
	cfg := &githubsync.Config{Token: "tok", Owner: "someone", Repo: "backups"}
	syncer := githubsync.NewSyncer(codec, cfg, logger.New("error", false),
		githubsync.WithBaseURL(srv.URL))

	trigger := make(chan struct{}, 1)
	ds := NewDailySyncer(syncer, logger.New("error", false), trigger)
	if err := ds.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer ds.Stop()

	trigger <- struct{}{}

	deadline := time.After(3 * time.Second)
	for puts.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("upload never ran after manual trigger")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
