package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/andreaessedj/analyzer/internal/domain"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestTrackByID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/tracks" {
			t.Errorf("path=%q", r.URL.Path)
		}
		if got := r.URL.Query().Get("id"); got != "eq.track-1" {
			t.Errorf("id filter=%q", got)
		}
		if got := r.Header.Get("apikey"); got != "svc-key" {
			t.Errorf("apikey header=%q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer svc-key" {
			t.Errorf("authorization header=%q", got)
		}
		if got := r.Header.Get("Accept"); got != "application/vnd.pgrst.object+json" {
			t.Errorf("accept header=%q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"id":       "track-1",
			"title":    "Night Drive",
			"file_url": "https://cdn.example.com/night-drive.wav",
		})
	}))
	defer ts.Close()

	c := New(ts.URL, "svc-key", testLogger())
	track, err := c.TrackByID(context.Background(), "track-1")
	if err != nil {
		t.Fatalf("track lookup: %v", err)
	}
	if track.ID != "track-1" || track.FileURL != "https://cdn.example.com/night-drive.wav" {
		t.Fatalf("track row mismatch: %+v", track)
	}
}

func TestTrackByIDNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"JSON object requested, multiple (or no) rows returned"}`, http.StatusNotAcceptable)
	}))
	defer ts.Close()

	c := New(ts.URL, "svc-key", testLogger())
	if _, err := c.TrackByID(context.Background(), "ghost"); !errors.Is(err, domain.ErrTrackNotFound) {
		t.Fatalf("got err=%v want ErrTrackNotFound", err)
	}
}

func TestTrackByIDServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := New(ts.URL, "svc-key", testLogger())
	if _, err := c.TrackByID(context.Background(), "track-1"); !errors.Is(err, domain.ErrRetrieval) {
		t.Fatalf("got err=%v want ErrRetrieval", err)
	}
}

func TestInsertFeedback(t *testing.T) {
	var row map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/rest/v1/feedback" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Prefer"); got != "return=minimal" {
			t.Errorf("prefer header=%q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
			t.Errorf("decode insert body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer ts.Close()

	rec := domain.FeedbackRecord{
		TrackID:        "track-1",
		Loudness:       0.2,
		Peak:           0.8,
		SpectralSpread: 18,
		FreqBalance:    domain.FreqBalance{Low: 1, Mid: 2, High: 0.5},
		Notes:          "mix ok on average",
	}
	c := New(ts.URL, "svc-key", testLogger())
	if err := c.InsertFeedback(context.Background(), rec); err != nil {
		t.Fatalf("insert feedback: %v", err)
	}

	if row["track_id"] != "track-1" || row["ai_notes"] != "mix ok on average" {
		t.Fatalf("row columns mismatch: %+v", row)
	}
	if row["loudness_db"] != 0.2 || row["stereo_width"] != 18.0 {
		t.Fatalf("feature columns mismatch: %+v", row)
	}
	balance, ok := row["freq_balance"].(map[string]any)
	if !ok || balance["low"] != 1.0 || balance["high"] != 0.5 {
		t.Fatalf("freq_balance column mismatch: %+v", row["freq_balance"])
	}
}

func TestNilLoggerDefaults(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer ts.Close()

	c := New(ts.URL, "svc-key", nil)
	if err := c.InsertFeedback(context.Background(), domain.FeedbackRecord{TrackID: "track-1"}); err != nil {
		t.Fatalf("insert with defaulted logger: %v", err)
	}
}

func TestInsertFeedbackFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"duplicate key"}`, http.StatusConflict)
	}))
	defer ts.Close()

	c := New(ts.URL, "svc-key", testLogger())
	err := c.InsertFeedback(context.Background(), domain.FeedbackRecord{TrackID: "track-1"})
	if !errors.Is(err, domain.ErrPersist) {
		t.Fatalf("got err=%v want ErrPersist", err)
	}
}
