package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/andreaessedj/analyzer/internal/domain"
)

func TestLiveFeedDeliversRecords(t *testing.T) {
	s := NewServer(Config{}, &fakeService{}, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.hub.Run(ctx)

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for s.hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("client never registered with the hub")
		}
		time.Sleep(10 * time.Millisecond)
	}

	want := domain.FeedbackRecord{TrackID: "t1", SpectralSpread: 18, Notes: "mix ok on average"}
	s.Publish(want)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read broadcast: %v", err)
	}
	var got domain.FeedbackRecord
	if err := json.Unmarshal(msg, &got); err != nil {
		t.Fatalf("decode broadcast: %v", err)
	}
	if got != want {
		t.Fatalf("broadcast=%+v want=%+v", got, want)
	}
}

func TestBroadcastWithoutClientsDoesNotBlock(t *testing.T) {
	hub := NewHub(quietLogger())
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			hub.Broadcast(domain.FeedbackRecord{TrackID: "t"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("broadcast blocked with no dispatcher running")
	}
}

func TestClientCountDropsOnDisconnect(t *testing.T) {
	s := NewServer(Config{}, &fakeService{}, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.hub.Run(ctx)

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for s.hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	conn.Close()
	deadline = time.Now().Add(2 * time.Second)
	for s.hub.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("client not removed after disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
