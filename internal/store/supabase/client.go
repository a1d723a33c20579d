package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/andreaessedj/analyzer/internal/domain"
)

// Client speaks the PostgREST API of a Supabase project: track lookups from
// the tracks table, feedback inserts into the feedback table.
type Client struct {
	baseURL string
	key     string
	hc      *http.Client
	log     *logrus.Logger
}

// New builds a Client for the project at baseURL authenticated with the
// service key. A nil log falls back to a fresh logrus logger.
func New(baseURL, key string, log *logrus.Logger) *Client {
	if log == nil {
		log = logrus.New()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
		hc:      &http.Client{Timeout: 30 * time.Second},
		log:     log,
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
	return req, nil
}

// TrackByID fetches a single row from the tracks table. The single-object
// Accept header makes PostgREST answer 406 when the id matches no row.
func (c *Client) TrackByID(ctx context.Context, id string) (domain.Track, error) {
	q := url.Values{}
	q.Set("id", "eq."+id)
	q.Set("select", "*")
	req, err := c.newRequest(ctx, http.MethodGet, "/rest/v1/tracks?"+q.Encode(), nil)
	if err != nil {
		return domain.Track{}, fmt.Errorf("%w: %v", domain.ErrRetrieval, err)
	}
	req.Header.Set("Accept", "application/vnd.pgrst.object+json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return domain.Track{}, fmt.Errorf("%w: %v", domain.ErrRetrieval, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusNotAcceptable:
		return domain.Track{}, fmt.Errorf("%w: %s", domain.ErrTrackNotFound, id)
	default:
		body, _ := io.ReadAll(resp.Body)
		return domain.Track{}, fmt.Errorf("%w: tracks %s: %s", domain.ErrRetrieval, resp.Status, string(body))
	}

	var track domain.Track
	if err := json.NewDecoder(resp.Body).Decode(&track); err != nil {
		return domain.Track{}, fmt.Errorf("%w: decode track row: %v", domain.ErrRetrieval, err)
	}
	return track, nil
}

// InsertFeedback appends one row to the feedback table.
func (c *Client) InsertFeedback(ctx context.Context, rec domain.FeedbackRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w: encode feedback: %v", domain.ErrPersist, err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/rest/v1/feedback", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersist, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersist, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: feedback %s: %s", domain.ErrPersist, resp.Status, string(body))
	}

	c.log.WithField("track_id", rec.TrackID).Debug("feedback row stored")
	return nil
}
