package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/andreaessedj/analyzer/internal/domain"
)

// Downloader fetches remote source files into temporary storage so the
// decoder can work from a seekable local path.
type Downloader struct {
	client *http.Client
}

// NewDownloader builds a Downloader; a non-positive timeout falls back to
// 60 seconds.
func NewDownloader(timeout time.Duration) *Downloader {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Downloader{client: &http.Client{Timeout: timeout}}
}

// FetchToTemp downloads rawURL into a temp file whose suffix mirrors the URL
// extension (.wav when the URL carries none), so decoders can dispatch on the
// path. The returned cleanup removes the file.
func (d *Downloader) FetchToTemp(ctx context.Context, rawURL string) (string, func(), error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", domain.ErrRetrieval, err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", domain.ErrRetrieval, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", nil, fmt.Errorf("%w: download %s", domain.ErrRetrieval, resp.Status)
	}

	f, err := os.CreateTemp("", "analyzer-*"+urlExt(rawURL))
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", domain.ErrRetrieval, err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", nil, fmt.Errorf("%w: %v", domain.ErrRetrieval, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", nil, fmt.Errorf("%w: %v", domain.ErrRetrieval, err)
	}
	name := f.Name()
	return name, func() { os.Remove(name) }, nil
}

// urlExt extracts the lowercase file extension from a URL path, default .wav.
func urlExt(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	if ext := strings.ToLower(path.Ext(p)); ext != "" {
		return ext
	}
	return ".wav"
}
