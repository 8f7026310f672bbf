package dataset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/raysh454/policysim/internal/model"
)

// DefaultHTTPTimeout bounds one HTTP load.
const DefaultHTTPTimeout = 30 * time.Second

// DefaultMaxHTTPBody caps the downloaded table size.
const DefaultMaxHTTPBody = 256 << 20

// ErrBodyTooLarge is returned when a response exceeds the source's cap.
var ErrBodyTooLarge = errors.New("response body too large")

// HTTPSource loads a CSV or TSV table published at a URL, for example a
// results file exported by the simulation pipeline to object storage.
type HTTPSource struct {
	URL string

	// MaxBody is the largest accepted body in bytes. Zero means
	// DefaultMaxHTTPBody.
	MaxBody int64

	client *http.Client
}

// NewHTTPSource returns a source for rawURL. A nil client gets a default
// one with DefaultHTTPTimeout.
func NewHTTPSource(rawURL string, client *http.Client) (*HTTPSource, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("http source: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("http source: unsupported scheme %q", u.Scheme)
	}
	if client == nil {
		client = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	return &HTTPSource{URL: rawURL, client: client}, nil
}

func (s *HTTPSource) Describe() string {
	return "http:" + s.URL
}

func (s *HTTPSource) Load(ctx context.Context) (*model.Dataset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/csv, text/tab-separated-values;q=0.9, */*;q=0.1")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("fetch %s: unexpected status %s", s.URL, resp.Status)
	}

	limit := s.MaxBody
	if limit <= 0 {
		limit = DefaultMaxHTTPBody
	}
	// One byte over the cap tells a full body from a truncated one.
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("fetch %s: %w (limit %d bytes)", s.URL, ErrBodyTooLarge, limit)
	}
	return ReadCSV(bytes.NewReader(body), s.Describe(), s.tabSeparated(resp))
}

// tabSeparated decides the delimiter from the content type, falling back to
// the URL's extension.
func (s *HTTPSource) tabSeparated(resp *http.Response) bool {
	if mt, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err == nil {
		switch mt {
		case "text/tab-separated-values":
			return true
		case "text/csv":
			return false
		}
	}
	u, err := url.Parse(s.URL)
	if err != nil {
		return false
	}
	return strings.EqualFold(path.Ext(u.Path), ".tsv")
}
