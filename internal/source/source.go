// Package source retrieves raw schedule text from a spreadsheet export URL,
// a local file or standard input.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-logr/logr"
)

// DefaultTimeout bounds a single HTTP fetch when no timeout is configured.
const DefaultTimeout = 15 * time.Second

// maxBodyBytes caps how much of a response or file is read.
var maxBodyBytes int64 = 8 << 20

var (
	// ErrNoSource is returned when no location was configured.
	ErrNoSource = errors.New("no schedule source configured")
	// ErrTooLarge is returned when the input exceeds the size cap.
	ErrTooLarge = errors.New("schedule exceeds size limit")
)

// readLimited reads r up to maxBodyBytes and fails rather than truncate.
func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBodyBytes {
		return nil, fmt.Errorf("%w of %d bytes", ErrTooLarge, maxBodyBytes)
	}
	return data, nil
}

// Fetcher returns the raw text of a schedule.
type Fetcher interface {
	Fetch(ctx context.Context) (string, error)
	// Location describes where the text comes from, for display and logs.
	Location() string
}

// Doer abstracts the ability to execute HTTP requests.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// FetchError reports a failed retrieval.
type FetchError struct {
	Source     string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.Source, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// New picks a fetcher for location: http and https URLs are fetched over the
// network, "-" reads stdin, anything else is a file path.
func New(location string, client Doer, timeout time.Duration, lgr logr.Logger) (Fetcher, error) {
	location = strings.TrimSpace(location)
	switch {
	case location == "":
		return nil, ErrNoSource
	case location == "-":
		return &ReaderSource{Name: "stdin", Reader: os.Stdin}, nil
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return NewHTTPSource(location, client, timeout, lgr), nil
	default:
		return &FileSource{Path: location}, nil
	}
}

// HTTPSource fetches a spreadsheet export over HTTP(S).
type HTTPSource struct {
	URL     string
	Client  Doer
	Timeout time.Duration
	Log     logr.Logger
}

// NewHTTPSource returns an HTTP fetcher. A nil client uses a client with the
// given timeout.
func NewHTTPSource(url string, client Doer, timeout time.Duration, lgr logr.Logger) *HTTPSource {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPSource{URL: url, Client: client, Timeout: timeout, Log: lgr}
}

func (s *HTTPSource) Location() string { return s.URL }

// Fetch performs a GET and returns the body for a 2xx response.
func (s *HTTPSource) Fetch(ctx context.Context) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return "", &FetchError{Source: s.URL, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.5")

	start := time.Now()
	resp, err := s.Client.Do(req)
	if err != nil {
		s.Log.V(1).Info("http fetch failed", "url", s.URL, "duration", time.Since(start), "error", err.Error())
		return "", &FetchError{Source: s.URL, Err: err}
	}
	defer resp.Body.Close()

	s.Log.V(1).Info("http fetch", "url", s.URL, "status", resp.StatusCode, "duration", time.Since(start))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return "", &FetchError{Source: s.URL, StatusCode: resp.StatusCode}
	}

	body, err := readLimited(resp.Body)
	if err != nil {
		return "", &FetchError{Source: s.URL, Err: fmt.Errorf("read body: %w", err)}
	}
	return string(body), nil
}

// FileSource reads a schedule from disk on every fetch.
type FileSource struct {
	Path string
}

func (s *FileSource) Location() string { return s.Path }

func (s *FileSource) Fetch(ctx context.Context) (string, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return "", &FetchError{Source: s.Path, Err: err}
		}
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return "", &FetchError{Source: s.Path, Err: err}
	}
	defer f.Close()
	data, err := readLimited(f)
	if err != nil {
		return "", &FetchError{Source: s.Path, Err: err}
	}
	return string(data), nil
}

// ReaderSource reads the reader once and serves the cached text afterwards,
// so refreshing a piped schedule shows the same data.
type ReaderSource struct {
	Name   string
	Reader io.Reader

	data   string
	loaded bool
}

func (s *ReaderSource) Location() string { return s.Name }

func (s *ReaderSource) Fetch(_ context.Context) (string, error) {
	if s.loaded {
		return s.data, nil
	}
	if s.Reader == nil {
		return "", &FetchError{Source: s.Name, Err: ErrNoSource}
	}
	data, err := readLimited(s.Reader)
	if err != nil {
		return "", &FetchError{Source: s.Name, Err: err}
	}
	s.data = string(data)
	s.loaded = true
	return s.data, nil
}
