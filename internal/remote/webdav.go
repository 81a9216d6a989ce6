package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

// WebDAVStore stores the sync document on a WebDAV server with basic auth.
// baseURL points at the sync directory, e.g. https://dav.example.com/tabdav/.
type WebDAVStore struct {
	baseURL  string
	username string
	password string
	client   *http.Client
}

// NewWebDAVStore returns a WebDAVStore. timeout bounds each HTTP call.
func NewWebDAVStore(baseURL, username, password string, timeout time.Duration) *WebDAVStore {
	return &WebDAVStore{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		client:   &http.Client{Timeout: timeout},
	}
}

// Download fetches the blob at name. A 404 means the document does not
// exist yet, which is a normal cold-start condition.
func (s *WebDAVStore) Download(ctx context.Context, name string) ([]byte, bool, error) {
	var data []byte
	var found bool

	err := s.withRetry(ctx, func(ctx context.Context) error {
		resp, err := s.do(ctx, http.MethodGet, s.url(name), nil)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			data, found = nil, false
			return nil
		case resp.StatusCode == http.StatusOK:
			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return retry.RetryableError(fmt.Errorf("failed to read response body: %w", err))
			}
			data, found = body, true
			return nil
		default:
			return statusError(resp, "GET")
		}
	})
	if err != nil {
		return nil, false, err
	}
	return data, found, nil
}

// Upload writes the blob at name, creating or replacing it.
func (s *WebDAVStore) Upload(ctx context.Context, name string, data []byte) error {
	return s.withRetry(ctx, func(ctx context.Context) error {
		resp, err := s.do(ctx, http.MethodPut, s.url(name), bytes.NewReader(data))
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		return statusError(resp, "PUT")
	})
}

// Exists reports whether a blob is present at name, using HEAD.
func (s *WebDAVStore) Exists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.withRetry(ctx, func(ctx context.Context) error {
		resp, err := s.do(ctx, http.MethodHead, s.url(name), nil)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			exists = false
			return nil
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			exists = true
			return nil
		default:
			return statusError(resp, "HEAD")
		}
	})
	return exists, err
}

// Mkdir issues MKCOL on the sync directory. 405 means it already exists.
func (s *WebDAVStore) Mkdir(ctx context.Context) error {
	return s.withRetry(ctx, func(ctx context.Context) error {
		resp, err := s.do(ctx, "MKCOL", s.baseURL+"/", nil)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusCreated,
			resp.StatusCode == http.StatusOK,
			resp.StatusCode == http.StatusMethodNotAllowed:
			return nil
		default:
			return statusError(resp, "MKCOL")
		}
	})
}

// Ping probes the sync directory with PROPFIND depth 0. A 404 is still a
// successful ping: the server answered and the credentials were accepted,
// the directory just has to be created.
func (s *WebDAVStore) Ping(ctx context.Context) error {
	return s.withRetry(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, "PROPFIND", s.baseURL+"/", nil)
		if err != nil {
			return err
		}
		req.SetBasicAuth(s.username, s.password)
		req.Header.Set("Depth", "0")

		resp, err := s.client.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300,
			resp.StatusCode == http.StatusMultiStatus,
			resp.StatusCode == http.StatusNotFound:
			return nil
		default:
			return statusError(resp, "PROPFIND")
		}
	})
}

func (s *WebDAVStore) url(name string) string {
	return s.baseURL + "/" + name
}

func (s *WebDAVStore) do(ctx context.Context, method, url string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(s.username, s.password)
	if method == http.MethodPut {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.client.Do(req)
}

// withRetry retries transient failures (network errors and 5xx responses)
// with exponential backoff. Auth and client errors fail immediately.
func (s *WebDAVStore) withRetry(ctx context.Context, fn func(context.Context) error) error {
	backoff := retry.WithMaxRetries(3, retry.NewExponential(300*time.Millisecond))
	return retry.Do(ctx, backoff, fn)
}

func statusError(resp *http.Response, method string) error {
	err := fmt.Errorf("webdav %s %s: unexpected status %d", method, resp.Request.URL.Path, resp.StatusCode)
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return retry.RetryableError(err)
	}
	return err
}
