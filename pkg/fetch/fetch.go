// Copyright 2025 the fetchpush authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package fetch downloads URL content over HTTP, whole body in memory.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

const userAgent = "fetchpush/1.0"

// 🎯 HTTPError reports a response with a failure status code. It is distinct
// from transport errors so callers can surface the code and reason verbatim.
type HTTPError struct {
	StatusCode int
	Reason     string
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error %d downloading %s: %s", e.StatusCode, e.URL, e.Reason)
}

// 📦 Fetcher performs blocking GET requests with a shared client.
type Fetcher struct {
	client *http.Client
}

// 🏭 New creates a fetcher. A zero timeout means requests block until the
// server responds or the connection drops, matching the default behavior of
// the tool; callers opt in to a deadline explicitly.
func New(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// 🏃 Fetch GETs the URL and returns the full response body. Redirects are
// followed by the client. A status of 400 or above yields an *HTTPError;
// request construction, transport, and read failures are wrapped.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("url", url).Msg("downloading file")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Reason:     statusReason(resp),
			URL:        url,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Errorf("reading response body: %w", err)
	}

	logger.Debug().Str("url", url).Int("bytes", len(body)).Msg("download finished")
	return body, nil
}

// statusReason extracts the reason phrase from the status line, falling back
// to the canonical text when the server sent only the code.
func statusReason(resp *http.Response) string {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}
	return reason
}
