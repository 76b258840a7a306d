/* Copyright (C) 2025, 2026 Studylog contributors
 *
 * This file is part of Studylog.
 *
 * Studylog is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * Studylog is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with Studylog.  If not, see <https://www.gnu.org/licenses/>.
 */

package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/log"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// ErrContentTypeMismatch is an error for a response that is not JSON
var ErrContentTypeMismatch = errors.New("content type mismatch")

// HTTPError represents an HTTP error response from the remote
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf(`response %d "%s"`, e.StatusCode, e.Message)
}

// IsNotFound returns true if the error is a 404 Not Found error
func (e *HTTPError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

var contentTypeApplicationJSON = "application/json"

const (
	// clientRateLimitPerSecond is the max requests per second the client will make
	clientRateLimitPerSecond = 3
	// clientRateLimitBurst is the burst capacity for rate limiting
	clientRateLimitBurst = 10
	// clientTimeout bounds every request
	clientTimeout = 30 * time.Second
)

// rateLimitedTransport wraps an http.RoundTripper with rate limiting
type rateLimitedTransport struct {
	transport http.RoundTripper
	limiter   *rate.Limiter
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.transport.RoundTrip(req)
}

// NewRateLimitedHTTPClient creates an HTTP client with rate limiting
func NewRateLimitedHTTPClient() *http.Client {
	interval := time.Second / time.Duration(clientRateLimitPerSecond)

	transport := &rateLimitedTransport{
		transport: http.DefaultTransport,
		limiter:   rate.NewLimiter(rate.Every(interval), clientRateLimitBurst),
	}
	return &http.Client{
		Transport: transport,
		Timeout:   clientTimeout,
	}
}

// Options configure a Client. Databases maps entity family names to the id
// of the remote database holding that family.
type Options struct {
	Endpoint  string
	Token     string
	Version   string
	Databases map[string]string
}

// Client is a client of the remote document store. Its options can be
// swapped at runtime.
type Client struct {
	httpClient *http.Client

	mu   sync.RWMutex
	opts Options
}

// NewClient returns a client with the given options. A nil httpClient falls
// back to a rate limited client.
func NewClient(o Options, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = NewRateLimitedHTTPClient()
	}

	return &Client{
		httpClient: httpClient,
		opts:       o,
	}
}

// Reconfigure replaces the options of the client
func (c *Client) Reconfigure(o Options) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.opts = o
}

func (c *Client) options() Options {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.opts
}

// Reachable reports whether an endpoint and token are set
func (c *Client) Reachable() bool {
	o := c.options()
	return o.Endpoint != "" && o.Token != ""
}

// DatabaseID returns the remote database id of the given family
func (c *Client) DatabaseID(family string) (string, bool) {
	o := c.options()
	if o.Endpoint == "" || o.Token == "" {
		return "", false
	}

	id := o.Databases[family]
	return id, id != ""
}

// Ping checks that the remote is reachable
func (c *Client) Ping(ctx context.Context) error {
	o := c.options()
	if o.Endpoint == "" {
		return ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSuffix(o.Endpoint, "/api")+"/health", nil)
	if err != nil {
		return errors.Wrap(err, "constructing http request")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "making http request")
	}
	defer res.Body.Close()

	return checkRespErr(res)
}

// checkRespErr checks if the given http response indicates an error
func checkRespErr(res *http.Response) error {
	if res.StatusCode < 400 {
		return nil
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrapf(err, "server responded with %d but client could not read the response body", res.StatusCode)
	}

	return &HTTPError{
		StatusCode: res.StatusCode,
		Message:    strings.TrimRight(string(body), "\n"),
	}
}

func checkContentType(res *http.Response) error {
	got := res.Header.Get("Content-Type")
	if !strings.HasPrefix(got, contentTypeApplicationJSON) {
		return errors.Wrapf(ErrContentTypeMismatch, "got: '%s' want: '%s'. Did you configure your endpoint correctly?", got, contentTypeApplicationJSON)
	}

	return nil
}

// do sends a JSON request to the given path of the API endpoint and decodes
// the JSON response into out, if out is not nil
func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	o := c.options()
	if o.Endpoint == "" || o.Token == "" {
		return ErrNotConfigured
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return errors.Wrap(err, "marshalling payload")
		}
		body = bytes.NewReader(b)
	}

	endpoint := fmt.Sprintf("%s%s", o.Endpoint, path)
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return errors.Wrap(err, "constructing http request")
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", o.Token))
	req.Header.Set("Client-Version", o.Version)
	if payload != nil {
		req.Header.Set("Content-Type", contentTypeApplicationJSON)
	}

	log.Debug("HTTP %s %s\n", method, path)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "making http request")
	}
	defer res.Body.Close()

	log.Debug("HTTP %d %s\n", res.StatusCode, res.Status)

	if err := checkRespErr(res); err != nil {
		return errors.Wrap(err, "server responded with an error")
	}
	if out == nil {
		return nil
	}
	if err := checkContentType(res); err != nil {
		return errors.Wrap(err, "unexpected Content-Type")
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decoding the response body")
	}

	return nil
}
