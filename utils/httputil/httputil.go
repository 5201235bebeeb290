// Copyright (c) 2016-2019 Uber Technologies, Inc.
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

// Package httputil wraps net/http with a functional-options Send that knows
// how to retry, enforce accepted status codes, and distinguish network
// errors from HTTP status errors. It is used by the execution pipeline to
// talk to the runner inside each sandbox pod.
package httputil

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"io"
	"io/ioutil"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/go-chi/chi"
)

// StatusError occurs when an HTTP response has an unexpected status code.
type StatusError struct {
	Method       string
	URL          string
	Status       int
	Header       http.Header
	ResponseDump string
}

// NewStatusError creates a new StatusError, reading (and discarding) the
// response body into ResponseDump for debugging.
func NewStatusError(resp *http.Response) StatusError {
	method, u := "?", "?"
	if resp.Request != nil {
		method = resp.Request.Method
		u = resp.Request.URL.String()
	}
	dump, _ := ioutil.ReadAll(io.LimitReader(resp.Body, 4096))
	return StatusError{
		Method:       method,
		URL:          u,
		Status:       resp.StatusCode,
		Header:       resp.Header,
		ResponseDump: string(dump),
	}
}

// Error implements error.
func (e StatusError) Error() string {
	return fmt.Sprintf(
		"%s %s %d: %s", e.Method, e.URL, e.Status, strings.TrimSpace(e.ResponseDump))
}

// NetworkError occurs when a request could not be completed because of an
// error below the HTTP layer (connection refused, DNS failure, timeout).
type NetworkError struct {
	msg string
}

// Error implements error.
func (e NetworkError) Error() string {
	return fmt.Sprintf("network error: %s", e.msg)
}

// IsNotFound returns true if err is a StatusError with status 404.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsForbidden returns true if err is a StatusError with status 403.
func IsForbidden(err error) bool {
	return hasStatus(err, http.StatusForbidden)
}

// IsConflict returns true if err is a StatusError with status 409.
func IsConflict(err error) bool {
	return hasStatus(err, http.StatusConflict)
}

// IsNetworkError returns true if err is a NetworkError.
func IsNetworkError(err error) bool {
	_, ok := err.(NetworkError)
	return ok
}

// IsRetryable returns true if err is a StatusError with a 5xx status, or a
// NetworkError.
func IsRetryable(err error) bool {
	if IsNetworkError(err) {
		return true
	}
	serr, ok := err.(StatusError)
	return ok && serr.Status >= 500
}

func hasStatus(err error, status int) bool {
	serr, ok := err.(StatusError)
	return ok && serr.Status == status
}

// sendOptions configures a Send call.
type sendOptions struct {
	body          io.Reader
	timeout       time.Duration
	acceptedCodes map[int]bool
	headers       map[string]string
	transport     http.RoundTripper
	retry         *retryOptions
	redirect      func(req *http.Request, via []*http.Request) error
	tls           *tls.Config
}

func defaultSendOptions() *sendOptions {
	return &sendOptions{
		acceptedCodes: map[int]bool{http.StatusOK: true},
	}
}

// SendOption configures a Send call.
type SendOption func(*sendOptions)

// SendBody sets the request body.
func SendBody(body io.Reader) SendOption {
	return func(o *sendOptions) { o.body = body }
}

// SendTimeout sets the request timeout.
func SendTimeout(timeout time.Duration) SendOption {
	return func(o *sendOptions) { o.timeout = timeout }
}

// SendAcceptedCodes overrides the set of status codes which do not result in
// a StatusError.
func SendAcceptedCodes(codes ...int) SendOption {
	return func(o *sendOptions) {
		o.acceptedCodes = make(map[int]bool)
		for _, c := range codes {
			o.acceptedCodes[c] = true
		}
	}
}

// SendHeaders sets extra request headers.
func SendHeaders(headers map[string]string) SendOption {
	return func(o *sendOptions) { o.headers = headers }
}

// SendTransport overrides the http.RoundTripper used to send the request.
func SendTransport(t http.RoundTripper) SendOption {
	return func(o *sendOptions) { o.transport = t }
}

// SendTLS configures the request's TLS client config.
func SendTLS(c *tls.Config) SendOption {
	return func(o *sendOptions) { o.tls = c }
}

// SendRedirect overrides the redirect policy applied to the request.
func SendRedirect(f func(req *http.Request, via []*http.Request) error) SendOption {
	return func(o *sendOptions) { o.redirect = f }
}

// SendContext is accepted for API parity with callers that thread a
// context.Context through Send options; Go's http.Client does not expose a
// hook for it directly, so this is a no-op placeholder reserved for callers
// that pre-bind the context to the request body / timeout.
func SendContext(ctx interface{}) SendOption {
	return func(o *sendOptions) {}
}

type retryOptions struct {
	backoff func() backoff.BackOff
	codes   map[int]bool
}

// RetryOption configures SendRetry.
type RetryOption func(*retryOptions)

// RetryBackoff sets the backoff.BackOff factory used between retries.
func RetryBackoff(b backoff.BackOff) RetryOption {
	return func(o *retryOptions) {
		o.backoff = func() backoff.BackOff { return b }
	}
}

// RetryCodes adds status codes (beyond 5xx and network errors) that should
// trigger a retry.
func RetryCodes(codes ...int) RetryOption {
	return func(o *retryOptions) {
		if o.codes == nil {
			o.codes = make(map[int]bool)
		}
		for _, c := range codes {
			o.codes[c] = true
		}
	}
}

// SendRetry enables retries on network errors and 5xx responses.
func SendRetry(opts ...RetryOption) SendOption {
	return func(o *sendOptions) {
		r := &retryOptions{}
		for _, opt := range opts {
			opt(r)
		}
		o.retry = r
	}
}

// Get sends a GET request.
func Get(url string, opts ...SendOption) (*http.Response, error) {
	return Send(http.MethodGet, url, opts...)
}

// Post sends a POST request.
func Post(url string, opts ...SendOption) (*http.Response, error) {
	return Send(http.MethodPost, url, opts...)
}

// Put sends a PUT request.
func Put(url string, opts ...SendOption) (*http.Response, error) {
	return Send(http.MethodPut, url, opts...)
}

// Patch sends a PATCH request.
func Patch(url string, opts ...SendOption) (*http.Response, error) {
	return Send(http.MethodPatch, url, opts...)
}

// Delete sends a DELETE request.
func Delete(url string, opts ...SendOption) (*http.Response, error) {
	return Send(http.MethodDelete, url, opts...)
}

// Head sends a HEAD request.
func Head(url string, opts ...SendOption) (*http.Response, error) {
	return Send(http.MethodHead, url, opts...)
}

// Send sends an HTTP request of the given method, applying opts. Returns a
// StatusError if the response status is not among the accepted codes, or a
// NetworkError if the request could not be sent at all. If SendRetry was
// given, retries on network errors and 5xx (or caller-specified) codes.
func Send(method, rawurl string, opts ...SendOption) (*http.Response, error) {
	o := defaultSendOptions()
	for _, opt := range opts {
		opt(o)
	}

	var bodyBytes []byte
	if o.body != nil {
		b, err := ioutil.ReadAll(o.body)
		if err != nil {
			return nil, fmt.Errorf("read body: %s", err)
		}
		bodyBytes = b
	}

	send := func() (*http.Response, error) {
		var body io.Reader
		if bodyBytes != nil {
			body = bytes.NewReader(bodyBytes)
		}
		req, err := http.NewRequest(method, rawurl, body)
		if err != nil {
			return nil, fmt.Errorf("new request: %s", err)
		}
		for k, v := range o.headers {
			req.Header.Set(k, v)
		}

		client := &http.Client{
			Timeout:       o.timeout,
			CheckRedirect: o.redirect,
		}
		if o.transport != nil {
			client.Transport = o.transport
		} else if o.tls != nil {
			client.Transport = &http.Transport{TLSClientConfig: o.tls}
		}

		resp, err := client.Do(req)
		if err != nil {
			if uerr, ok := err.(*url.Error); ok {
				if _, ok := uerr.Err.(net.Error); ok || uerr.Timeout() {
					return nil, NetworkError{uerr.Error()}
				}
			}
			return nil, NetworkError{err.Error()}
		}
		if !o.acceptedCodes[resp.StatusCode] {
			defer resp.Body.Close()
			return nil, NewStatusError(resp)
		}
		return resp, nil
	}

	if o.retry == nil {
		return send()
	}

	var b backoff.BackOff
	if o.retry.backoff != nil {
		b = o.retry.backoff()
	} else {
		b = backoff.NewExponentialBackOff()
	}

	var resp *http.Response
	err := backoff.Retry(func() error {
		r, err := send()
		if err != nil {
			if IsNetworkError(err) {
				return err
			}
			if serr, ok := err.(StatusError); ok {
				if serr.Status >= 500 || o.retry.codes[serr.Status] {
					resp = nil
					return err
				}
			}
			return backoff.Permanent(err)
		}
		resp = r
		return nil
	}, b)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// PollAccepted repeatedly GETs url, backing off between attempts, until the
// response status is no longer 202 Accepted. Used to poll long-running
// operations such as asynchronous container deletions.
func PollAccepted(url string, b backoff.BackOff, opts ...SendOption) (*http.Response, error) {
	var resp *http.Response
	err := backoff.Retry(func() error {
		r, err := Send(http.MethodGet, url, opts...)
		if err != nil {
			if serr, ok := err.(StatusError); ok && serr.Status == http.StatusAccepted {
				return err
			}
			return backoff.Permanent(err)
		}
		resp = r
		if resp.StatusCode == http.StatusAccepted {
			return fmt.Errorf("still accepted")
		}
		return nil
	}, b)
	if err != nil && resp == nil {
		return nil, err
	}
	if resp != nil && resp.StatusCode == http.StatusAccepted {
		return nil, fmt.Errorf("poll accepted: backoff exhausted")
	}
	return resp, nil
}

// GetQueryArg returns the named query argument from r, or def if absent.
func GetQueryArg(r *http.Request, arg, def string) string {
	if v := r.URL.Query().Get(arg); v != "" {
		return v
	}
	return def
}

// ParseParam extracts and unescapes the named chi URL parameter from r.
func ParseParam(r *http.Request, name string) (string, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return "", fmt.Errorf("param %q not found", name)
	}
	v, err := url.PathUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("unescape %q: %s", name, err)
	}
	return v, nil
}
