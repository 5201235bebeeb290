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

// Package handler adapts error-returning HTTP handlers into
// http.HandlerFunc, translating the returned error into a status code and
// body so route handlers don't repeat http.Error calls.
package handler

import (
	"fmt"
	"net/http"

	"github.com/uber/beebox/utils/log"
)

// Error is an error with an associated HTTP status code.
type Error struct {
	status int
	msg    string
}

// Error implements error.
func (e *Error) Error() string {
	return e.msg
}

// StatusCode returns the status code to use when writing this error,
// defaulting to 500 if none was set.
func (e *Error) StatusCode() int {
	if e.status == 0 {
		return http.StatusInternalServerError
	}
	return e.status
}

// Status sets the HTTP status to report for this error and returns it for
// chaining, e.g. handler.Errorf("bad: %s", err).Status(400).
func (e *Error) Status(status int) *Error {
	e.status = status
	return e
}

// Errorf creates a new *Error from a format string.
func Errorf(format string, args ...interface{}) *Error {
	return &Error{msg: fmt.Sprintf(format, args...)}
}

// ErrorStatus creates a new *Error carrying only a status code, whose
// message is the standard text for that code.
func ErrorStatus(status int) *Error {
	return &Error{status: status, msg: http.StatusText(status)}
}

// Func is the error-returning handler signature Wrap adapts.
type Func func(w http.ResponseWriter, r *http.Request) error

// Wrap adapts f into an http.HandlerFunc: if f returns an *Error, its
// status and message are written to the response; any other error is
// logged and reported as a 500 with a generic body.
func Wrap(f Func) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := f(w, r); err != nil {
			if herr, ok := err.(*Error); ok {
				if herr.StatusCode() >= 500 {
					log.Errorf("%s %s: %s", r.Method, r.URL.Path, herr.Error())
				}
				http.Error(w, herr.Error(), herr.StatusCode())
				return
			}
			log.Errorf("%s %s: %s", r.Method, r.URL.Path, err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
	}
}
