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

// Package log wraps a single global zap.SugaredLogger so that any package
// in this module can log without threading a logger through every
// constructor. ConfigureLogger installs the configured logger at process
// start; SetGlobalLogger exists so tests can swap in a buffer-backed logger.
package log

import (
	"sync"

	"go.uber.org/zap"
)

var (
	mu      sync.RWMutex
	globalL *zap.SugaredLogger
)

func init() {
	l, err := zap.NewProduction()
	if err != nil {
		l = zap.NewNop()
	}
	globalL = l.Sugar()
}

// ConfigureLogger builds a *zap.Logger from config, installs it as the
// global logger, and returns it so callers can defer its Sync.
func ConfigureLogger(config zap.Config) *zap.Logger {
	l, err := config.Build()
	if err != nil {
		l = zap.NewNop()
	}
	SetGlobalLogger(l.Sugar())
	return l
}

// SetGlobalLogger replaces the global logger.
func SetGlobalLogger(l *zap.SugaredLogger) {
	mu.Lock()
	defer mu.Unlock()
	globalL = l
}

// Default returns the current global logger.
func Default() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return globalL
}

// With returns a logger with the given structured fields attached.
func With(args ...interface{}) *zap.SugaredLogger {
	return Default().With(args...)
}

// Debugf logs at debug level.
func Debugf(template string, args ...interface{}) { Default().Debugf(template, args...) }

// Infof logs at info level.
func Infof(template string, args ...interface{}) { Default().Infof(template, args...) }

// Warnf logs at warn level.
func Warnf(template string, args ...interface{}) { Default().Warnf(template, args...) }

// Errorf logs at error level.
func Errorf(template string, args ...interface{}) { Default().Errorf(template, args...) }

// Fatalf logs at fatal level and exits the process.
func Fatalf(template string, args ...interface{}) { Default().Fatalf(template, args...) }

// Info logs at info level.
func Info(args ...interface{}) { Default().Info(args...) }

// Warn logs at warn level.
func Warn(args ...interface{}) { Default().Warn(args...) }

// Error logs at error level.
func Error(args ...interface{}) { Default().Error(args...) }

// Fatal logs at fatal level and exits the process.
func Fatal(args ...interface{}) { Default().Fatal(args...) }
