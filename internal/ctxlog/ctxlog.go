// Copyright (C) 2017 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ctxlog is a small context.Context-carried logger, adapted from
// gapid's core/log for the one thing cmd/ctfmetatool needs: a severity-
// filtered, fluent way to report elaboration errors and summary statistics
// at the CLI boundary. The elaborator itself never imports this package —
// per spec.md §7 it returns structured errors and never logs.
package ctxlog

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// Severity orders the log levels this package understands, least to most
// severe.
type Severity int

const (
	Debug Severity = iota
	Info
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Debug:
		return "D"
	case Info:
		return "I"
	case Warning:
		return "W"
	case Error:
		return "E"
	default:
		return "?"
	}
}

type contextKey struct{}

type state struct {
	min    Severity
	out    io.Writer
	tag    string
	parent context.Context
}

// NewContext wraps ctx with a logger writing to w, filtering out anything
// below min.
func NewContext(ctx context.Context, w io.Writer, min Severity) context.Context {
	return context.WithValue(ctx, contextKey{}, &state{min: min, out: w, parent: ctx})
}

func stateOf(ctx context.Context) *state {
	if s, ok := ctx.Value(contextKey{}).(*state); ok {
		return s
	}
	return &state{min: Info, out: os.Stderr}
}

// Tag returns a derived context whose log lines are prefixed with tag, the
// way gapid's log.Context.Tag scopes a sub-component's output.
func Tag(ctx context.Context, tag string) context.Context {
	s := *stateOf(ctx)
	s.tag = tag
	return context.WithValue(ctx, contextKey{}, &s)
}

// Logger is the fluent handle returned by At. A disabled Logger
// (below the context's filter level) discards every call cheaply.
type Logger struct {
	enabled bool
	sev     Severity
	tag     string
	out     io.Writer
}

// At builds a Logger at the given severity, pre-filtered against the
// context's minimum level — mirroring log.Context.At's "inactive logger"
// behavior for disabled levels.
func At(ctx context.Context, sev Severity) Logger {
	s := stateOf(ctx)
	return Logger{enabled: sev >= s.min, sev: sev, tag: s.tag, out: s.out}
}

func Debugf(ctx context.Context, format string, args ...interface{})   { At(ctx, Debug).Logf(format, args...) }
func Infof(ctx context.Context, format string, args ...interface{})   { At(ctx, Info).Logf(format, args...) }
func Warningf(ctx context.Context, format string, args ...interface{}) { At(ctx, Warning).Logf(format, args...) }
func Errorf(ctx context.Context, format string, args ...interface{})  { At(ctx, Error).Logf(format, args...) }

// Log writes msg if the logger is enabled.
func (l Logger) Log(msg string) {
	if !l.enabled {
		return
	}
	l.write(msg)
}

// Logf formats and writes if the logger is enabled; formatting is deferred
// behind the enabled check so disabled log statements stay cheap.
func (l Logger) Logf(format string, args ...interface{}) {
	if !l.enabled {
		return
	}
	l.write(fmt.Sprintf(format, args...))
}

func (l Logger) write(msg string) {
	ts := time.Now().UTC().Format("15:04:05.000")
	if l.tag != "" {
		fmt.Fprintf(l.out, "%s %s [%s] %s\n", ts, l.sev, l.tag, msg)
		return
	}
	fmt.Fprintf(l.out, "%s %s %s\n", ts, l.sev, msg)
}
