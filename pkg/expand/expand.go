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

// Package expand resolves {placeholder} tokens in source URLs against a
// registry of named generator functions.
package expand

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// placeholderPattern matches a single {name} token. The name is any run of
// characters other than a closing brace, so nested or unbalanced braces are
// never consumed past the first '}'.
var placeholderPattern = regexp.MustCompile(`\{[^}]*\}`)

// 🎯 Func generates a replacement value for a placeholder token.
type Func func() string

// 📦 Registry holds the named generator functions available to Expand.
// It is immutable once handed to a loader; Register is only called during
// setup.
type Registry struct {
	funcs map[string]Func
}

// 🏭 New creates a registry with the built-in generators, using the real
// clock.
func New() *Registry {
	return NewWithClock(time.Now)
}

// 🏭 NewWithClock creates a registry with the built-in generators evaluated
// against the given clock. Tests use this to pin time-dependent tokens.
func NewWithClock(clock func() time.Time) *Registry {
	r := &Registry{funcs: map[string]Func{}}

	// one_week_ago yields the calendar date exactly seven days before now,
	// in the local time zone.
	r.funcs["one_week_ago"] = func() string {
		return clock().AddDate(0, 0, -7).Format("2006-01-02")
	}

	return r
}

// 📝 Register adds a generator under the given name, replacing any existing
// one.
func (r *Registry) Register(name string, fn Func) error {
	if name == "" {
		return errors.Errorf("placeholder name is required")
	}
	if strings.ContainsAny(name, "{}") {
		return errors.Errorf("placeholder name %q must not contain braces", name)
	}
	if fn == nil {
		return errors.Errorf("placeholder %q: generator function is required", name)
	}
	r.funcs[name] = fn
	return nil
}

// 🏃 Expand replaces every known {name} token in s with the output of its
// generator. Unknown tokens are left verbatim, braces included, so a URL
// that legitimately contains braces survives untouched. Strings without
// braces are returned as-is.
func (r *Registry) Expand(ctx context.Context, s string) string {
	if !strings.Contains(s, "{") {
		return s
	}

	logger := zerolog.Ctx(ctx)
	return placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := match[1 : len(match)-1]
		fn, ok := r.funcs[name]
		if !ok {
			logger.Debug().Str("token", match).Msg("no generator registered, leaving token as-is")
			return match
		}
		return fn()
	})
}

// 🔍 Names returns the registered placeholder names, for diagnostics.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	return names
}
