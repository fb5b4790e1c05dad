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

package vcs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// commitTimeLayout renders like "March 03, 2024 at 04:15 PM".
const commitTimeLayout = "January 02, 2006 at 03:04 PM"

// 🔧 Options configures the publisher.
type Options struct {
	// Runner executes git. Required.
	Runner CommandRunner
	// Dir is the repository directory git runs in. Defaults to ".".
	Dir string
	// Clock supplies the commit timestamp. Defaults to time.Now.
	Clock func() time.Time
}

// 📦 Publisher stages, commits, and pushes working-tree changes.
type Publisher struct {
	runner CommandRunner
	dir    string
	clock  func() time.Time
}

// 🏭 New creates a publisher with the given options.
func New(opts Options) (*Publisher, error) {
	if opts.Runner == nil {
		return nil, errors.Errorf("command runner is required")
	}
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Publisher{
		runner: opts.Runner,
		dir:    opts.Dir,
		clock:  opts.Clock,
	}, nil
}

// 🎯 Result describes what the publish step did.
type Result struct {
	// Committed is true when a commit was created and pushed. False means
	// the tree was already clean and nothing needed to happen.
	Committed bool
	// Message is the commit message, when Committed.
	Message string
}

// Dir returns the repository directory the publisher operates in.
func (p *Publisher) Dir() string {
	return p.dir
}

// 🏃 Publish stages everything, and if the tree is dirty, commits with a
// timestamped message and pushes. A clean tree is a success, not an error.
// Each git invocation is awaited before the next starts.
func (p *Publisher) Publish(ctx context.Context) (*Result, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("dir", p.dir).Msg("staging changes")

	if _, err := p.runner.Run(ctx, p.dir, "git", "add", "."); err != nil {
		return nil, errors.Errorf("staging changes: %w", err)
	}

	out, err := p.runner.Run(ctx, p.dir, "git", "status", "--porcelain")
	if err != nil {
		return nil, errors.Errorf("checking status: %w", err)
	}
	if strings.TrimSpace(out) == "" {
		logger.Debug().Str("dir", p.dir).Msg("working tree clean, nothing to commit")
		return &Result{Committed: false}, nil
	}

	message := fmt.Sprintf("fetchpush: %s", p.clock().Format(commitTimeLayout))
	if _, err := p.runner.Run(ctx, p.dir, "git", "commit", "-m", message); err != nil {
		return nil, errors.Errorf("committing changes: %w", err)
	}

	if _, err := p.runner.Run(ctx, p.dir, "git", "push"); err != nil {
		return nil, errors.Errorf("pushing changes: %w", err)
	}

	logger.Info().Str("dir", p.dir).Str("message", message).Msg("changes pushed")
	return &Result{Committed: true, Message: message}, nil
}
