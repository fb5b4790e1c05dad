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

package operation

import (
	"context"

	"gitlab.com/tozd/go/errors"

	"github.com/fetchpush/fetchpush/pkg/config"
	"github.com/fetchpush/fetchpush/pkg/status"
	"github.com/fetchpush/fetchpush/pkg/vcs"
)

// 🔌 Fetcher downloads one URL and returns the full body.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// 🔌 Publisher pushes staged working-tree changes. A clean tree is a
// success with Committed unset.
type Publisher interface {
	Publish(ctx context.Context) (*vcs.Result, error)
}

// 🔌 Reporter narrates the publish step to the user.
type Reporter interface {
	Staging(dir string)
	NothingToCommit()
	Committed(message string)
	Pushed()
	SkippedPublish()
	Failed(err error)
}

// 🔧 Options contains configuration for the operator
type Options struct {
	// Mapping is the ordered URL→destination mapping
	Mapping *config.Mapping
	// Fetcher retrieves URL content
	Fetcher Fetcher
	// Publisher runs the version-control publish step
	Publisher Publisher
	// Console narrates downloads on standard output
	Console *status.Logger
	// Reporter narrates the publish step
	Reporter Reporter
	// CreateDirs creates missing destination parent directories
	CreateDirs bool
	// IgnorePatterns are doublestar globs matched against destinations
	IgnorePatterns []string
	// RepoDir is the repository directory, for reporting. Defaults to "."
	RepoDir string
}

// 🏭 New creates a new operator with the given options
func New(opts Options) (*Operator, error) {
	if opts.Mapping == nil {
		return nil, errors.Errorf("mapping is required")
	}
	if opts.Fetcher == nil {
		return nil, errors.Errorf("fetcher is required")
	}
	if opts.Publisher == nil {
		return nil, errors.Errorf("publisher is required")
	}
	if opts.Console == nil {
		return nil, errors.Errorf("console logger is required")
	}
	if opts.Reporter == nil {
		return nil, errors.Errorf("reporter is required")
	}
	if opts.RepoDir == "" {
		opts.RepoDir = "."
	}
	return &Operator{
		mapping:        opts.Mapping,
		fetcher:        opts.Fetcher,
		publisher:      opts.Publisher,
		console:        opts.Console,
		reporter:       opts.Reporter,
		createDirs:     opts.CreateDirs,
		ignorePatterns: opts.IgnorePatterns,
		repoDir:        opts.RepoDir,
	}, nil
}

// 🎮 Operator runs the pipeline end to end.
type Operator struct {
	mapping        *config.Mapping
	fetcher        Fetcher
	publisher      Publisher
	console        *status.Logger
	reporter       Reporter
	createDirs     bool
	ignorePatterns []string
	repoDir        string
}

// 🎯 Summary tallies a completed run.
type Summary struct {
	// Total is the number of downloads attempted (skipped entries excluded).
	Total int
	// Succeeded is the number of files written.
	Succeeded int
	// Skipped is the number of entries excluded by ignore patterns.
	Skipped int
	// Published is true when the publish step ran and succeeded.
	Published bool
	// Committed is true when the publish step created and pushed a commit.
	Committed bool
}
