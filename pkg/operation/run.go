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
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/fetchpush/fetchpush/pkg/config"
)

// 🏃 Run executes the pipeline: every mapping entry in order, then the
// publish step when at least one download succeeded. Download failures are
// narrated and counted but never abort the loop; only an empty mapping or a
// failed publish returns an error.
func (o *Operator) Run(ctx context.Context) (*Summary, error) {
	logger := zerolog.Ctx(ctx)

	entries := o.mapping.Entries()
	if len(entries) == 0 {
		return nil, errors.Errorf("no valid URL mappings found")
	}

	summary := &Summary{}
	for _, entry := range entries {
		if pattern, ignored := o.shouldIgnore(ctx, entry.Destination); ignored {
			o.console.Skipped(entry.Destination, pattern)
			summary.Skipped++
			continue
		}

		summary.Total++
		o.console.Downloading(entry.Source, entry.Destination)

		if err := o.download(ctx, entry); err != nil {
			o.console.DownloadFailed(err)
			continue
		}

		summary.Succeeded++
		o.console.Downloaded(entry.Destination)
	}

	o.console.Summary(summary.Succeeded, summary.Total)

	if summary.Succeeded == 0 {
		o.reporter.SkippedPublish()
		return summary, nil
	}

	o.reporter.Staging(o.repoDir)
	res, err := o.publisher.Publish(ctx)
	if err != nil {
		o.reporter.Failed(err)
		return summary, errors.Errorf("publishing changes: %w", err)
	}

	summary.Published = true
	if res.Committed {
		summary.Committed = true
		o.reporter.Committed(res.Message)
		o.reporter.Pushed()
	} else {
		o.reporter.NothingToCommit()
	}

	// A clean tree still counts: the publish step ran without failing.
	o.console.Success("Git push completed successfully")

	logger.Info().
		Int("succeeded", summary.Succeeded).
		Int("total", summary.Total).
		Int("skipped", summary.Skipped).
		Bool("committed", summary.Committed).
		Msg("run complete")

	return summary, nil
}

// 📄 download fetches one entry and writes the body to its destination.
func (o *Operator) download(ctx context.Context, entry config.Entry) error {
	body, err := o.fetcher.Fetch(ctx, entry.Source)
	if err != nil {
		return err
	}

	if o.createDirs {
		if dir := filepath.Dir(entry.Destination); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return errors.Errorf("creating parent directories: %w", err)
			}
		}
	}

	if err := os.WriteFile(entry.Destination, body, 0644); err != nil {
		return errors.Errorf("writing %s: %w", entry.Destination, err)
	}

	return nil
}

// 🔍 shouldIgnore checks a destination against the ignore patterns.
func (o *Operator) shouldIgnore(ctx context.Context, path string) (string, bool) {
	logger := zerolog.Ctx(ctx)

	for _, pattern := range o.ignorePatterns {
		matched, err := doublestar.Match(pattern, path)
		if err != nil {
			logger.Debug().Str("pattern", pattern).Str("path", path).Err(err).Msg("error matching pattern")
			continue
		}
		if matched {
			logger.Debug().Str("path", path).Str("pattern", pattern).Msg("destination ignored by pattern")
			return pattern, true
		}
	}

	return "", false
}
