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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fetchpush/fetchpush/pkg/config"
	"github.com/fetchpush/fetchpush/pkg/vcs"
)

func TestRunDownloadsAndPublishes(t *testing.T) {
	ctx := testContext(t)
	console, out := testConsole(t, ctx)
	tmpDir := t.TempDir()

	destA := filepath.Join(tmpDir, "a.csv")
	destB := filepath.Join(tmpDir, "b.csv")

	mapping := config.NewMapping()
	mapping.Set("https://example.com/a.csv", destA)
	mapping.Set("https://example.com/b.csv", destB)

	fetcher := &fakeFetcher{bodies: map[string][]byte{
		"https://example.com/a.csv": []byte("alpha"),
		"https://example.com/b.csv": []byte("beta"),
	}}
	publisher := &fakePublisher{result: &vcs.Result{Committed: true, Message: "fetchpush: March 03, 2024 at 04:15 PM"}}
	reporter := &fakeReporter{}

	op, err := New(Options{
		Mapping:   mapping,
		Fetcher:   fetcher,
		Publisher: publisher,
		Console:   console,
		Reporter:  reporter,
		RepoDir:   tmpDir,
	})
	require.NoError(t, err, "New should succeed")

	summary, err := op.Run(ctx)
	require.NoError(t, err, "Run should succeed")

	assert.Equal(t, &Summary{Total: 2, Succeeded: 2, Published: true, Committed: true}, summary, "summary should match")
	assert.Equal(t, []string{"https://example.com/a.csv", "https://example.com/b.csv"}, fetcher.calls,
		"downloads should run in mapping order")
	assert.Equal(t, 1, publisher.calls, "publish should run once")
	assert.Equal(t, []string{
		"staging:" + tmpDir,
		"committed:fetchpush: March 03, 2024 at 04:15 PM",
		"pushed",
	}, reporter.events, "publish narration should match")

	gotA, err := os.ReadFile(destA)
	require.NoError(t, err, "first file should exist")
	assert.Equal(t, "alpha", string(gotA), "first body should match")
	gotB, err := os.ReadFile(destB)
	require.NoError(t, err, "second file should exist")
	assert.Equal(t, "beta", string(gotB), "second body should match")

	assert.Contains(t, out.String(), "Download complete: 2/2 files successful", "summary line should be printed")
	assert.Contains(t, out.String(), "Git push completed successfully", "publish success should close the run")
}

func TestRunPartialFailureStillPublishes(t *testing.T) {
	ctx := testContext(t)
	console, out := testConsole(t, ctx)
	tmpDir := t.TempDir()

	mapping := config.NewMapping()
	mapping.Set("https://example.com/bad.csv", filepath.Join(tmpDir, "bad.csv"))
	mapping.Set("https://example.com/good.csv", filepath.Join(tmpDir, "good.csv"))

	fetcher := &fakeFetcher{
		bodies: map[string][]byte{"https://example.com/good.csv": []byte("fine")},
		errs:   map[string]error{"https://example.com/bad.csv": assert.AnError},
	}
	publisher := &fakePublisher{result: &vcs.Result{Committed: true, Message: "fetchpush: test"}}
	reporter := &fakeReporter{}

	op, err := New(Options{
		Mapping:   mapping,
		Fetcher:   fetcher,
		Publisher: publisher,
		Console:   console,
		Reporter:  reporter,
	})
	require.NoError(t, err, "New should succeed")

	summary, err := op.Run(ctx)
	require.NoError(t, err, "one failure should not fail the run")

	assert.Equal(t, 2, summary.Total, "both downloads should be attempted")
	assert.Equal(t, 1, summary.Succeeded, "only one download should succeed")
	assert.True(t, summary.Published, "publish should still run")
	assert.Equal(t, 1, publisher.calls, "publish should run once")

	assert.NoFileExists(t, filepath.Join(tmpDir, "bad.csv"), "failed download should not leave a file")
	assert.FileExists(t, filepath.Join(tmpDir, "good.csv"), "successful download should be written")
	assert.Contains(t, out.String(), "Download complete: 1/2 files successful", "summary line should be printed")
}

func TestRunNothingDownloadedSkipsPublish(t *testing.T) {
	ctx := testContext(t)
	console, out := testConsole(t, ctx)
	tmpDir := t.TempDir()

	mapping := config.NewMapping()
	mapping.Set("https://example.com/a.csv", filepath.Join(tmpDir, "a.csv"))
	mapping.Set("https://example.com/b.csv", filepath.Join(tmpDir, "b.csv"))

	fetcher := &fakeFetcher{errs: map[string]error{
		"https://example.com/a.csv": assert.AnError,
		"https://example.com/b.csv": assert.AnError,
	}}
	publisher := &fakePublisher{result: &vcs.Result{Committed: true}}
	reporter := &fakeReporter{}

	op, err := New(Options{
		Mapping:   mapping,
		Fetcher:   fetcher,
		Publisher: publisher,
		Console:   console,
		Reporter:  reporter,
	})
	require.NoError(t, err, "New should succeed")

	summary, err := op.Run(ctx)
	require.NoError(t, err, "a fully failed batch is not a run error")

	assert.Equal(t, &Summary{Total: 2, Succeeded: 0}, summary, "summary should match")
	assert.Equal(t, 0, publisher.calls, "publish should not run")
	assert.Equal(t, []string{"skipped_publish"}, reporter.events, "skip should be narrated")
	assert.Contains(t, out.String(), "Download complete: 0/2 files successful", "summary line should be printed")
	assert.NotContains(t, out.String(), "Git push completed successfully", "skipped publish should not claim success")
}

func TestRunEmptyMapping(t *testing.T) {
	ctx := testContext(t)
	console, _ := testConsole(t, ctx)

	fetcher := &fakeFetcher{}
	publisher := &fakePublisher{}

	op, err := New(Options{
		Mapping:   config.NewMapping(),
		Fetcher:   fetcher,
		Publisher: publisher,
		Console:   console,
		Reporter:  &fakeReporter{},
	})
	require.NoError(t, err, "New should succeed")

	_, err = op.Run(ctx)
	require.Error(t, err, "Run should return error")
	assert.Contains(t, err.Error(), "no valid URL mappings found", "error should name the condition")
	assert.Empty(t, fetcher.calls, "nothing should be fetched")
	assert.Equal(t, 0, publisher.calls, "nothing should be published")
}

func TestRunCreatesParentDirs(t *testing.T) {
	ctx := testContext(t)
	console, _ := testConsole(t, ctx)
	tmpDir := t.TempDir()

	dest := filepath.Join(tmpDir, "nested", "deep", "a.csv")
	mapping := config.NewMapping()
	mapping.Set("https://example.com/a.csv", dest)

	op, err := New(Options{
		Mapping:    mapping,
		Fetcher:    &fakeFetcher{bodies: map[string][]byte{"https://example.com/a.csv": []byte("data")}},
		Publisher:  &fakePublisher{result: &vcs.Result{Committed: true}},
		Console:    console,
		Reporter:   &fakeReporter{},
		CreateDirs: true,
	})
	require.NoError(t, err, "New should succeed")

	summary, err := op.Run(ctx)
	require.NoError(t, err, "Run should succeed")
	assert.Equal(t, 1, summary.Succeeded, "download should succeed")

	got, err := os.ReadFile(dest)
	require.NoError(t, err, "file should exist in the created directory")
	assert.Equal(t, "data", string(got), "body should match")
}

func TestRunMissingParentDirFailsEntry(t *testing.T) {
	ctx := testContext(t)
	console, out := testConsole(t, ctx)
	tmpDir := t.TempDir()

	dest := filepath.Join(tmpDir, "missing", "a.csv")
	mapping := config.NewMapping()
	mapping.Set("https://example.com/a.csv", dest)

	publisher := &fakePublisher{result: &vcs.Result{Committed: true}}
	op, err := New(Options{
		Mapping:    mapping,
		Fetcher:    &fakeFetcher{bodies: map[string][]byte{"https://example.com/a.csv": []byte("data")}},
		Publisher:  publisher,
		Console:    console,
		Reporter:   &fakeReporter{},
		CreateDirs: false,
	})
	require.NoError(t, err, "New should succeed")

	summary, err := op.Run(ctx)
	require.NoError(t, err, "a write failure is a per-entry failure, not a run error")

	assert.Equal(t, 0, summary.Succeeded, "write should fail without the parent dir")
	assert.Equal(t, 0, publisher.calls, "publish should not run")
	assert.Contains(t, out.String(), "writing "+dest, "failure should be narrated")
	assert.NoDirExists(t, filepath.Join(tmpDir, "missing"), "parent dir should not be created")
}

func TestRunIgnorePatterns(t *testing.T) {
	ctx := testContext(t)
	console, out := testConsole(t, ctx)
	tmpDir := t.TempDir()

	keep := filepath.Join(tmpDir, "a.csv")
	ignored := filepath.Join(tmpDir, "b.tmp")

	mapping := config.NewMapping()
	mapping.Set("https://example.com/a.csv", keep)
	mapping.Set("https://example.com/b.tmp", ignored)

	fetcher := &fakeFetcher{bodies: map[string][]byte{"https://example.com/a.csv": []byte("data")}}
	op, err := New(Options{
		Mapping:        mapping,
		Fetcher:        fetcher,
		Publisher:      &fakePublisher{result: &vcs.Result{Committed: true}},
		Console:        console,
		Reporter:       &fakeReporter{},
		IgnorePatterns: []string{"**/*.tmp"},
	})
	require.NoError(t, err, "New should succeed")

	summary, err := op.Run(ctx)
	require.NoError(t, err, "Run should succeed")

	assert.Equal(t, 1, summary.Total, "skipped entries should not count as attempts")
	assert.Equal(t, 1, summary.Succeeded, "the kept entry should succeed")
	assert.Equal(t, 1, summary.Skipped, "the ignored entry should be counted")
	assert.Equal(t, []string{"https://example.com/a.csv"}, fetcher.calls, "ignored URLs should not be fetched")
	assert.NoFileExists(t, ignored, "ignored destination should not be written")
	assert.Contains(t, out.String(), "Skipping "+ignored+" (matches **/*.tmp)", "skip should be narrated")
	assert.Contains(t, out.String(), "Download complete: 1/1 files successful", "tally should exclude skipped entries")
}

func TestRunPublishFailure(t *testing.T) {
	ctx := testContext(t)
	console, out := testConsole(t, ctx)
	tmpDir := t.TempDir()

	mapping := config.NewMapping()
	mapping.Set("https://example.com/a.csv", filepath.Join(tmpDir, "a.csv"))

	reporter := &fakeReporter{}
	op, err := New(Options{
		Mapping:   mapping,
		Fetcher:   &fakeFetcher{bodies: map[string][]byte{"https://example.com/a.csv": []byte("data")}},
		Publisher: &fakePublisher{err: assert.AnError},
		Console:   console,
		Reporter:  reporter,
	})
	require.NoError(t, err, "New should succeed")

	summary, err := op.Run(ctx)
	require.Error(t, err, "a publish failure fails the run")
	assert.Contains(t, err.Error(), "publishing changes", "error should name the failing step")
	assert.NotNil(t, summary, "summary should still describe the downloads")
	assert.False(t, summary.Published, "publish should not be marked successful")
	assert.Contains(t, reporter.events, "failed:"+assert.AnError.Error(), "failure should be narrated")
	assert.NotContains(t, out.String(), "Git push completed successfully", "failed publish should not claim success")
}

func TestRunCleanTree(t *testing.T) {
	ctx := testContext(t)
	console, out := testConsole(t, ctx)
	tmpDir := t.TempDir()

	mapping := config.NewMapping()
	mapping.Set("https://example.com/a.csv", filepath.Join(tmpDir, "a.csv"))

	reporter := &fakeReporter{}
	op, err := New(Options{
		Mapping:   mapping,
		Fetcher:   &fakeFetcher{bodies: map[string][]byte{"https://example.com/a.csv": []byte("data")}},
		Publisher: &fakePublisher{result: &vcs.Result{Committed: false}},
		Console:   console,
		Reporter:  reporter,
	})
	require.NoError(t, err, "New should succeed")

	summary, err := op.Run(ctx)
	require.NoError(t, err, "a clean tree is a success")

	assert.True(t, summary.Published, "publish step should have run")
	assert.False(t, summary.Committed, "nothing should be committed")
	assert.Equal(t, []string{"staging:.", "nothing_to_commit"}, reporter.events, "narration should match")
	assert.Contains(t, out.String(), "Git push completed successfully",
		"a clean tree is still a successful publish")
}
