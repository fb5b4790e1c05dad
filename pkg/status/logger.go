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

// Package status renders user-facing progress on the console and mirrors it
// into zerolog.
package status

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// entryIndent is the number of spaces before each per-file line.
const entryIndent = 2

// 🎯 Logger writes human-readable progress lines to the console. Every line
// is also logged structurally so --debug sessions can correlate the two.
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
}

// 🏭 New creates a logger writing to console, mirroring into the zerolog
// logger carried by ctx.
func New(ctx context.Context, console io.Writer) *Logger {
	return &Logger{
		zlog:    *zerolog.Ctx(ctx),
		console: console,
	}
}

// 📝 formatEntry formats a per-file line with a colored status symbol.
func formatEntry(symbol rune, symbolColor color.Attribute, msg string) string {
	return fmt.Sprintf("%*s%s %s",
		entryIndent, "",
		color.New(symbolColor).Sprint(string(symbol)),
		msg)
}

// 📝 Header prints the tool banner with a run description.
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("fetchpush")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Downloading announces a download attempt.
func (l *Logger) Downloading(url, dest string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console, formatEntry('⟳', color.FgBlue, fmt.Sprintf("Downloading %s -> %s", url, dest)))
	l.zlog.Info().Str("url", url).Str("destination", dest).Msg("downloading")
}

// 📝 Downloaded announces a completed download.
func (l *Logger) Downloaded(dest string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console, formatEntry('✓', color.FgGreen, fmt.Sprintf("Successfully downloaded %s", dest)))
	l.zlog.Info().Str("destination", dest).Msg("downloaded")
}

// 📝 DownloadFailed announces a failed download. The error text already
// carries the URL and cause.
func (l *Logger) DownloadFailed(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console, formatEntry('✗', color.FgRed, err.Error()))
	l.zlog.Error().Err(err).Msg("download failed")
}

// 📝 Skipped announces an entry excluded by an ignore pattern.
func (l *Logger) Skipped(dest, pattern string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console, formatEntry('•', color.FgYellow, fmt.Sprintf("Skipping %s (matches %s)", dest, pattern)))
	l.zlog.Info().Str("destination", dest).Str("pattern", pattern).Msg("skipped by ignore pattern")
}

// 📝 Summary prints the success tally after the download loop.
func (l *Logger) Summary(succeeded, total int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "\n%s\n",
		color.New(color.Bold).Sprint(fmt.Sprintf("Download complete: %d/%d files successful", succeeded, total)))
	l.zlog.Info().Int("succeeded", succeeded).Int("total", total).Msg("download complete")
}

// 📝 Success prints the closing line of a run whose publish step succeeded.
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "\n%s\n", color.New(color.Bold, color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning prints a warning line. Malformed mapping lines land here.
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console, color.New(color.FgYellow).Sprint("Warning: "+msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Warningf formats and prints a warning line.
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}
