package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fetchpush/fetchpush/pkg/config"
	"github.com/fetchpush/fetchpush/pkg/expand"
	"github.com/fetchpush/fetchpush/pkg/fetch"
	"github.com/fetchpush/fetchpush/pkg/operation"
	"github.com/fetchpush/fetchpush/pkg/status"
	"github.com/fetchpush/fetchpush/pkg/vcs"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

// Handler carries the resolved flags for one invocation
type Handler struct {
	mappingFile string
	repoDir     string
	createDirs  bool
	ignore      []string
	timeout     time.Duration
	debug       bool

	// runner overrides the git runner, for tests. Nil means exec.
	runner vcs.CommandRunner
}

// NewRootCmd assembles the fetchpush command line interface
func NewRootCmd() *cobra.Command {
	h := &Handler{}

	cmd := &cobra.Command{
		Use:   "fetchpush <mapping-file>",
		Short: "Download mapped URLs and publish the results through git",
		Long: `fetchpush reads a mapping of URLs to local file paths, downloads each URL
in order, writes the bodies to the mapped paths, and commits and pushes
whatever landed on disk. URLs may carry {placeholder} tokens such as
{one_week_ago}, expanded at load time.`,
		Args:    cobra.ExactArgs(1),
		Version: FormatVersion(),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Usage is shown for argument errors only, not runtime failures.
			cmd.SilenceUsage = true
			h.mappingFile = args[0]
			ctx := setupLogging(cmd.Context(), h.debug)
			return h.Run(ctx)
		},
	}

	cmd.SetVersionTemplate("{{.Version}}")

	cmd.Flags().StringVar(&h.repoDir, "repo-dir", ".", "git repository to commit and push from")
	cmd.Flags().BoolVar(&h.createDirs, "create-dirs", true, "create missing parent directories for destination paths")
	cmd.Flags().StringSliceVar(&h.ignore, "ignore", nil, "glob patterns of destination paths to skip")
	cmd.Flags().DurationVar(&h.timeout, "timeout", 0, "per-download HTTP timeout (0 disables)")
	cmd.Flags().BoolVarP(&h.debug, "debug", "d", false, "enable debug logging")

	return cmd
}

// setupLogging configures zerolog based on flags and tags every event with
// a run id
func setupLogging(ctx context.Context, debug bool) context.Context {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(os.Stderr).Level(level).With().
		Timestamp().
		Str("run_id", newRunID()).
		Logger()
	zerolog.DefaultContextLogger = &logger
	return logger.WithContext(ctx)
}

// newRunID returns a sortable id correlating the log lines of one run.
func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to timestamp if UUID generation fails
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return id.String()
}

// Run executes one full download-and-publish pass over the mapping file
func (h *Handler) Run(ctx context.Context) error {
	console := status.New(ctx, os.Stdout)
	console.Header(fmt.Sprintf("fetching %s", h.mappingFile))

	cfg, err := config.Load(ctx, h.mappingFile, config.Options{
		Registry:  expand.New(),
		OnWarning: console.Warningf,
	})
	if err != nil {
		return errors.Errorf("loading mapping file: %w", err)
	}

	runner := h.runner
	if runner == nil {
		runner = vcs.NewExecRunner()
	}
	publisher, err := vcs.New(vcs.Options{
		Runner: runner,
		Dir:    h.repoDir,
	})
	if err != nil {
		return errors.Errorf("creating publisher: %w", err)
	}

	op, err := operation.New(operation.Options{
		Mapping:        cfg.Mapping,
		Fetcher:        fetch.New(h.timeout),
		Publisher:      publisher,
		Console:        console,
		Reporter:       status.NewPublishReporter(ctx),
		CreateDirs:     h.createDirs,
		IgnorePatterns: append(cfg.Ignore, h.ignore...),
		RepoDir:        h.repoDir,
	})
	if err != nil {
		return errors.Errorf("creating operation: %w", err)
	}

	if _, err := op.Run(ctx); err != nil {
		return err
	}
	return nil
}
