package status

import (
	"context"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

// 📢 PublishReporter narrates the stage/commit/push step.
type PublishReporter struct {
	log zerolog.Logger // for debug/error logging
}

// 🎯 NewPublishReporter creates a reporter mirroring into the zerolog logger
// carried by ctx.
func NewPublishReporter(ctx context.Context) *PublishReporter {
	return &PublishReporter{
		log: *zerolog.Ctx(ctx),
	}
}

// 📦 Staging reports that working-tree changes are being staged.
func (r *PublishReporter) Staging(dir string) {
	pterm.Info.WithPrefix(pterm.Prefix{Text: "📦"}).Printf("Staging changes in %s\n", dir)
	r.log.Info().Str("dir", dir).Msg("staging changes")
}

// ✨ NothingToCommit reports a clean tree after staging.
func (r *PublishReporter) NothingToCommit() {
	pterm.Info.WithPrefix(pterm.Prefix{Text: "✨"}).Println("No changes to commit")
	r.log.Info().Msg("no changes to commit")
}

// ✅ Committed reports the created commit.
func (r *PublishReporter) Committed(message string) {
	pterm.Success.WithPrefix(pterm.Prefix{Text: "✅"}).Printf("Changes committed: %s\n", message)
	r.log.Info().Str("message", message).Msg("changes committed")
}

// 🚀 Pushed reports a successful push to the remote.
func (r *PublishReporter) Pushed() {
	pterm.Success.WithPrefix(pterm.Prefix{Text: "🚀"}).Println("Changes pushed to remote")
	r.log.Info().Msg("changes pushed")
}

// ⏭️ SkippedPublish reports that no downloads succeeded, so nothing is
// staged or pushed.
func (r *PublishReporter) SkippedPublish() {
	pterm.Warning.WithPrefix(pterm.Prefix{Text: "⏭️"}).Println("No files downloaded, skipping git push")
	r.log.Warn().Msg("no files downloaded, skipping publish")
}

// ❌ Failed reports a publish failure with the underlying error.
func (r *PublishReporter) Failed(err error) {
	pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"}).Println("Publish failed")
	pterm.Error.Println(err)
	r.log.Error().Err(err).Msg("publish failed")
}
