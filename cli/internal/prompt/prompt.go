// Package prompt builds the generation request sent to the model: a fixed
// preamble, the changed-file listing, the (truncated) diff, and format
// instructions. Pure functions; callers are responsible for rejecting empty
// snapshots before building.
package prompt

import (
	"fmt"
	"strings"

	"commitgen/cli/internal/git"
)

// Format selects the commit message convention the model is asked for.
type Format string

const (
	FormatConventional Format = "conventional"
	FormatSimple       Format = "simple"
	FormatDetailed     Format = "detailed"
)

// Valid reports whether f is one of the recognized formats.
func (f Format) Valid() bool {
	switch f {
	case FormatConventional, FormatSimple, FormatDetailed:
		return true
	}
	return false
}

const (
	// DefaultMaxLength is the default first-line character budget.
	DefaultMaxLength = 50
	// DefaultMaxDiffLength is the default diff truncation budget in bytes.
	DefaultMaxDiffLength = 3000
)

// Options configures prompt building and response post-processing.
// Zero values fall back to defaults; out-of-range values are the config
// layer's problem, not this package's.
type Options struct {
	Format        Format
	MaxLength     int
	MaxDiffLength int
}

// Normalize returns a copy of o with defaults applied to zero fields and an
// unrecognized format replaced by conventional.
func (o Options) Normalize() Options {
	if !o.Format.Valid() {
		o.Format = FormatConventional
	}
	if o.MaxLength <= 0 {
		o.MaxLength = DefaultMaxLength
	}
	if o.MaxDiffLength <= 0 {
		o.MaxDiffLength = DefaultMaxDiffLength
	}
	return o
}

// Build assembles the generation request. Sections appear in fixed order:
// preamble, files changed (non-empty categories only, in the order added,
// modified, deleted, untracked), code changes (diff through TruncateDiff),
// and instructions. The category order is an observable contract shared
// with display code; do not reorder.
func Build(status *git.Snapshot, diff string, opts Options) string {
	opts = opts.Normalize()

	var b strings.Builder
	b.WriteString("Generate a commit message for the following changes.\n\n")

	b.WriteString("Files changed:\n")
	writeCategory(&b, "Added", status.Added)
	writeCategory(&b, "Modified", status.Modified)
	writeCategory(&b, "Deleted", status.Deleted)
	writeCategory(&b, "Untracked", status.Untracked)
	b.WriteString("\n")

	b.WriteString("Code changes:\n")
	b.WriteString(TruncateDiff(diff, opts.MaxDiffLength))
	b.WriteString("\n\n")

	b.WriteString("Instructions:\n")
	fmt.Fprintf(&b, "- Keep the first line under %d characters.\n", opts.MaxLength)
	b.WriteString("- Use the imperative mood (\"add\", not \"added\").\n")
	switch opts.Format {
	case FormatConventional:
		b.WriteString("- Use the conventional commit format: type(scope): description.\n")
		b.WriteString("- Choose the type from: feat, fix, docs, style, refactor, perf, test, chore, ci, build, revert.\n")
	case FormatDetailed:
		b.WriteString("- After the first line, add a blank line and a short body explaining what changed and why.\n")
	case FormatSimple:
		b.WriteString("- Write a single plain summary line, no prefix.\n")
	}
	b.WriteString("- Output only the commit message, no explanation, no markdown.")

	return b.String()
}

// writeCategory writes "- Name: p1, p2\n" or nothing when paths is empty.
func writeCategory(b *strings.Builder, name string, paths []string) {
	if len(paths) == 0 {
		return
	}
	fmt.Fprintf(b, "- %s: %s\n", name, strings.Join(paths, ", "))
}
