// Package generator composes the message pipeline: working-tree status and
// diff, prompt building, one backend call, and post-processing. One
// invocation owns all of its data; there is no shared state, no retry, and
// no background work. The backend call is the single suspension point;
// cancel the context to abort it.
package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"commitgen/cli/internal/backend"
	"commitgen/cli/internal/git"
	"commitgen/cli/internal/message"
	"commitgen/cli/internal/prompt"
	"commitgen/cli/internal/tokens"
	"commitgen/cli/internal/trace"
)

// ErrNoChanges indicates the working tree has nothing to describe. Terminal;
// the backend is never contacted.
var ErrNoChanges = errors.New("no changes to describe; modify or stage files first")

// ErrConflicts indicates unresolved merge conflicts in the working tree.
var ErrConflicts = errors.New("unresolved merge conflicts; resolve them before committing")

// VCS is the working-tree collaborator. The real implementation shells out
// to git; tests substitute fakes.
type VCS interface {
	Status(ctx context.Context) (*git.Snapshot, error)
	Diff(ctx context.Context, staged bool) (string, error)
}

// Options configures one Generate call.
type Options struct {
	// Gen controls prompt building and post-processing (format, budgets).
	Gen prompt.Options
	// StagedOnly disables the fallback from an empty staged diff to the
	// working-tree diff.
	StagedOnly bool
	// ContextLimit and WarnThreshold drive the pre-flight token warning;
	// zero ContextLimit disables it.
	ContextLimit  int
	WarnThreshold float64
}

// Result is the outcome of one pipeline run. Status and Diff are the inputs
// the message was generated from, kept so callers can run the suggestion
// heuristics without re-reading the tree.
type Result struct {
	Message string
	Status  *git.Snapshot
	Diff    string
}

// Generator runs the pipeline against an injected VCS and backend.
type Generator struct {
	vcs     VCS
	backend backend.Backend
	tracer  *trace.Tracer
	warnOut io.Writer
}

// New builds a Generator. tr may be nil (no tracing); warnOut may be nil
// (token warnings dropped).
func New(vcs VCS, b backend.Backend, tr *trace.Tracer, warnOut io.Writer) *Generator {
	if tr == nil {
		tr = trace.New(nil)
	}
	return &Generator{vcs: vcs, backend: b, tracer: tr, warnOut: warnOut}
}

// Generate runs the pipeline once: status, no-changes check, diff (staged,
// else working tree), prompt, backend, post-process. The raw backend text
// is never returned; the processed message always honors the subject
// budget even when the model ignores instructions.
func (g *Generator) Generate(ctx context.Context, opts Options) (*Result, error) {
	status, err := g.vcs.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("read status: %w", err)
	}
	if len(status.Conflicted) > 0 {
		return nil, ErrConflicts
	}
	if !status.HasChanges() {
		return nil, ErrNoChanges
	}

	diff, err := g.vcs.Diff(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("read staged diff: %w", err)
	}
	if strings.TrimSpace(diff) == "" && !opts.StagedOnly {
		diff, err = g.vcs.Diff(ctx, false)
		if err != nil {
			return nil, fmt.Errorf("read working-tree diff: %w", err)
		}
	}

	p := prompt.Build(status, diff, opts.Gen)
	g.tracer.Section("Prompt")
	g.tracer.Printf("%s\n", p)

	if g.warnOut != nil && opts.ContextLimit > 0 {
		est := tokens.Estimate(p)
		if w := tokens.WarnIfOver(est, tokens.DefaultResponseReserve, opts.ContextLimit, opts.WarnThreshold); w != "" {
			fmt.Fprintln(g.warnOut, "Warning: "+w)
		}
	}

	raw, err := g.backend.Generate(ctx, p)
	if err != nil {
		return nil, err
	}
	g.tracer.Section("Raw response")
	g.tracer.Printf("%s\n", raw)

	msg := message.Process(raw, opts.Gen)
	g.tracer.Section("Processed message")
	g.tracer.Printf("%s\n", msg)

	return &Result{Message: msg, Status: status, Diff: diff}, nil
}
