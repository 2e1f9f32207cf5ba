package message

import (
	"strings"
	"testing"

	"commitgen/cli/internal/prompt"
)

func TestProcess_textCleanup(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "trims_whitespace",
			raw:  "  \nfeat: add parser\n  ",
			want: "feat: add parser",
		},
		{
			name: "strips_fenced_code_block",
			raw:  "feat: add parser\n\n```go\nfunc Parse() {}\n```",
			want: "feat: add parser",
		},
		{
			name: "unwraps_inline_code",
			raw:  "feat: use `sync.Once` for init",
			want: "feat: use sync.Once for init",
		},
		{
			name: "unwraps_bold_and_italic",
			raw:  "**feat**: *add* retry logic",
			want: "feat: add retry logic",
		},
		{
			name: "collapses_space_runs",
			raw:  "feat:  add   spacing",
			want: "feat: add spacing",
		},
		{
			name: "collapses_newline_runs",
			raw:  "feat: add thing\n\n\n\nLonger body here.",
			want: "feat: add thing\n\nLonger body here.",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Process(tt.raw, prompt.Options{})
			if got != tt.want {
				t.Errorf("Process(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestProcess_subjectBudgetEnforced(t *testing.T) {
	t.Parallel()
	raws := []string{
		"feat: add a very long description that exceeds the fifty character budget by a lot",
		strings.Repeat("word ", 40),
		"a subject line without any colon that runs on and on and on and on and on",
		"scope-with-a-really-long-prefix-before-the-colon-way-past-budget: tiny",
	}
	for _, budget := range []int{20, 50, 72} {
		for _, raw := range raws {
			got := Process(raw, prompt.Options{MaxLength: budget})
			first := strings.SplitN(got, "\n", 2)[0]
			if len(first) > budget {
				t.Errorf("budget %d: first line %q is %d characters", budget, first, len(first))
			}
		}
	}
}

func TestProcess_preservesConventionalPrefix(t *testing.T) {
	t.Parallel()
	raw := "feat: add a very long description that exceeds the fifty character budget by a lot"
	got := Process(raw, prompt.Options{MaxLength: 50})
	if !strings.HasPrefix(got, "feat:") {
		t.Errorf("Process() = %q, want feat: prefix preserved", got)
	}
	if len(got) > 50 {
		t.Errorf("Process() first line is %d characters, want <= 50", len(got))
	}
}

func TestProcess_scopedPrefixPreserved(t *testing.T) {
	t.Parallel()
	raw := "fix(parser): handle deeply nested expressions without blowing the stack"
	got := Process(raw, prompt.Options{MaxLength: 50})
	if !strings.HasPrefix(got, "fix(parser):") {
		t.Errorf("Process() = %q, want fix(parser): prefix preserved", got)
	}
	if len(got) > 50 {
		t.Errorf("first line is %d characters, want <= 50", len(got))
	}
}

func TestProcess_bodyNotTruncated(t *testing.T) {
	t.Parallel()
	body := strings.Repeat("a long body line that is well over any subject budget ", 3)
	raw := "feat: short subject\n\n" + body
	got := Process(raw, prompt.Options{MaxLength: 50})
	if !strings.Contains(got, strings.TrimSpace(body)) {
		t.Errorf("Process() cut the body:\n%s", got)
	}
}

func TestProcess_neverReturnsOversizedSubjectOnGarbage(t *testing.T) {
	t.Parallel()
	// Worst-case input: markdown soup. Process must still come back with a
	// first line at or under the budget and no error path.
	raw := "```\n" + strings.Repeat("x", 500) + "\n```\n**" + strings.Repeat("y", 200) + "**"
	got := Process(raw, prompt.Options{MaxLength: 50})
	first := strings.SplitN(got, "\n", 2)[0]
	if len(first) > 50 {
		t.Errorf("first line %q is %d characters", first, len(first))
	}
}
