package message

import (
	"reflect"
	"strings"
	"testing"

	"commitgen/cli/internal/git"
)

func TestSuggest_missingTests(t *testing.T) {
	t.Parallel()
	status := &git.Snapshot{Added: []string{"parser.go"}}
	got := Suggest("feat: add parser", status, "+func Parse() {}")
	if !hasSuggestion(got, SeverityWarning, "adding tests") {
		t.Errorf("expected missing-tests warning, got %v", got)
	}

	// A test file among the changes silences the warning.
	status = &git.Snapshot{Added: []string{"parser.go"}, Modified: []string{"parser_test.go"}}
	got = Suggest("feat: add parser", status, "+func Parse() {}")
	if hasSuggestion(got, SeverityWarning, "adding tests") {
		t.Errorf("unexpected missing-tests warning with test file changed: %v", got)
	}
}

func TestSuggest_testSubstringIsCaseSensitive(t *testing.T) {
	t.Parallel()
	// "Tests.java" does not contain the lowercase substring "test".
	status := &git.Snapshot{Added: []string{"ParserTests.java"}}
	got := Suggest("feat: add parser", status, "")
	if !hasSuggestion(got, SeverityWarning, "adding tests") {
		t.Errorf("expected missing-tests warning for uppercase Test path, got %v", got)
	}
}

func TestSuggest_missingDocs(t *testing.T) {
	t.Parallel()
	status := &git.Snapshot{Modified: []string{"api.ts"}, Added: []string{"api_test.ts"}}
	got := Suggest("feat: widen api", status, "+export function widen() {}")
	if !hasSuggestion(got, SeverityInfo, "documentation") {
		t.Errorf("expected docs info for exported surface, got %v", got)
	}

	status = &git.Snapshot{Modified: []string{"api.ts", "README.md"}, Added: []string{"api_test.ts"}}
	got = Suggest("feat: widen api", status, "+export function widen() {}")
	if hasSuggestion(got, SeverityInfo, "documentation") {
		t.Errorf("unexpected docs info when README changed: %v", got)
	}
}

func TestSuggest_breakingChange(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		status *git.Snapshot
		diff   string
		want   bool
	}{
		{"deleted_file", &git.Snapshot{Deleted: []string{"old.ts"}}, "", true},
		{"breaking_in_diff", &git.Snapshot{Modified: []string{"a_test.md"}}, "+// BREAKING: renamed flag", true},
		{"lowercase_breaking", &git.Snapshot{Modified: []string{"a_test.md"}}, "+this is a breaking rename", true},
		{"clean", &git.Snapshot{Modified: []string{"a_test.md"}}, "+harmless", false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Suggest("fix: remove old module", tt.status, tt.diff)
			if has := hasSuggestion(got, SeverityWarning, "breaking change"); has != tt.want {
				t.Errorf("breaking-change suggestion = %v, want %v (%v)", has, tt.want, got)
			}
		})
	}
}

func TestSuggest_appendsValidationFindings(t *testing.T) {
	t.Parallel()
	status := &git.Snapshot{Deleted: []string{"old.ts"}}
	msg := "completely unconventional and " + strings.Repeat("long ", 12) + "subject"
	got := Suggest(msg, status, "")

	if !hasSuggestion(got, SeverityError, "conventional format") {
		t.Errorf("expected format error passthrough, got %v", got)
	}
	// Validation findings come after the change-set heuristics.
	if len(got) < 2 || got[0].Type != SeverityWarning || !strings.Contains(got[0].Message, "breaking change") {
		t.Errorf("expected breaking-change warning first, got %v", got)
	}
}

func TestSuggest_deterministicOrder(t *testing.T) {
	t.Parallel()
	status := &git.Snapshot{
		Added:    []string{"api.go"},
		Deleted:  []string{"legacy.go"},
		Modified: []string{"core.go"},
	}
	diff := "+export breaking change"
	msg := "renamed everything"

	first := Suggest(msg, status, diff)
	second := Suggest(msg, status, diff)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Suggest is not deterministic:\nfirst  = %v\nsecond = %v", first, second)
	}
	// Fixed heuristic order: tests, docs, breaking, then validation findings.
	if len(first) < 3 {
		t.Fatalf("expected at least 3 suggestions, got %v", first)
	}
	if !strings.Contains(first[0].Message, "tests") ||
		!strings.Contains(first[1].Message, "documentation") ||
		!strings.Contains(first[2].Message, "breaking change") {
		t.Errorf("unexpected suggestion order: %v", first)
	}
}

func hasSuggestion(list []Suggestion, sev Severity, substr string) bool {
	for _, s := range list {
		if s.Type == sev && strings.Contains(s.Message, substr) {
			return true
		}
	}
	return false
}
