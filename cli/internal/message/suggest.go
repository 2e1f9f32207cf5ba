package message

import (
	"path/filepath"
	"strings"

	"commitgen/cli/internal/git"
	"commitgen/cli/internal/prompt"
)

// Severity classifies a suggestion for display. Suggestions are always
// advisory; an "error" severity mirrors a validation error, it does not
// block anything by itself.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Suggestion is an immutable advisory record.
type Suggestion struct {
	Type    Severity `json:"type"`
	Message string   `json:"message"`
}

// sourceExts are extensions treated as source code for the missing-tests check.
var sourceExts = map[string]struct{}{
	"js": {}, "ts": {}, "py": {}, "java": {}, "go": {}, "rs": {}, "cpp": {}, "c": {},
}

// docExts are extensions treated as documentation for the missing-docs check.
var docExts = map[string]struct{}{
	"md": {}, "rst": {}, "txt": {},
}

// Suggest inspects the change set and the message and returns advisory
// suggestions. The heuristics run in a fixed order — missing tests, missing
// docs, breaking change, then message-quality findings from Validate — and
// that order is an observable contract for display code.
func Suggest(message string, status *git.Snapshot, diff string) []Suggestion {
	var out []Suggestion
	changed := append(append([]string{}, status.Added...), status.Modified...)

	if containsSource(changed) && !containsTestPath(changed) {
		out = append(out, Suggestion{
			Type:    SeverityWarning,
			Message: "Source files changed without test changes; consider adding tests.",
		})
	}

	if (strings.Contains(diff, "export") || strings.Contains(diff, "public")) && !containsDocs(changed) {
		out = append(out, Suggestion{
			Type:    SeverityInfo,
			Message: "Public surface may have changed; consider updating documentation.",
		})
	}

	if strings.Contains(diff, "BREAKING") || strings.Contains(diff, "breaking") || len(status.Deleted) > 0 {
		out = append(out, Suggestion{
			Type:    SeverityWarning,
			Message: "Possible breaking change: consider adding a BREAKING CHANGE footer.",
		})
	}

	r := Validate(message, prompt.FormatConventional)
	for _, e := range r.Errors {
		out = append(out, Suggestion{Type: SeverityError, Message: e})
	}
	for _, w := range r.Warnings {
		out = append(out, Suggestion{Type: SeverityWarning, Message: w})
	}
	return out
}

func extOf(path string) string {
	return strings.TrimPrefix(filepath.Ext(path), ".")
}

func containsSource(paths []string) bool {
	for _, p := range paths {
		if _, ok := sourceExts[extOf(p)]; ok {
			return true
		}
	}
	return false
}

// containsTestPath matches the substrings "test" and "spec" case-sensitively;
// TestFoo.java therefore does not match, which mirrors the heuristic's
// original behavior.
func containsTestPath(paths []string) bool {
	for _, p := range paths {
		if strings.Contains(p, "test") || strings.Contains(p, "spec") {
			return true
		}
	}
	return false
}

func containsDocs(paths []string) bool {
	for _, p := range paths {
		if _, ok := docExts[extOf(p)]; ok {
			return true
		}
		if strings.Contains(strings.ToLower(p), "readme") {
			return true
		}
	}
	return false
}
