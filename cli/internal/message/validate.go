package message

import (
	"fmt"
	"regexp"
	"strings"

	"commitgen/cli/internal/prompt"
)

// Fixed length policy for commit subjects. These are independent of the
// configured generation budget: 72 is the hard ceiling, 50 the advisory
// target.
const (
	hardLengthLimit   = 72
	advisoryLengthMax = 50
)

// conventionalRe matches "type(scope): description" with the enumerated
// type set. The scope is optional; the description must be non-empty.
var conventionalRe = regexp.MustCompile(`^(feat|fix|docs|style|refactor|perf|test|chore|ci|build|revert)(\(.+\))?: .+`)

// ValidationResult holds policy findings for one message. Valid is false
// iff Errors is non-empty; warnings never affect it.
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// Validate checks message against length and format policy. Length rules
// always apply to the first line; the conventional-format rule applies only
// when format is conventional. The imperative-mood check is a heuristic
// (first word after any "prefix:" ending in ed/ing/s) and is a known source
// of false positives; it only ever warns.
func Validate(message string, format prompt.Format) ValidationResult {
	var r ValidationResult
	lines := strings.Split(message, "\n")
	firstLine := lines[0]

	switch {
	case len(firstLine) > hardLengthLimit:
		r.Errors = append(r.Errors, fmt.Sprintf("First line is %d characters; the maximum is %d.", len(firstLine), hardLengthLimit))
	case len(firstLine) > advisoryLengthMax:
		r.Warnings = append(r.Warnings, fmt.Sprintf("First line is %d characters; %d or fewer is recommended.", len(firstLine), advisoryLengthMax))
	}

	if format == prompt.FormatConventional && !conventionalRe.MatchString(firstLine) {
		r.Errors = append(r.Errors, `First line does not match the conventional format "type(scope): description".`)
	}

	if word := firstWordAfterPrefix(firstLine); looksNonImperative(word) {
		r.Warnings = append(r.Warnings, fmt.Sprintf("Consider the imperative mood: %q looks like past tense or a description.", word))
	}

	if len(lines) > 1 && lines[1] != "" {
		r.Warnings = append(r.Warnings, "Separate the subject from the body with a blank line.")
	}

	r.Valid = len(r.Errors) == 0
	return r
}

// firstWordAfterPrefix strips a leading "prefix:" token from line and
// returns the first remaining word, or "" when there is none.
func firstWordAfterPrefix(line string) string {
	if i := strings.IndexByte(line, ':'); i >= 0 {
		line = line[i+1:]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// looksNonImperative applies the ed/ing/s suffix heuristic, case-insensitive.
func looksNonImperative(word string) bool {
	if word == "" {
		return false
	}
	w := strings.ToLower(word)
	return strings.HasSuffix(w, "ed") || strings.HasSuffix(w, "ing") || strings.HasSuffix(w, "s")
}
