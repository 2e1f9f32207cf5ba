// Package message turns raw model output into a usable commit message and
// checks the result against length and format policy. Processing never
// fails; validation and suggestions only produce data, never errors.
package message

import (
	"regexp"
	"strings"

	"commitgen/cli/internal/prompt"
)

var (
	// Paired triple-backtick regions are removed entirely, contents included;
	// generated commit messages should not carry code fences.
	fencedBlockRe = regexp.MustCompile("(?s)```.*?```")
	inlineCodeRe  = regexp.MustCompile("`([^`\n]*)`")
	boldRe        = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicRe      = regexp.MustCompile(`\*([^*]+)\*`)
	spaceRunRe    = regexp.MustCompile(` {2,}`)
	newlineRunRe  = regexp.MustCompile(`\n{3,}`)
)

// Process cleans raw model output and enforces the subject-line budget.
// Transforms, in order: trim surrounding whitespace, drop fenced code
// blocks, unwrap inline code and bold/italic emphasis, collapse space runs
// to one, collapse three-or-more newlines to two. The budget
// (opts.MaxLength) applies to the first line only; the body is never cut.
func Process(raw string, opts prompt.Options) string {
	opts = opts.Normalize()

	s := strings.TrimSpace(raw)
	s = fencedBlockRe.ReplaceAllString(s, "")
	s = inlineCodeRe.ReplaceAllString(s, "$1")
	s = boldRe.ReplaceAllString(s, "$1")
	s = italicRe.ReplaceAllString(s, "$1")
	s = spaceRunRe.ReplaceAllString(s, " ")
	s = newlineRunRe.ReplaceAllString(s, "\n\n")
	s = strings.TrimSpace(s)

	lines := strings.Split(s, "\n")
	lines[0] = enforceSubjectBudget(strings.TrimSpace(lines[0]), opts.MaxLength)
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// enforceSubjectBudget bounds line to budget characters. When a colon sits
// before the budget offset, the text up to and including it is treated as a
// fixed "type(scope):" prefix and only the description after it is cut;
// otherwise the whole line is cut at the budget. Trailing spaces are
// trimmed either way.
func enforceSubjectBudget(line string, budget int) string {
	if len(line) <= budget {
		return line
	}
	if i := strings.IndexByte(line, ':'); i >= 0 && i < budget {
		pre := line[:i+1]
		desc := strings.TrimSpace(line[i+1:])
		keep := budget - len(pre) - 1
		if keep > 0 {
			if keep < len(desc) {
				desc = desc[:keep]
			}
			return pre + " " + strings.TrimRight(desc, " ")
		}
	}
	return strings.TrimRight(line[:budget], " ")
}
