package prompt

import "strings"

// truncationMarker is appended, after a blank line, whenever a diff is cut.
const truncationMarker = "[... diff truncated ...]"

// newlineCutoffRatio is how far into the budget a line boundary must sit to
// be preferred over a raw cut; cutting there loses at most 20% of the budget.
const newlineCutoffRatio = 0.8

// TruncateDiff bounds diff to maxLength bytes with boundary-aware cutting.
// Input at or under the budget is returned unchanged. Otherwise the first
// maxLength bytes are kept and the cut is moved back to the last newline in
// that prefix when that newline sits at or past 80% of the budget; the
// truncation marker is appended after a blank line in either case. Output
// never exceeds maxLength plus the fixed marker length.
func TruncateDiff(diff string, maxLength int) string {
	if maxLength <= 0 || len(diff) <= maxLength {
		return diff
	}
	cut := diff[:maxLength]
	if i := strings.LastIndexByte(cut, '\n'); float64(i) >= newlineCutoffRatio*float64(maxLength) {
		cut = cut[:i]
	}
	return cut + "\n\n" + truncationMarker
}
