package git

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Diff returns the textual diff of pending changes at repoRoot. When staged
// is true the index diff is returned ("git diff --cached"); otherwise the
// working-tree diff. The output may be empty (binary-only or no content
// changes); callers decide how to fall back.
func Diff(ctx context.Context, repoRoot string, staged bool) (string, error) {
	args := []string{"diff", "--no-color", "--no-ext-diff"}
	if staged {
		args = append(args, "--cached")
	}
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = repoRoot
	cmd.Env = minimalEnv()
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git diff: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}
