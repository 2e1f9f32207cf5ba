package git

import (
	"context"
	"os/exec"
	"strings"

	"commitgen/cli/internal/erruser"
)

// Add stages the given paths at repoRoot. With no paths it stages everything
// ("git add -A").
func Add(ctx context.Context, repoRoot string, paths ...string) error {
	args := []string{"add"}
	if len(paths) == 0 {
		args = append(args, "-A")
	} else {
		args = append(args, "--")
		args = append(args, paths...)
	}
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = repoRoot
	cmd.Env = minimalEnv()
	if out, err := cmd.CombinedOutput(); err != nil {
		return erruser.New("Could not stage changes: "+strings.TrimSpace(string(out)), err)
	}
	return nil
}

// Commit creates a commit at repoRoot with the given message. When paths are
// given, only those paths are committed. Returns the new commit's full SHA.
func Commit(ctx context.Context, repoRoot, message string, paths ...string) (string, error) {
	args := []string{"commit", "-m", message}
	if len(paths) > 0 {
		args = append(args, "--")
		args = append(args, paths...)
	}
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = repoRoot
	cmd.Env = minimalEnv()
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", erruser.New("Could not create commit: "+strings.TrimSpace(string(out)), err)
	}

	cmd = exec.CommandContext(ctx, "git", "rev-parse", "HEAD")
	cmd.Dir = repoRoot
	cmd.Env = minimalEnv()
	out, err := cmd.Output()
	if err != nil {
		return "", erruser.New("Commit created but its id could not be read.", err)
	}
	return strings.TrimSpace(string(out)), nil
}
