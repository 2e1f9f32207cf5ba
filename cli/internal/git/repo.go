// Package git wraps the git binary for the operations the pipeline needs:
// repository discovery, working-tree status, staged/unstaged diff, staging,
// and commit. All commands run with a minimal environment and never prompt.
package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"commitgen/cli/internal/erruser"
)

// RepoRoot returns the absolute path of the git repository root containing dir.
// Runs "git rev-parse --show-toplevel" with Dir=dir. Returns error if dir is
// not inside a git repository.
func RepoRoot(dir string) (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = dir
	cmd.Env = minimalEnv()
	out, err := cmd.Output()
	if err != nil {
		return "", erruser.New("This directory is not inside a Git repository.", err)
	}
	root := strings.TrimSpace(string(out))
	return filepath.Abs(root)
}

func minimalEnv() []string {
	return []string{
		"PATH=" + os.Getenv("PATH"),
		"GIT_TERMINAL_PROMPT=0",
	}
}
