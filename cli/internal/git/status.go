package git

import (
	"context"
	"os/exec"
	"strings"

	"commitgen/cli/internal/erruser"
)

// Snapshot classifies working-tree paths at one point in time. Each path
// appears in exactly one list. The category order used for display and for
// prompt building is fixed: Added, Modified, Deleted, Untracked.
// Conflicted paths are reported separately and never fed to the prompt.
type Snapshot struct {
	Added      []string
	Modified   []string
	Deleted    []string
	Untracked  []string
	Conflicted []string
}

// HasChanges reports whether the snapshot contains anything to describe.
// Conflicted paths do not count; a tree with only unresolved conflicts is
// not committable and is rejected earlier.
func (s *Snapshot) HasChanges() bool {
	if s == nil {
		return false
	}
	return len(s.Added) > 0 || len(s.Modified) > 0 || len(s.Deleted) > 0 || len(s.Untracked) > 0
}

// Status runs "git status --porcelain" at repoRoot and parses the output
// into a Snapshot. Context is used for cancellation.
func Status(ctx context.Context, repoRoot string) (*Snapshot, error) {
	cmd := exec.CommandContext(ctx, "git", "status", "--porcelain")
	cmd.Dir = repoRoot
	cmd.Env = minimalEnv()
	out, err := cmd.Output()
	if err != nil {
		return nil, erruser.New("Could not read working tree status.", err)
	}
	return ParseStatus(string(out)), nil
}

// conflictCodes are the porcelain XY pairs that mean "unmerged".
var conflictCodes = map[string]struct{}{
	"DD": {}, "AU": {}, "UD": {}, "UA": {}, "DU": {}, "AA": {}, "UU": {},
}

// ParseStatus parses "git status --porcelain" (v1) output. Each entry is
// classified into exactly one category: conflicted, untracked, added,
// deleted, or modified, checked in that order. Renames and copies count as
// modified under the new path.
func ParseStatus(out string) *Snapshot {
	s := &Snapshot{}
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 4 {
			continue
		}
		xy := line[:2]
		path := line[3:]
		// Rename/copy entries read "R  old -> new"; keep the new path.
		if i := strings.Index(path, " -> "); i >= 0 {
			path = path[i+4:]
		}
		if _, unmerged := conflictCodes[xy]; unmerged {
			s.Conflicted = append(s.Conflicted, path)
			continue
		}
		switch {
		case xy == "??":
			s.Untracked = append(s.Untracked, path)
		case xy[0] == 'A' || xy[1] == 'A':
			s.Added = append(s.Added, path)
		case xy[0] == 'D' || xy[1] == 'D':
			s.Deleted = append(s.Deleted, path)
		default:
			s.Modified = append(s.Modified, path)
		}
	}
	return s
}
