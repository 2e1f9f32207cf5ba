package git

import (
	"reflect"
	"testing"
)

func TestParseStatus(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		out  string
		want Snapshot
	}{
		{
			name: "empty_output",
			out:  "",
			want: Snapshot{},
		},
		{
			name: "staged_added",
			out:  "A  a.ts\n",
			want: Snapshot{Added: []string{"a.ts"}},
		},
		{
			name: "untracked",
			out:  "?? notes.txt\n",
			want: Snapshot{Untracked: []string{"notes.txt"}},
		},
		{
			name: "modified_both_sides",
			out:  "MM internal/app.go\n M README.md\n",
			want: Snapshot{Modified: []string{"internal/app.go", "README.md"}},
		},
		{
			name: "deleted",
			out:  "D  old.ts\n D gone.go\n",
			want: Snapshot{Deleted: []string{"old.ts", "gone.go"}},
		},
		{
			name: "rename_keeps_new_path",
			out:  "R  old_name.go -> new_name.go\n",
			want: Snapshot{Modified: []string{"new_name.go"}},
		},
		{
			name: "conflict",
			out:  "UU merge.go\nAA both.go\n",
			want: Snapshot{Conflicted: []string{"merge.go", "both.go"}},
		},
		{
			name: "mixed",
			out:  "A  new.go\nM  changed.go\nD  removed.go\n?? stray.txt\n",
			want: Snapshot{
				Added:     []string{"new.go"},
				Modified:  []string{"changed.go"},
				Deleted:   []string{"removed.go"},
				Untracked: []string{"stray.txt"},
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ParseStatus(tt.out)
			if !reflect.DeepEqual(*got, tt.want) {
				t.Errorf("ParseStatus(%q) = %+v, want %+v", tt.out, *got, tt.want)
			}
		})
	}
}

func TestSnapshot_HasChanges(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		s    *Snapshot
		want bool
	}{
		{"nil", nil, false},
		{"empty", &Snapshot{}, false},
		{"added_only", &Snapshot{Added: []string{"a.go"}}, true},
		{"modified_only", &Snapshot{Modified: []string{"a.go"}}, true},
		{"deleted_only", &Snapshot{Deleted: []string{"a.go"}}, true},
		{"untracked_only", &Snapshot{Untracked: []string{"a.go"}}, true},
		{"conflicted_only_does_not_count", &Snapshot{Conflicted: []string{"a.go"}}, false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.s.HasChanges(); got != tt.want {
				t.Errorf("HasChanges() = %v, want %v", got, tt.want)
			}
		})
	}
}
