package excluder

import "testing"

func TestIsExcluded(t *testing.T) {
	ex, err := New([]string{".obsidian/**", "**.tmp", ".trash/**"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tests := []struct {
		path string
		want bool
	}{
		{".obsidian/workspace.json", true},
		{"notes/draft.tmp", true},
		{".trash/old.md", true},
		{"notes/a.md", false},
		{"a/b.md", false},
	}

	for _, tt := range tests {
		if got := ex.IsExcluded(tt.path); got != tt.want {
			t.Errorf("IsExcluded(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestBadPattern(t *testing.T) {
	if _, err := New([]string{"[unterminated"}); err == nil {
		t.Error("expected error for malformed pattern")
	}
}

func TestEmptyPatterns(t *testing.T) {
	ex, err := New(nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if ex.IsExcluded("anything.md") {
		t.Error("empty excluder should match nothing")
	}
}
