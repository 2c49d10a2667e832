package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
	if strings.Contains(Version, "\x1b[") {
		t.Error("Version must stay plain text; use Colored for terminals")
	}
}

func TestColored(t *testing.T) {
	orig, origNoColor := Version, color.NoColor
	defer func() { Version, color.NoColor = orig, origNoColor }()
	color.NoColor = true

	tests := []struct {
		in, want string
	}{
		{"1.2.3", "1.2.3"},
		{"0.1.0-dev", "0.1.0-dev"},
		{"1.0.0-beta.1", "1.0.0-beta.1"},
		{"nightly", "nightly"},
	}
	for _, tt := range tests {
		Version = tt.in
		if got := Colored(); got != tt.want {
			t.Errorf("Colored(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLong_OptionalFields(t *testing.T) {
	origV, origC, origM, origD := Version, GitCommit, GitMessage, BuildDate
	defer func() { Version, GitCommit, GitMessage, BuildDate = origV, origC, origM, origD }()

	Version, GitCommit, GitMessage, BuildDate = "nightly", "", "", ""
	if got := Long(); got != "declcheck nightly\n" {
		t.Fatalf("Long() = %q", got)
	}

	GitCommit = "abc123def456"
	BuildDate = "2024-01-15T10:30:00Z"
	got := Long()
	if !strings.Contains(got, "commit: abc123def456\n") || !strings.Contains(got, "built: 2024-01-15T10:30:00Z\n") {
		t.Fatalf("Long() = %q", got)
	}
	if strings.Contains(got, "message:") {
		t.Fatal("empty git message must be omitted")
	}
}
