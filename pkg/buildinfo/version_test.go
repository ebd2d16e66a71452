package buildinfo

import (
	"strings"
	"testing"
)

func TestTemplateAndUserAgent(t *testing.T) {
	old := Version
	defer func() { Version = old }()
	Version = "v1.2.3"

	if got := UserAgent(); got != "intentgraph/v1.2.3" {
		t.Errorf("UserAgent() = %q, want %q", got, "intentgraph/v1.2.3")
	}
	if got := Template(); !strings.Contains(got, "version v1.2.3") || !strings.Contains(got, "commit: "+Commit) {
		t.Errorf("Template() = %q", got)
	}
}
