package version

import "testing"

func TestVersion(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
}

func TestString_MatchesVersion(t *testing.T) {
	if String() != Version {
		t.Errorf("String() = %q, want %q", String(), Version)
	}
}
