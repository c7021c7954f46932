package version

import "testing"

func TestShort(t *testing.T) {
	tests := []struct {
		info Info
		want string
	}{
		{Info{Version: "v1.0.0"}, "v1.0.0"},
		{Info{Version: "v1.0.0", VCSRevision: "3f2a9c1d5e6f"}, "v1.0.0 (3f2a9c1d)"},
		{Info{Version: "dev", VCSRevision: "abc", VCSModified: true}, "dev (abc (modified))"},
	}
	for _, tt := range tests {
		if got := tt.info.Short(); got != tt.want {
			t.Errorf("Short() = %q, want %q", got, tt.want)
		}
	}
}

func TestCheck(t *testing.T) {
	if got := (Info{Version: "dev"}).Check(); got == "" {
		t.Error("Expected a warning for a development build")
	}
	if got := (Info{Version: "v1.0.0", VCSRevision: "abc"}).Check(); got != "" {
		t.Errorf("Unexpected warning: %q", got)
	}
}
