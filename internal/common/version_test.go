package common

import "testing"

func TestGetFullVersion(t *testing.T) {
	restore := func(v, b, c string) {
		Version, Build, GitCommit = v, b, c
	}
	defer restore(Version, Build, GitCommit)

	tests := []struct {
		name    string
		version string
		build   string
		commit  string
		want    string
	}{
		{"unstamped", "dev", "unknown", "unknown", "dev"},
		{"build only", "1.2.0", "20260823", "unknown", "1.2.0-20260823"},
		{"fully stamped", "1.2.0", "20260823", "9f8e7d6c5b4a39281706", "1.2.0-20260823+9f8e7d6"},
		{"short commit kept out", "1.2.0", "unknown", "abc", "1.2.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			restore(tt.version, tt.build, tt.commit)
			if got := GetFullVersion(); got != tt.want {
				t.Errorf("GetFullVersion() = %q, want %q", got, tt.want)
			}
		})
	}
}
