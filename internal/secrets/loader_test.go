package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadPrefersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(path, []byte("  from-file \n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("RESUME_ASSISTANT_TEST_KEY", "from-env")

	got, err := Load(Source{Name: "api key", Value: "inline", Env: "RESUME_ASSISTANT_TEST_KEY", File: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "from-file" {
		t.Fatalf("expected file secret, got %q", got)
	}
}

func TestLoadValueThenEnv(t *testing.T) {
	t.Setenv("RESUME_ASSISTANT_TEST_KEY", " from-env ")

	got, err := Load(Source{Value: " inline ", Env: "RESUME_ASSISTANT_TEST_KEY"})
	if err != nil || got != "inline" {
		t.Fatalf("expected inline secret, got %q (%v)", got, err)
	}

	got, err = Load(Source{Env: "RESUME_ASSISTANT_TEST_KEY"})
	if err != nil || got != "from-env" {
		t.Fatalf("expected env secret, got %q (%v)", got, err)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty")
	if err := os.WriteFile(empty, []byte("   "), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("RESUME_ASSISTANT_EMPTY_KEY", "")

	tests := []struct {
		name   string
		src    Source
		expect string
	}{
		{name: "missing file", src: Source{Name: "api key", File: filepath.Join(dir, "missing")}, expect: "reading api key from file"},
		{name: "empty file", src: Source{Name: "api key", File: empty}, expect: "is empty"},
		{name: "empty env", src: Source{Name: "api key", Env: "RESUME_ASSISTANT_EMPTY_KEY"}, expect: "checked RESUME_ASSISTANT_EMPTY_KEY"},
		{name: "nothing", src: Source{}, expect: "secret is not configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.src)
			if err == nil || !strings.Contains(err.Error(), tt.expect) {
				t.Fatalf("expected error containing %q, got %v", tt.expect, err)
			}
		})
	}
}
