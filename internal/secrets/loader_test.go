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
		t.Fatalf("write secret: %v", err)
	}

	got, err := Load(Source{Name: "gemini api key", Value: "inline", File: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "from-file" {
		t.Fatalf("expected file secret, got %q", got)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(path, []byte("   "), 0o600); err != nil {
		t.Fatalf("write secret: %v", err)
	}

	_, err := Load(Source{Name: "rapidapi key", File: path})
	if err == nil || !strings.Contains(err.Error(), "is empty") {
		t.Fatalf("expected empty file error, got %v", err)
	}
}

func TestLoadFallsBackToEnv(t *testing.T) {
	t.Setenv("PATHFINDER_TEST_KEY", " env-secret ")

	got, err := Load(Source{Name: "hf api key", Env: "PATHFINDER_TEST_KEY"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "env-secret" {
		t.Fatalf("expected env secret, got %q", got)
	}
}

func TestLoadMissingNamesEnv(t *testing.T) {
	t.Setenv("PATHFINDER_TEST_KEY", "")

	_, err := Load(Source{Name: "hf api key", Env: "PATHFINDER_TEST_KEY"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "hf api key") || !strings.Contains(err.Error(), "PATHFINDER_TEST_KEY") {
		t.Fatalf("error should name the secret and the variable: %v", err)
	}
}
