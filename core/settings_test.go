package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSettings(t *testing.T) {
	path := writeSettings(t, `{
		"AuthToken": "file-token",
		"CommandPrefix": "?",
		"OwnerIds": ["1"],
		"DefaultHelpCommand": true
	}`)
	t.Setenv("GOCOMMANDO_TOKEN", "env-token")
	t.Setenv("GOCOMMANDO_OWNERS", "2,3")

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatal(err)
	}
	want := &Settings{
		AuthToken:          "env-token",
		CommandPrefix:      "?",
		OwnerIds:           []string{"2", "3"},
		DefaultHelpCommand: true,
		DefaultLocale:      "en-US",
		CommandPath:        "commands",
		EventPath:          "events",
		TaskPath:           "tasks",
		Database:           ":memory:",
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("wrong settings (-want +got):\n%s", diff)
	}
}

func TestLoadSettingsErrors(t *testing.T) {
	if _, err := LoadSettings(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected an error for a missing file")
	}
	if _, err := LoadSettings(writeSettings(t, "{not json")); err == nil {
		t.Error("expected an error for bad JSON")
	}
	if _, err := LoadSettings(writeSettings(t, `{"CommandPrefix": "!"}`)); err == nil {
		t.Error("expected an error without a token")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		s    Settings
		ok   bool
	}{
		{"complete", Settings{AuthToken: "t", CommandPrefix: "!"}, true},
		{"mention only", Settings{AuthToken: "t", MentionPrefix: true}, true},
		{"no token", Settings{CommandPrefix: "!"}, false},
		{"no prefix", Settings{AuthToken: "t"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.s.Validate(); (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}
