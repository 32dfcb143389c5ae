package prefs

import (
	"os"
	"path/filepath"
	"testing"
)

func writePrefs(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prefs.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_FileContents(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Prefs
	}{
		{"theme only", "theme = \"Slate\"\n", Prefs{Theme: "Slate"}},
		{"show help", "theme = \"Nightfox\"\nshow_help = true\n", Prefs{Theme: "Nightfox", ShowHelp: true}},
		{"show help without theme", "show_help = true\n", Prefs{Theme: defaultTheme, ShowHelp: true}},
		{"blank theme", "theme = \"   \"\n", Defaults()},
		{"unknown keys", "colour = \"red\"\n", Defaults()},
		{"malformed", "theme = \"Slate\"\nshow_help = [\n", Defaults()},
		{"wrong type", "show_help = \"yes\"\n", Defaults()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(writePrefs(t, tt.body))
			if err != nil {
				t.Fatalf("Load returned error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Load = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestLoad_DefaultPathUnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := Load("")
	if err != nil {
		t.Fatalf("Load with no file returned error: %v", err)
	}
	if got != Defaults() {
		t.Fatalf("Load with no file = %#v, want defaults", got)
	}

	want := Prefs{Theme: "Slate", ShowHelp: true}
	if err := Save(DefaultPath(), want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, ".config", "technician", "prefs.toml")); err != nil {
		t.Fatalf("prefs not written under HOME: %v", err)
	}
	got, err = Load("")
	if err != nil || got != want {
		t.Fatalf("Load after Save = %#v, %v, want %#v", got, err, want)
	}
}

func TestLoad_UnresolvablePathReturnsError(t *testing.T) {
	t.Setenv("HOME", "")

	got, err := Load("~/prefs.toml")
	if err == nil {
		t.Fatalf("Load without a home dir returned nil error")
	}
	if got != Defaults() {
		t.Fatalf("Load = %#v, want defaults alongside the error", got)
	}
	if err := Save("~/prefs.toml", Defaults()); err == nil {
		t.Fatalf("Save without a home dir returned nil error")
	}
}

func TestLoad_DirectoryYieldsDefaults(t *testing.T) {
	got, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load of a directory returned error: %v", err)
	}
	if got != Defaults() {
		t.Fatalf("Load of a directory = %#v, want defaults", got)
	}
}

func TestSave_OverwritesPreviousValues(t *testing.T) {
	path := writePrefs(t, "theme = \"Slate\"\nshow_help = true\n")

	if err := Save(path, Prefs{Theme: "Fiori"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Theme != "Fiori" || got.ShowHelp {
		t.Fatalf("Load after overwrite = %#v, want Fiori without help", got)
	}
}
