package ui

import "testing"

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	if len(names) != 3 {
		t.Fatalf("ThemeNames() returned %d names, want 3", len(names))
	}
	if names[0] != defaultThemeName {
		t.Fatalf("ThemeNames()[0] = %q, want %q", names[0], defaultThemeName)
	}
	for _, name := range names {
		if got := GetTheme(name).Name; got != name {
			t.Fatalf("GetTheme(%q).Name = %q", name, got)
		}
	}
}

func TestNextTheme(t *testing.T) {
	tests := []struct {
		current string
		want    string
	}{
		{"Fiori", "Nightfox"},
		{"Nightfox", "Slate"},
		{"Slate", "Fiori"},
		{"Unknown", "Fiori"},
	}
	for _, tt := range tests {
		if got := NextTheme(tt.current); got != tt.want {
			t.Fatalf("NextTheme(%q) = %q, want %q", tt.current, got, tt.want)
		}
	}
}

func TestGetTheme_UnknownFallsBack(t *testing.T) {
	if got := GetTheme("Dracula").Name; got != defaultThemeName {
		t.Fatalf("GetTheme(Dracula).Name = %q, want %q", got, defaultThemeName)
	}
}
