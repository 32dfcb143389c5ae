package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/five82/technician/internal/espm"
)

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(PasswordEnv, "")

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ServiceURL != defaultServiceURL {
		t.Fatalf("ServiceURL = %q, want %q", cfg.ServiceURL, defaultServiceURL)
	}
	if cfg.EntitySet != espm.EntitySetProducts {
		t.Fatalf("EntitySet = %q, want %q", cfg.EntitySet, espm.EntitySetProducts)
	}

	wantCacheDir, err := expandPath(defaultCacheDir)
	if err != nil {
		t.Fatalf("expandPath(defaultCacheDir) returned error: %v", err)
	}
	if cfg.CacheDir != wantCacheDir {
		t.Fatalf("CacheDir = %q, want %q", cfg.CacheDir, wantCacheDir)
	}
	if !strings.HasPrefix(cfg.LogFile, home) {
		t.Fatalf("LogFile = %q, want it under HOME %q", cfg.LogFile, home)
	}
	if cfg.KPIInterval != defaultKPIInterval || cfg.LoadTimeout != defaultLoadTimeout {
		t.Fatalf("intervals = %v/%v, want defaults", cfg.KPIInterval, cfg.LoadTimeout)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(PasswordEnv, "")

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
service_url = "  https://espm.example.com/odata/ESPM.svc  "
entity_set = " Products "
username = " tech "
password = "file-secret"
cache_dir = "  ~/.technician/cache  "
kpi_interval_seconds = 5
load_timeout_seconds = 12
offline = true

[strings]
keyOkButtonTitle = "Okay"
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ServiceURL != "https://espm.example.com/odata/ESPM.svc" {
		t.Fatalf("ServiceURL = %q", cfg.ServiceURL)
	}
	if cfg.EntitySet != "Products" || cfg.Username != "tech" || cfg.Password != "file-secret" {
		t.Fatalf("EntitySet/Username/Password = %q/%q/%q", cfg.EntitySet, cfg.Username, cfg.Password)
	}
	if !strings.HasPrefix(cfg.CacheDir, home) {
		t.Fatalf("CacheDir = %q, want it under HOME %q", cfg.CacheDir, home)
	}
	if cfg.KPIInterval != 5*time.Second || cfg.LoadTimeout != 12*time.Second {
		t.Fatalf("intervals = %v/%v, want 5s/12s", cfg.KPIInterval, cfg.LoadTimeout)
	}
	if !cfg.Offline {
		t.Fatalf("Offline = false, want true")
	}
	if cfg.Strings["keyOkButtonTitle"] != "Okay" {
		t.Fatalf("Strings = %#v, want override", cfg.Strings)
	}
}

func TestLoad_PasswordEnvWins(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(PasswordEnv, "env-secret")

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`password = "file-secret"`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Password != "env-secret" {
		t.Fatalf("Password = %q, want env-secret", cfg.Password)
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
service_url = "   "
entity_set = ""
kpi_interval_seconds = -3
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ServiceURL != defaultServiceURL {
		t.Fatalf("ServiceURL = %q, want %q", cfg.ServiceURL, defaultServiceURL)
	}
	if cfg.EntitySet != espm.EntitySetProducts {
		t.Fatalf("EntitySet = %q, want default", cfg.EntitySet)
	}
	if cfg.KPIInterval != defaultKPIInterval {
		t.Fatalf("KPIInterval = %v, want default", cfg.KPIInterval)
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`service_url = [`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}
