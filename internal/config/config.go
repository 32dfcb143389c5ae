package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/technician/internal/espm"
)

// Config captures everything technician needs to reach its data.
type Config struct {
	ServiceURL  string
	EntitySet   espm.EntitySet
	Username    string
	Password    string
	CacheDir    string
	LogFile     string
	KPIInterval time.Duration
	LoadTimeout time.Duration
	Offline     bool
	// Strings overrides entries of the UI string table.
	Strings map[string]string
}

const (
	defaultConfigPath  = "~/.config/technician/config.toml"
	defaultServiceURL  = "http://127.0.0.1:8080/odata/ESPM.svc/"
	defaultCacheDir    = "~/.local/share/technician"
	defaultLogFile     = "~/.local/state/technician/technician.log"
	defaultKPIInterval = 30 * time.Second
	defaultLoadTimeout = 30 * time.Second

	// PasswordEnv overrides the password from the config file.
	PasswordEnv = "TECHNICIAN_PASSWORD"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		ServiceURL:  defaultServiceURL,
		EntitySet:   espm.EntitySetProducts,
		CacheDir:    mustExpand(defaultCacheDir),
		LogFile:     mustExpand(defaultLogFile),
		KPIInterval: defaultKPIInterval,
		LoadTimeout: defaultLoadTimeout,
		Password:    os.Getenv(PasswordEnv),
	}
}

// Load locates and parses the config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		ServiceURL         string            `toml:"service_url"`
		EntitySet          string            `toml:"entity_set"`
		Username           string            `toml:"username"`
		Password           string            `toml:"password"`
		CacheDir           string            `toml:"cache_dir"`
		LogFile            string            `toml:"log_file"`
		KPIIntervalSeconds int               `toml:"kpi_interval_seconds"`
		LoadTimeoutSeconds int               `toml:"load_timeout_seconds"`
		Offline            bool              `toml:"offline"`
		Strings            map[string]string `toml:"strings"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.ServiceURL); v != "" {
		cfg.ServiceURL = v
	}
	if v := strings.TrimSpace(raw.EntitySet); v != "" {
		cfg.EntitySet = espm.EntitySet(v)
	}
	cfg.Username = strings.TrimSpace(raw.Username)
	if cfg.Password == "" {
		cfg.Password = raw.Password
	}
	if v := strings.TrimSpace(raw.CacheDir); v != "" {
		cfg.CacheDir = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if raw.KPIIntervalSeconds > 0 {
		cfg.KPIInterval = time.Duration(raw.KPIIntervalSeconds) * time.Second
	}
	if raw.LoadTimeoutSeconds > 0 {
		cfg.LoadTimeout = time.Duration(raw.LoadTimeoutSeconds) * time.Second
	}
	cfg.Offline = raw.Offline
	if len(raw.Strings) > 0 {
		cfg.Strings = raw.Strings
	}

	return cfg, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
