package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultServerConfig(t *testing.T) {
	cfg := DefaultServerConfig()
	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q, want :8080", cfg.Addr)
	}
	if cfg.API.BaseURL != "https://bot-api.portobello.ru" {
		t.Errorf("API.BaseURL = %q", cfg.API.BaseURL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "botadmin.yaml")
	yml := `
addr: ":9090"
log_level: debug
api:
  base_url: http://yaml.example
  timeout: 5s
schedules:
  purge_sessions: "@hourly"
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("BOTADMIN_API_URL=http://env.example\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BOTADMIN_SESSION_TTL", "2h")
	// godotenv never overrides a variable that is already set, so make sure
	// this one is unset; t.Setenv restores it afterwards.
	t.Setenv("BOTADMIN_API_URL", "")
	os.Unsetenv("BOTADMIN_API_URL")

	cfg, err := Load(path, envFile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Addr != ":9090" || cfg.LogLevel != "debug" {
		t.Errorf("yaml not applied: %+v", cfg)
	}
	if cfg.API.Timeout != 5*time.Second {
		t.Errorf("API.Timeout = %v, want 5s", cfg.API.Timeout)
	}
	if cfg.API.BaseURL != "http://env.example" {
		t.Errorf("API.BaseURL = %q, want env override", cfg.API.BaseURL)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Errorf("SessionTTL = %v, want 2h", cfg.SessionTTL)
	}
	if cfg.Schedules.PurgeSessions != "@hourly" || cfg.Schedules.SweepViews != "@every 5m" {
		t.Errorf("Schedules = %+v", cfg.Schedules)
	}
}

func TestLoad_MissingEnvFileIsFine(t *testing.T) {
	if _, err := Load("", filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("Load: %v", err)
	}
}

func TestApplyEnv_BadValues(t *testing.T) {
	tests := map[string]string{
		"BOTADMIN_SESSION_TTL":    "forever",
		"BOTADMIN_API_RETRIES":    "three",
		"BOTADMIN_SECURE_COOKIES": "maybe",
	}
	for name, value := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultServerConfig()
			lookup := func(k string) (string, bool) {
				if k == name {
					return value, true
				}
				return "", false
			}
			if err := cfg.applyEnv(lookup); err == nil {
				t.Errorf("expected error for %s=%s", name, value)
			}
		})
	}
}

func TestApplyEnv_CORSOrigins(t *testing.T) {
	cfg := DefaultServerConfig()
	cfg.applyEnv(func(k string) (string, bool) {
		if k == "BOTADMIN_CORS_ORIGINS" {
			return "https://a.example,https://b.example", true
		}
		return "", false
	})
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultServerConfig()
	cfg.Media = "s3"
	if err := cfg.Validate(); err == nil {
		t.Error("s3 without bucket should fail")
	}
	cfg.MediaS3.Bucket = "media"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	cfg.Media = "ftp"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown media store should fail")
	}
	cfg = DefaultServerConfig()
	cfg.SessionTTL = 0
	if err := cfg.Validate(); err == nil {
		t.Error("zero session ttl should fail")
	}
}
