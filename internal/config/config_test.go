package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

const validYAML = `
server:
  host: "0.0.0.0"
  port: 9090
  allowed_origin: "http://localhost:5173"
auth:
  api_key: "secret"
database:
  dir: "/var/lib/fittrack"
  name: "gym"
  version: 2
log:
  level: "debug"
seed_sample_data: true
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestLoadValid verifies that a well-formed YAML config loads with all fields populated.
func TestLoadValid(t *testing.T) {
	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Addr() != "0.0.0.0:9090" {
		t.Errorf("server addr = %q, want %q", cfg.Server.Addr(), "0.0.0.0:9090")
	}
	if cfg.Database.Path() != filepath.Join("/var/lib/fittrack", "gym.db") {
		t.Errorf("database path = %q", cfg.Database.Path())
	}
	if v := cfg.Database.SchemaVersion(5); v != 2 {
		t.Errorf("schema version = %d, want pinned 2", v)
	}
	if cfg.Log.SlogLevel() != slog.LevelDebug {
		t.Errorf("log level = %v, want debug", cfg.Log.SlogLevel())
	}
	if !cfg.SeedSampleData {
		t.Error("seed_sample_data = false, want true")
	}
	if cfg.Auth.APIKey != "secret" {
		t.Errorf("auth.api_key = %q, want %q", cfg.Auth.APIKey, "secret")
	}
	if cfg.Server.AllowedOrigin != "http://localhost:5173" {
		t.Errorf("server.allowed_origin = %q", cfg.Server.AllowedOrigin)
	}
}

// TestLoadDefaults verifies that a file holding only the API key yields a
// loopback server, no CORS origin and the default database location.
func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeTemp(t, "auth:\n  api_key: k\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 8080 {
		t.Errorf("server = %+v, want 127.0.0.1:8080", cfg.Server)
	}
	if cfg.Database.Path() != filepath.Join("data", "fittrack.db") {
		t.Errorf("database path = %q", cfg.Database.Path())
	}
	if v := cfg.Database.SchemaVersion(5); v != 5 {
		t.Errorf("schema version = %d, want latest 5", v)
	}
	if cfg.Server.AllowedOrigin != "" {
		t.Errorf("server.allowed_origin = %q, want empty", cfg.Server.AllowedOrigin)
	}
}

// TestEnvOverride verifies that FITTRACK_ env vars take precedence over YAML values.
func TestEnvOverride(t *testing.T) {
	t.Setenv("FITTRACK_SERVER_PORT", "7000")
	t.Setenv("FITTRACK_DB_DIR", "/tmp/override")
	t.Setenv("FITTRACK_LOG_LEVEL", "warn")
	t.Setenv("FITTRACK_SEED_SAMPLE_DATA", "false")
	t.Setenv("FITTRACK_AUTH_API_KEY", "from-env")

	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("server.port = %d, want 7000", cfg.Server.Port)
	}
	if cfg.Database.Dir != "/tmp/override" {
		t.Errorf("database.dir = %q, want %q", cfg.Database.Dir, "/tmp/override")
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log.level = %q, want %q", cfg.Log.Level, "warn")
	}
	if cfg.SeedSampleData {
		t.Error("seed_sample_data = true, want false")
	}
	if cfg.Auth.APIKey != "from-env" {
		t.Errorf("auth.api_key = %q, want %q", cfg.Auth.APIKey, "from-env")
	}
	// Unchanged fields should keep YAML values
	if cfg.Database.Name != "gym" {
		t.Errorf("database.name = %q, want %q", cfg.Database.Name, "gym")
	}
}

// TestFromEnv verifies config assembly without a file.
func TestFromEnv(t *testing.T) {
	t.Setenv("FITTRACK_DB_NAME", "cli")
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Name != "cli" {
		t.Errorf("database.name = %q, want %q", cfg.Database.Name, "cli")
	}
}

// TestValidation verifies that bad values are rejected with an error.
func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing api key", "server:\n  port: 8080\n"},
		{"port out of range", "auth:\n  api_key: k\nserver:\n  port: 70000\n"},
		{"empty database dir", "auth:\n  api_key: k\ndatabase:\n  dir: \"\"\n"},
		{"empty database name", "auth:\n  api_key: k\ndatabase:\n  name: \"\"\n"},
		{"unknown log level", "auth:\n  api_key: k\nlog:\n  level: verbose\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeTemp(t, tt.yaml)); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

// TestLoadMissingFile verifies that a missing config file is an error.
func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
