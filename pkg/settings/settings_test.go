package settings

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSettings_Defaults(t *testing.T) {
	s := &Settings{}

	if s.PlatformFile != "" {
		t.Errorf("PlatformFile should be empty, got %q", s.PlatformFile)
	}
	if s.RedisAddr != "" {
		t.Errorf("RedisAddr should be empty, got %q", s.RedisAddr)
	}
	if got := s.GetAuditLog(); filepath.Base(got) != "audit.log" {
		t.Errorf("GetAuditLog() default = %q, want a path ending in audit.log", got)
	}
}

func TestSettings_SetGet(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		want    string
		wantErr bool
	}{
		{key: "platform_file", value: "/etc/swreconcile/wedge.yaml", want: "/etc/swreconcile/wedge.yaml"},
		{key: "redis_addr", value: "10.0.0.5:6379", want: "10.0.0.5:6379"},
		{key: "redis_db", value: "4", want: "4"},
		{key: "redis_db", value: "0", want: ""},
		{key: "redis_db", value: "16", wantErr: true},
		{key: "redis_db", value: "four", wantErr: true},
		{key: "audit_log", value: "/var/log/swreconcile/audit.log", want: "/var/log/swreconcile/audit.log"},
		{key: "ssh_user", value: "admin", want: "admin"},
		{key: "ssh_key_file", value: "~/.ssh/id_ed25519", want: "~/.ssh/id_ed25519"},
		{key: "known_hosts", value: "~/.ssh/known_hosts", want: "~/.ssh/known_hosts"},
		{key: "network", value: "production", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			s := &Settings{}
			err := s.Set(tt.key, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Set(%q, %q) error = %v, wantErr %v", tt.key, tt.value, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			got, err := s.Get(tt.key)
			if err != nil {
				t.Fatalf("Get(%q) error = %v", tt.key, err)
			}
			if got != tt.want {
				t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestSettings_GetUnknown(t *testing.T) {
	_, err := (&Settings{}).Get("spec_dir")
	if err == nil || !strings.Contains(err.Error(), "unknown setting") {
		t.Errorf("Get(spec_dir) error = %v, want unknown setting", err)
	}
}

func TestSettings_KeysRoundTrip(t *testing.T) {
	s := &Settings{}
	for _, key := range Keys {
		if _, err := s.Get(key); err != nil {
			t.Errorf("Get(%q) error = %v, every listed key must be readable", key, err)
		}
	}
}

func TestSettings_Clear(t *testing.T) {
	s := &Settings{
		PlatformFile: "/p.yaml",
		RedisAddr:    "localhost:6379",
		RedisDB:      4,
		SSHUser:      "admin",
	}

	s.Clear()

	if *s != (Settings{}) {
		t.Errorf("Clear() left %+v, want all fields empty", *s)
	}
}

func TestSettings_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	original := &Settings{
		PlatformFile: "/etc/swreconcile/wedge.yaml",
		RedisAddr:    "10.0.0.5:6379",
		RedisDB:      4,
		AuditLog:     "/var/log/swreconcile/audit.log",
		SSHUser:      "admin",
		KnownHosts:   "/root/.ssh/known_hosts",
	}

	if err := original.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() failed: %v", err)
	}
	if *loaded != *original {
		t.Errorf("LoadFrom() = %+v, want %+v", *loaded, *original)
	}
}

func TestSettings_LoadNonExistent(t *testing.T) {
	s, err := LoadFrom("/nonexistent/path/settings.json")
	if err != nil {
		t.Fatalf("LoadFrom() non-existent should not error: %v", err)
	}
	if s == nil {
		t.Fatal("LoadFrom() should return non-nil Settings")
	}
	if *s != (Settings{}) {
		t.Error("LoadFrom() non-existent should return empty settings")
	}
}

func TestSettings_LoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("invalid json {"), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Error("LoadFrom() with invalid JSON should error")
	}
}

func TestSettings_SaveCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "nested", "settings.json")

	s := &Settings{RedisAddr: "localhost:6379"}
	if err := s.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() should create directories: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("SaveTo() should have created the file")
	}
}

func TestLoadSave_DefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	s, err := Load()
	if err != nil {
		t.Fatalf("Load() with non-existent file should not error: %v", err)
	}
	if s.PlatformFile != "" {
		t.Error("Load() with non-existent file should return empty settings")
	}

	s.PlatformFile = "/etc/swreconcile/wedge.yaml"
	if err := s.Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	expectedPath := filepath.Join(home, ".swreconcile", "settings.json")
	if _, err := os.Stat(expectedPath); os.IsNotExist(err) {
		t.Fatalf("Save() did not create file at %s", expectedPath)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() after Save() failed: %v", err)
	}
	if loaded.PlatformFile != "/etc/swreconcile/wedge.yaml" {
		t.Errorf("After Save(), PlatformFile = %q", loaded.PlatformFile)
	}
	if got, want := loaded.GetAuditLog(), filepath.Join(home, ".swreconcile", "audit.log"); got != want {
		t.Errorf("GetAuditLog() = %q, want %q", got, want)
	}
}

func TestDefaultSettingsPath_NoHome(t *testing.T) {
	t.Setenv("HOME", "")

	if path := DefaultSettingsPath(); path != "swreconcile_settings.json" {
		t.Errorf("DefaultSettingsPath() with no HOME = %q, want %q", path, "swreconcile_settings.json")
	}
}

func TestLoadFrom_ReadError(t *testing.T) {
	dirAsFile := filepath.Join(t.TempDir(), "settings.json")
	if err := os.Mkdir(dirAsFile, 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	if _, err := LoadFrom(dirAsFile); err == nil {
		t.Error("LoadFrom() should error when path is a directory")
	}
}

func TestSaveTo_MkdirError(t *testing.T) {
	blockingFile := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blockingFile, []byte("blocking"), 0644); err != nil {
		t.Fatalf("Failed to create blocking file: %v", err)
	}

	s := &Settings{RedisAddr: "localhost:6379"}
	if err := s.SaveTo(filepath.Join(blockingFile, "subdir", "settings.json")); err == nil {
		t.Error("SaveTo() should fail when directory creation fails")
	}
}
