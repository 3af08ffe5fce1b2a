// Package settings manages persistent user settings for the swreconcile CLI.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Settings holds persistent user preferences
type Settings struct {
	// PlatformFile is used when -P is not specified
	PlatformFile string `json:"platform_file,omitempty"`

	// RedisAddr is the default --publish address
	RedisAddr string `json:"redis_addr,omitempty"`

	// RedisDB selects the Redis database; 0 means the publisher default
	RedisDB int `json:"redis_db,omitempty"`

	// AuditLog is where apply records audit events
	AuditLog string `json:"audit_log,omitempty"`

	// SSHUser, SSHKeyFile and KnownHosts configure --ssh tunnels
	SSHUser    string `json:"ssh_user,omitempty"`
	SSHKeyFile string `json:"ssh_key_file,omitempty"`
	KnownHosts string `json:"known_hosts,omitempty"`
}

// Keys lists the settable keys in display order.
var Keys = []string{"platform_file", "redis_addr", "redis_db", "audit_log", "ssh_user", "ssh_key_file", "known_hosts"}

// DefaultSettingsPath returns the default path for the settings file
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "swreconcile_settings.json"
	}
	return filepath.Join(home, ".swreconcile", "settings.json")
}

// Load reads settings from the default location
func Load() (*Settings, error) {
	return LoadFrom(DefaultSettingsPath())
}

// LoadFrom reads settings from a specific path. A missing file yields
// empty settings.
func LoadFrom(path string) (*Settings, error) {
	s := &Settings{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing settings %s: %w", path, err)
	}

	return s, nil
}

// Save writes settings to the default location
func (s *Settings) Save() error {
	return s.SaveTo(DefaultSettingsPath())
}

// SaveTo writes settings to a specific path
func (s *Settings) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Get returns the value of key as text; unset values are empty.
func (s *Settings) Get(key string) (string, error) {
	switch key {
	case "platform_file":
		return s.PlatformFile, nil
	case "redis_addr":
		return s.RedisAddr, nil
	case "redis_db":
		if s.RedisDB == 0 {
			return "", nil
		}
		return strconv.Itoa(s.RedisDB), nil
	case "audit_log":
		return s.AuditLog, nil
	case "ssh_user":
		return s.SSHUser, nil
	case "ssh_key_file":
		return s.SSHKeyFile, nil
	case "known_hosts":
		return s.KnownHosts, nil
	}
	return "", unknownKey(key)
}

// Set parses value into key.
func (s *Settings) Set(key, value string) error {
	switch key {
	case "platform_file":
		s.PlatformFile = value
	case "redis_addr":
		s.RedisAddr = value
	case "redis_db":
		db, err := strconv.Atoi(value)
		if err != nil || db < 0 || db > 15 {
			return fmt.Errorf("redis_db must be a database number between 0 and 15, got %q", value)
		}
		s.RedisDB = db
	case "audit_log":
		s.AuditLog = value
	case "ssh_user":
		s.SSHUser = value
	case "ssh_key_file":
		s.SSHKeyFile = value
	case "known_hosts":
		s.KnownHosts = value
	default:
		return unknownKey(key)
	}
	return nil
}

// GetAuditLog returns the audit log path (with fallback)
func (s *Settings) GetAuditLog() string {
	if s.AuditLog != "" {
		return s.AuditLog
	}
	return filepath.Join(filepath.Dir(DefaultSettingsPath()), "audit.log")
}

// Clear resets all settings to defaults
func (s *Settings) Clear() {
	*s = Settings{}
}

func unknownKey(key string) error {
	return fmt.Errorf("unknown setting: %s (valid: %v)", key, Keys)
}
