package publish

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSSHClientConfig(t *testing.T) {
	dir := t.TempDir()
	badKey := filepath.Join(dir, "id_bad")
	if err := os.WriteFile(badKey, []byte("not a key"), 0600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		cfg     TunnelConfig
		wantErr string
		auths   int
	}{
		{
			name:  "password",
			cfg:   TunnelConfig{Host: "rsw1", User: "admin", Password: "secret"},
			auths: 1,
		},
		{
			name:    "no credentials",
			cfg:     TunnelConfig{Host: "rsw1", User: "admin"},
			wantErr: "no SSH credentials",
		},
		{
			name:    "missing key file",
			cfg:     TunnelConfig{Host: "rsw1", KeyFile: filepath.Join(dir, "absent")},
			wantErr: "reading SSH key",
		},
		{
			name:    "unparsable key",
			cfg:     TunnelConfig{Host: "rsw1", KeyFile: badKey},
			wantErr: "parsing SSH key",
		},
		{
			name:    "missing known hosts",
			cfg:     TunnelConfig{Host: "rsw1", Password: "secret", KnownHosts: filepath.Join(dir, "known_hosts")},
			wantErr: "loading known hosts",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := sshClientConfig(tt.cfg)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("sshClientConfig() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("sshClientConfig() error = %v", err)
			}
			if cfg.User != tt.cfg.User {
				t.Errorf("User = %q, want %q", cfg.User, tt.cfg.User)
			}
			if len(cfg.Auth) != tt.auths {
				t.Errorf("len(Auth) = %d, want %d", len(cfg.Auth), tt.auths)
			}
			if cfg.HostKeyCallback == nil {
				t.Error("HostKeyCallback is nil")
			}
		})
	}
}
