package services

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSSHServersFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "servers.json")
	content := `[
		{"name": "matcher-1", "host": "192.168.0.10", "remote_dir": "/var/log/biometrics"},
		{"host": "192.168.0.11", "remote_dir": "/var/log/biometrics"},
		{"name": "broken", "host": "192.168.0.12"}
	]`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	servers, err := LoadSSHServers(path, "")
	if err != nil {
		t.Fatalf("LoadSSHServers() error = %v", err)
	}
	if len(servers) != 2 {
		t.Fatalf("LoadSSHServers() len = %d, want 2 (incomplete entry skipped)", len(servers))
	}
	if servers[0].Name != "matcher-1" {
		t.Fatalf("servers[0].Name = %q", servers[0].Name)
	}
	// name falls back to host
	if servers[1].Name != "192.168.0.11" {
		t.Fatalf("servers[1].Name = %q", servers[1].Name)
	}
}

func TestLoadSSHServersFallbackFormat(t *testing.T) {
	servers, err := LoadSSHServers("", "192.168.0.10,/var/log/biometrics; 192.168.0.11,/logs ;badentry")
	if err != nil {
		t.Fatalf("LoadSSHServers() error = %v", err)
	}
	if len(servers) != 2 {
		t.Fatalf("LoadSSHServers() len = %d, want 2", len(servers))
	}
	if servers[0].Host != "192.168.0.10" || servers[0].RemoteDir != "/var/log/biometrics" {
		t.Fatalf("servers[0] = %+v", servers[0])
	}
	if servers[1].RemoteDir != "/logs" {
		t.Fatalf("servers[1] = %+v", servers[1])
	}
}

func TestLoadSSHServersEmpty(t *testing.T) {
	servers, err := LoadSSHServers("", "")
	if err != nil {
		t.Fatalf("LoadSSHServers() error = %v", err)
	}
	if len(servers) != 0 {
		t.Fatalf("LoadSSHServers() len = %d, want 0", len(servers))
	}
}

func TestLoadSSHServersInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "servers.json")
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadSSHServers(path, ""); err == nil {
		t.Fatalf("LoadSSHServers() should fail on malformed JSON")
	}
}
