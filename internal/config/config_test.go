package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/balancerbattle/wsfixture/internal/transport"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.ResolvedFlavor() != transport.Plain {
		t.Errorf("ResolvedFlavor() = %v, want plain", cfg.ResolvedFlavor())
	}
	if cfg.CertPath != "ssl/server.crt" || cfg.KeyPath != "ssl/server.key" {
		t.Errorf("credential paths = %q, %q", cfg.CertPath, cfg.KeyPath)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wsfixture.yaml")
	content := "flavor: spdy\nport: 9443\ncert: /etc/fixture/tls.crt\nkey: /etc/fixture/tls.key\nadvertise: true\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ResolvedFlavor() != transport.MultiplexedTLS {
		t.Errorf("ResolvedFlavor() = %v, want spdy", cfg.ResolvedFlavor())
	}
	if cfg.Port != 9443 {
		t.Errorf("Port = %d, want 9443", cfg.Port)
	}
	if cfg.CertPath != "/etc/fixture/tls.crt" {
		t.Errorf("CertPath = %q", cfg.CertPath)
	}
	if !cfg.Advertise {
		t.Error("Advertise = false, want true")
	}
	// unset keys keep their defaults
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("port: [not, a, number]"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("Load(\"\") = %+v, want defaults", cfg)
	}
}

func TestApplyEnv(t *testing.T) {
	tests := []struct {
		name       string
		env        map[string]string
		wantFlavor transport.Flavor
		wantPort   int
		wantErr    bool
	}{
		{"unset", map[string]string{}, transport.Plain, 8080, false},
		{"empty flavor keeps default", map[string]string{"FLAVOR": ""}, transport.Plain, 8080, false},
		{"https", map[string]string{"FLAVOR": "https"}, transport.TLS, 8080, false},
		{"upper case spdy", map[string]string{"FLAVOR": "SPDY"}, transport.MultiplexedTLS, 8080, false},
		{"unknown flavor", map[string]string{"FLAVOR": "quic"}, transport.Plain, 8080, false},
		{"port", map[string]string{"WSFIXTURE_PORT": "9000"}, transport.Plain, 9000, false},
		{"bad port", map[string]string{"WSFIXTURE_PORT": "eighty"}, transport.Plain, 8080, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			err := cfg.ApplyEnv(envMap(tt.env))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ApplyEnv() error = %v, wantErr %v", err, tt.wantErr)
			}
			if cfg.ResolvedFlavor() != tt.wantFlavor {
				t.Errorf("ResolvedFlavor() = %v, want %v", cfg.ResolvedFlavor(), tt.wantFlavor)
			}
			if cfg.Port != tt.wantPort {
				t.Errorf("Port = %d, want %d", cfg.Port, tt.wantPort)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"negative port", func(c *Config) { c.Port = -1 }, true},
		{"port too large", func(c *Config) { c.Port = 70000 }, true},
		{"tls without key", func(c *Config) { c.Flavor = "https"; c.KeyPath = "" }, true},
		{"tls with generated cert", func(c *Config) { c.Flavor = "https"; c.CertPath = ""; c.KeyPath = ""; c.GenerateCert = true }, false},
		{"plain ignores credentials", func(c *Config) { c.CertPath = ""; c.KeyPath = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCredentialProvider(t *testing.T) {
	cfg := Default()
	if _, ok := cfg.CredentialProvider().(*transport.FileCredentials); !ok {
		t.Errorf("CredentialProvider() = %T, want *transport.FileCredentials", cfg.CredentialProvider())
	}

	cfg.GenerateCert = true
	if _, ok := cfg.CredentialProvider().(*transport.GeneratedCredentials); !ok {
		t.Errorf("CredentialProvider() = %T, want *transport.GeneratedCredentials", cfg.CredentialProvider())
	}
}
