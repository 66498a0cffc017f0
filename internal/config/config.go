package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/balancerbattle/wsfixture/internal/logging"
	"github.com/balancerbattle/wsfixture/internal/transport"
)

// Environment variables read by ApplyEnv
const (
	FlavorEnvVar   = "FLAVOR"
	PortEnvVar     = "WSFIXTURE_PORT"
	LogLevelEnvVar = logging.LogLevelEnvVar
)

// DefaultPort is the fixture's conventional port
const DefaultPort = 8080

// Config is the complete set of runtime settings
type Config struct {
	Flavor       string `yaml:"flavor"`
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	CertPath     string `yaml:"cert"`
	KeyPath      string `yaml:"key"`
	GenerateCert bool   `yaml:"generate_cert"`
	LogLevel     string `yaml:"log_level"`
	Advertise    bool   `yaml:"advertise"`
}

// Default returns the settings used when nothing else is configured
func Default() *Config {
	return &Config{
		Flavor:   transport.DefaultFlavor.String(),
		Port:     DefaultPort,
		CertPath: transport.DefaultCertPath,
		KeyPath:  transport.DefaultKeyPath,
		LogLevel: "info",
	}
}

// Load reads a YAML file over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return cfg, nil
}

// ApplyEnv overrides settings from environment variables found by lookup.
// Pass os.LookupEnv in production.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(FlavorEnvVar); ok && v != "" {
		c.Flavor = v
	}
	if v, ok := lookup(LogLevelEnvVar); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup(PortEnvVar); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", PortEnvVar, v, err)
		}
		c.Port = port
	}
	return nil
}

// Validate checks the settings for values the server cannot use
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range (0-65535)", c.Port)
	}
	if c.ResolvedFlavor().Secure() && !c.GenerateCert {
		if c.CertPath == "" || c.KeyPath == "" {
			return fmt.Errorf("flavor %s requires both a certificate and a key", c.ResolvedFlavor())
		}
	}
	return nil
}

// ResolvedFlavor parses the configured flavor token
func (c *Config) ResolvedFlavor() transport.Flavor {
	return transport.ParseFlavor(c.Flavor)
}

// CredentialProvider returns the provider matching the certificate settings
func (c *Config) CredentialProvider() transport.CredentialProvider {
	if c.GenerateCert {
		return transport.NewGeneratedCredentials()
	}
	return transport.NewFileCredentials(c.CertPath, c.KeyPath)
}
