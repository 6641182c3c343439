// Package config loads the courier configuration from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/outboundhq/courier/internal/integration"
)

// envPrefix is stripped from override variables: COURIER_SERVER_PORT=9090
// overrides server.port.
const envPrefix = "COURIER_"

type Config struct {
	Server  ServerConfig   `koanf:"server"`
	Vendors []VendorConfig `koanf:"vendors"`
}

type ServerConfig struct {
	Port int `koanf:"port"`
}

// VendorConfig declares one configured integration.
type VendorConfig struct {
	// Name labels this entry in responses and logs; defaults to Type.
	Name string `koanf:"name"`

	// Type selects the registered adapter (mixpanel, snowplow, vero).
	Type string `koanf:"type"`

	// Settings is the vendor settings bag passed on every delivery.
	Settings integration.Settings `koanf:"settings"`
}

// Load reads the config file at path (skipped when empty or absent) and
// applies environment overrides.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("load env overrides: %w", err)
	}

	if !k.Exists("server.port") {
		k.Set("server.port", 8080)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	for i := range cfg.Vendors {
		if cfg.Vendors[i].Type == "" {
			return nil, fmt.Errorf("vendor entry %d: type is required", i)
		}
		if cfg.Vendors[i].Name == "" {
			cfg.Vendors[i].Name = cfg.Vendors[i].Type
		}
	}

	return &cfg, nil
}
