package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config in a form every supported file format can
// decode. Durations are strings such as "15s"; unset fields keep the
// values from the previous layer.
type fileConfig struct {
	Server struct {
		Host            string `json:"host" yaml:"host" toml:"host"`
		Port            int    `json:"port" yaml:"port" toml:"port"`
		ReadTimeout     string `json:"read_timeout" yaml:"read_timeout" toml:"read_timeout"`
		WriteTimeout    string `json:"write_timeout" yaml:"write_timeout" toml:"write_timeout"`
		IdleTimeout     string `json:"idle_timeout" yaml:"idle_timeout" toml:"idle_timeout"`
		ShutdownTimeout string `json:"shutdown_timeout" yaml:"shutdown_timeout" toml:"shutdown_timeout"`
	} `json:"server" yaml:"server" toml:"server"`
	Logger struct {
		Level     string `json:"level" yaml:"level" toml:"level"`
		Format    string `json:"format" yaml:"format" toml:"format"`
		AddSource *bool  `json:"add_source" yaml:"add_source" toml:"add_source"`
	} `json:"logger" yaml:"logger" toml:"logger"`
	Security struct {
		EnableRateLimit *bool    `json:"rate_limit_enabled" yaml:"rate_limit_enabled" toml:"rate_limit_enabled"`
		RateLimitRPS    int      `json:"rate_limit_rps" yaml:"rate_limit_rps" toml:"rate_limit_rps"`
		RateLimitBurst  int      `json:"rate_limit_burst" yaml:"rate_limit_burst" toml:"rate_limit_burst"`
		AllowedOrigins  []string `json:"allowed_origins" yaml:"allowed_origins" toml:"allowed_origins"`
		TrustedProxies  []string `json:"trusted_proxies" yaml:"trusted_proxies" toml:"trusted_proxies"`
	} `json:"security" yaml:"security" toml:"security"`
	Dataset struct {
		Variant string `json:"variant" yaml:"variant" toml:"variant"`
		Seed    *int64 `json:"seed" yaml:"seed" toml:"seed"`
		Start   string `json:"start" yaml:"start" toml:"start"`
		End     string `json:"end" yaml:"end" toml:"end"`
		CSVFile string `json:"csv_file" yaml:"csv_file" toml:"csv_file"`
	} `json:"dataset" yaml:"dataset" toml:"dataset"`
}

// applyFile overlays a TOML, YAML or JSON file onto cfg.
func applyFile(cfg *Config, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("access config file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, &fc)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	case ".json":
		err = json.Unmarshal(data, &fc)
	default:
		return fmt.Errorf("unsupported config file format: %s", ext)
	}
	if err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	return fc.merge(cfg)
}

func (fc *fileConfig) merge(cfg *Config) error {
	setString(&cfg.Server.Host, fc.Server.Host)
	setInt(&cfg.Server.Port, fc.Server.Port)
	for _, d := range []struct {
		dst *time.Duration
		raw string
		key string
	}{
		{&cfg.Server.ReadTimeout, fc.Server.ReadTimeout, "server.read_timeout"},
		{&cfg.Server.WriteTimeout, fc.Server.WriteTimeout, "server.write_timeout"},
		{&cfg.Server.IdleTimeout, fc.Server.IdleTimeout, "server.idle_timeout"},
		{&cfg.Server.ShutdownTimeout, fc.Server.ShutdownTimeout, "server.shutdown_timeout"},
	} {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		*d.dst = parsed
	}

	setString(&cfg.Logger.Level, strings.ToLower(fc.Logger.Level))
	setString(&cfg.Logger.Format, strings.ToLower(fc.Logger.Format))
	if fc.Logger.AddSource != nil {
		cfg.Logger.AddSource = *fc.Logger.AddSource
	}

	if fc.Security.EnableRateLimit != nil {
		cfg.Security.EnableRateLimit = *fc.Security.EnableRateLimit
	}
	setInt(&cfg.Security.RateLimitRPS, fc.Security.RateLimitRPS)
	setInt(&cfg.Security.RateLimitBurst, fc.Security.RateLimitBurst)
	if len(fc.Security.AllowedOrigins) > 0 {
		cfg.Security.AllowedOrigins = fc.Security.AllowedOrigins
	}
	if len(fc.Security.TrustedProxies) > 0 {
		cfg.Security.TrustedProxies = fc.Security.TrustedProxies
	}

	setString(&cfg.Dataset.Variant, strings.ToLower(fc.Dataset.Variant))
	if fc.Dataset.Seed != nil {
		if *fc.Dataset.Seed < 0 {
			return fmt.Errorf("dataset.seed must not be negative")
		}
		cfg.Dataset.Seed = uint64(*fc.Dataset.Seed)
	}
	setString(&cfg.Dataset.Start, fc.Dataset.Start)
	setString(&cfg.Dataset.End, fc.Dataset.End)
	setString(&cfg.Dataset.CSVFile, fc.Dataset.CSVFile)
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
