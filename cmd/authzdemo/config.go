package main

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/openalljoyn/authzcore/internal/platform/cfg"
)

// Config is the bootstrap configuration for the demonstration binary: which
// policystore driver backs the live policy, which authmetacache driver
// fronts the (here, static) auth-metadata provider, and the admin group
// used by the managed-application carve-out's admin-required members.
type Config struct {
	ListenAddr string `mapstructure:"listen_addr"`
	DataDir    string `mapstructure:"data_dir"`

	PolicyStore struct {
		Driver string         `mapstructure:"driver"`
		Mirror map[string]any `mapstructure:"mirror"`
	} `mapstructure:"policy_store"`

	AuthCache struct {
		Driver string         `mapstructure:"driver"`
		Config map[string]any `mapstructure:"config"`
	} `mapstructure:"auth_cache"`

	AdminGroupID string `mapstructure:"admin_group_id"`

	Logging struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"logging"`
}

// ApplyDefaults implements cfg.Setter.
func (c *Config) ApplyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = ":8443"
	}
	if c.DataDir == "" {
		c.DataDir = "./authzdemo-data"
	}
	if c.PolicyStore.Driver == "" {
		c.PolicyStore.Driver = "json"
	}
	if c.AuthCache.Driver == "" {
		c.AuthCache.Driver = "memory"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// loadConfig reads an optional TOML file at path and decodes it over the
// defaults. A missing path is not an error — the demo runs fully from
// defaults and flag overrides.
func loadConfig(path string) (*Config, error) {
	c := &Config{}

	if path != "" {
		raw := map[string]any{}
		if _, err := toml.DecodeFile(path, &raw); err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
		} else if err := cfg.Decode(raw, c); err != nil {
			return nil, err
		}
	}

	c.ApplyDefaults()
	return c, nil
}
