package githubsync

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a sync configuration document is
// missing one of the required fields.
var ErrInvalidConfig = errors.New("invalid sync config: token, owner and repo are required")

// Config identifies the GitHub repository that receives sync uploads.
// Loading such a document (JSON or YAML) is the only way to enable
// remote sync.
type Config struct {
	Token      string `json:"token" yaml:"token"`
	Owner      string `json:"owner" yaml:"owner"`
	Repo       string `json:"repo" yaml:"repo"`
	PathPrefix string `json:"pathPrefix" yaml:"pathPrefix"`
}

// Valid reports whether all required fields are set.
func (c *Config) Valid() bool {
	return c != nil && c.Token != "" && c.Owner != "" && c.Repo != ""
}

// LoadConfigFile reads a sync configuration from path. The extension
// picks the parser (.yaml/.yml => YAML, anything else JSON). PathPrefix
// defaults to "/" when omitted.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sync config: %w", err)
	}

	cfg := &Config{}
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse sync config yaml: %w", err)
		}
	} else {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse sync config json: %w", err)
		}
	}

	if !cfg.Valid() {
		return nil, ErrInvalidConfig
	}
	if cfg.PathPrefix == "" {
		cfg.PathPrefix = "/"
	}
	return cfg, nil
}
