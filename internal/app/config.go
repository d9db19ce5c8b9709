package app

import (
	"fmt"
	"io"

	"github.com/specialistvlad/wdlgo/internal/config"
)

// Config holds the command-line configuration for an App instance. Empty
// strings leave the value from the configuration files in place.
type Config struct {
	ConfigPaths []string // hcl files or directories
	VarsFile    string   // yaml or json global overrides

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	Router          string
	RouterURL       string
	RouterNamespace string

	// Stdin feeds the prompt router. Prompt receives its questions.
	Stdin  io.Reader
	Prompt io.Writer
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid healthcheck port %d", cfg.HealthcheckPort)
	}

	switch cfg.Router {
	case "", config.TransportPrompt, config.TransportSocketIO, config.TransportNone:
	default:
		return nil, fmt.Errorf("invalid router %q (must be prompt, socketio or none)", cfg.Router)
	}

	return &cfg, nil
}

// apply layers the command-line overrides on top of the loaded model.
func (c *Config) apply(m *config.Model) {
	if c.LogLevel != "" {
		m.Log.Level = c.LogLevel
	}
	if c.LogFormat != "" {
		m.Log.Format = c.LogFormat
	}
	if c.Router != "" {
		m.Router.Transport = c.Router
	}
	if c.RouterURL != "" {
		m.Router.URL = c.RouterURL
	}
	if c.RouterNamespace != "" {
		m.Router.Namespace = c.RouterNamespace
	}
}
