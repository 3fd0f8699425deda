// Package config handles configuration for the CLI client.
package config

// Config holds runtime settings for the exam CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the exam server's TCP endpoint.
type Config struct {
	ServerEndpointAddr string
}

// LoadDefaults populates c with development defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:8081"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
