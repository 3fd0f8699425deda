// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the exam server.
//
// Fields:
//   - EndpointAddr: bind address for the TCP listener.
//   - UsersFile: path of the flat user store (username:password:role lines).
//   - DatabaseDSN: optional PostgreSQL DSN; when set it replaces the flat file.
//   - SecretKey: HMAC secret for signing session tokens (HS256).
//   - SessionTokenValidityDuration: lifetime of the token issued on login.
//   - S3RootUser / S3RootPassword / S3Bucket / S3Region / S3BaseEndpoint:
//     S3-compatible storage for question-bank snapshots; snapshots are
//     disabled while S3Bucket is empty.
type Config struct {
	EndpointAddr                 string
	UsersFile                    string
	DatabaseDSN                  string
	SecretKey                    string
	SessionTokenValidityDuration time.Duration
	S3RootUser                   string
	S3RootPassword               string
	S3Bucket                     string
	S3Region                     string
	S3BaseEndpoint               string
}

// LoadDefaults populates Config with development defaults.
// NOTE: SecretKey is insecure and must be overridden in production.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":8081"
	c.UsersFile = "data/users.txt"
	c.DatabaseDSN = ""
	c.SecretKey = "secretKey"
	c.SessionTokenValidityDuration = 8 * time.Hour
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = ""
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
