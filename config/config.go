// Package config loads the TOML runtime configuration consumed by the
// securecomm programs.
package config

import (
	"fmt"
	"net"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/securecomm/frame"
)

// Config holds the process configuration. Zero fields are replaced with
// defaults by Load.
type Config struct {
	// ServerAddress is the address clients dial and servers bind.
	ServerAddress string `toml:"server_address"`
	// ServerPort is the TCP port for the channel.
	ServerPort int `toml:"server_port"`
	// Cipher names the AEAD suite: "aes-256-gcm" or "chacha20-poly1305".
	Cipher string `toml:"cipher"`
	// LogLevel is a logrus level name ("debug", "info", "warn", "error").
	LogLevel string `toml:"log_level"`
	// LogFile, when set, receives log output instead of the console.
	LogFile string `toml:"log_file"`
	// TrustStore, when set, points at a hashed credential store file; when
	// empty the reference trust store is used.
	TrustStore string `toml:"trust_store"`
	// QuitWord is the sentinel message that ends the session.
	QuitWord string `toml:"quit_word"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		ServerAddress: "127.0.0.1",
		ServerPort:    8443,
		Cipher:        frame.SuiteAES256GCM.String(),
		LogLevel:      "info",
		QuitWord:      "exit",
	}
}

// Load reads a TOML configuration file, applies defaults for unset fields,
// and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

// Validate checks field ranges and enumerations.
func (c Config) Validate() error {
	if c.ServerAddress == "" {
		return fmt.Errorf("server_address must not be empty")
	}
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return fmt.Errorf("server_port %d out of range", c.ServerPort)
	}
	if _, err := frame.ParseSuite(c.Cipher); err != nil {
		return err
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level %q: %w", c.LogLevel, err)
	}
	if c.QuitWord == "" {
		return fmt.Errorf("quit_word must not be empty")
	}
	return nil
}

// Addr returns the dial/listen address in host:port form.
func (c Config) Addr() string {
	return net.JoinHostPort(c.ServerAddress, strconv.Itoa(c.ServerPort))
}

// Suite returns the configured cipher suite. An unrecognized cipher name
// is an error, never a silent fallback to a different suite.
func (c Config) Suite() (frame.Suite, error) {
	return frame.ParseSuite(c.Cipher)
}
