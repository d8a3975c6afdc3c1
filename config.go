package httpd

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
)

// Config is everything the command line can set.
type Config struct {
	Port  int
	Quiet bool // discard error logging
}

// ParsePort turns the command-line port argument into a Config.
func ParsePort(arg string) (*Config, error) {
	port, err := strconv.Atoi(arg)
	if err != nil {
		return nil, fmt.Errorf("invalid port %q: %w", arg, err)
	}
	cfg := &Config{Port: port}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	return nil
}

// Address is the listen address for every interface.
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// NewLogger returns the error logger for c.
func (c *Config) NewLogger() *log.Logger {
	if c.Quiet {
		return log.New(io.Discard, "", 0)
	}
	return log.New(os.Stderr, "error :: ", log.LstdFlags)
}
