package config // import "github.com/jemtv/storyfeed/internal/config"

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.yaml.in/yaml/v4"
)

// Parser handles configuration parsing.
type Parser struct {
	opts *Options
}

// NewParser returns a new Parser.
func NewParser() *Parser { return &Parser{opts: NewOptions()} }

// ParseEnvironmentVariables loads configuration values from environment
// variables.
func (self *Parser) ParseEnvironmentVariables() (*Options, error) {
	if err := env.Parse(self.env()); err != nil {
		return nil, fmt.Errorf("config: failed parse env vars: %w", err)
	} else if err := self.opts.init(); err != nil {
		return nil, err
	}
	return self.opts, nil
}

func (self *Parser) env() *EnvOptions { return &self.opts.env }

// ParseEnvFile loads configuration values from a local file and from
// environment variables after that.
func (self *Parser) ParseEnvFile(filename string) (*Options, error) {
	envMap, err := godotenv.Read(filename)
	if err != nil {
		return nil, fmt.Errorf("config: failed parse %q: %w", filename, err)
	}

	err = env.ParseWithOptions(self.env(), env.Options{Environment: envMap})
	if err != nil {
		return nil, fmt.Errorf("config: failed parse %q: %w", filename, err)
	}
	return self.ParseEnvironmentVariables()
}

// ParseYAML merges configuration values from a YAML file into the options,
// before environment parsing overrides anything.
func (self *Parser) ParseYAML(filename string) error {
	b, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("config: failed read %q: %w", filename, err)
	}

	if err := yaml.Unmarshal(b, self.opts); err != nil {
		return fmt.Errorf("config: failed parse %q: %w", filename, err)
	}
	return nil
}
