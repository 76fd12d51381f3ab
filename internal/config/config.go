package config // import "github.com/jemtv/storyfeed/internal/config"

// Opts holds parsed configuration options.
var Opts *Options

// Load loads configuration values from a local file (if filename isn't empty)
// and from environment variables after that.
func Load(filename string) error { return LoadYAML("", filename) }

// LoadYAML loads configuration values from a YAML file (if yamlName isn't
// empty), a local .env file (if envName isn't empty) and from environment
// variables after that.
func LoadYAML(yamlName, envName string) (err error) {
	cfg := NewParser()
	if yamlName != "" {
		if err := cfg.ParseYAML(yamlName); err != nil {
			return err
		}
	}

	if envName != "" {
		Opts, err = cfg.ParseEnvFile(envName)
		return
	}
	Opts, err = cfg.ParseEnvironmentVariables()
	return
}
