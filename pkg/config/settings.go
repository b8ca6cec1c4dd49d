package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	// DefaultDSN opens a private in-memory database with foreign keys enforced.
	DefaultDSN = "file::memory:?_foreign_keys=on"
	// DefaultListen is the address of the HTTP front end.
	DefaultListen = "127.0.0.1:8080"
	// EnvPrefix prefixes every environment variable read by the CLI.
	EnvPrefix = "SQL_SANDBOX"
)

// Settings are the sandbox settings read from flags, the config file and the
// environment.
type Settings struct {
	DSN    string `mapstructure:"dsn"`
	Seed   string `mapstructure:"seed"`
	Listen string `mapstructure:"listen"`
	Output string `mapstructure:"output"`
	Rules  string `mapstructure:"rules"`
	// DisabledHints lists hint rule types removed from the catalog at start-up.
	DisabledHints []string `mapstructure:"disabled_hints"`
	Debug         bool     `mapstructure:"debug"`
	Verbose       bool     `mapstructure:"verbose"`
}

// SetDefaults registers the default settings and the environment binding on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("dsn", DefaultDSN)
	v.SetDefault("seed", "")
	v.SetDefault("listen", DefaultListen)
	v.SetDefault("output", "text")
	v.SetDefault("rules", "")
	v.SetDefault("disabled_hints", []string{})

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
}

// LoadSettings decodes the settings held by v.
func LoadSettings(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}
	if s.DSN == "" {
		s.DSN = DefaultDSN
	}
	if s.Listen == "" {
		s.Listen = DefaultListen
	}
	switch s.Output {
	case "":
		s.Output = "text"
	case "text", "json", "yaml":
	default:
		return nil, errors.Errorf("unsupported output format: %s", s.Output)
	}
	return &s, nil
}
