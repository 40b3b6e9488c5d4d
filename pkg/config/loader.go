package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by the loader.
const EnvPrefix = "BACKOFFICE"

// FlagBindings maps command-line flag names to configuration keys.
var FlagBindings = map[string]string{
	"http-port":  "http.port",
	"log-level":  "observability.log_level",
	"log-format": "observability.log_format",
	"store-type": "store.type",
	"store-url":  "store.url",
}

// Loader loads configuration with precedence flags > ENV > secrets file >
// config file > defaults.
type Loader struct {
	configFile string
	envPrefix  string
	flags      *pflag.FlagSet
}

// NewLoader creates a loader. configFile may be empty.
func NewLoader(configFile string) *Loader {
	return &Loader{configFile: configFile, envPrefix: EnvPrefix}
}

// WithFlags makes the flags named in FlagBindings override other sources
// when they were set on the command line.
func (l *Loader) WithFlags(flags *pflag.FlagSet) *Loader {
	l.flags = flags
	return l
}

// ConfigFile returns the configured file path, or "" if none.
func (l *Loader) ConfigFile() string { return l.configFile }

// Load reads, merges and validates the configuration.
func (l *Loader) Load() (*Config, error) {
	v := viper.New()

	for _, s := range DefaultConfig().settings() {
		v.SetDefault(s.key, s.value)
	}

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", l.configFile, err)
		}
	}

	secretsFile, err := l.discoverSecretsFile()
	if err != nil {
		return nil, err
	}
	if secretsFile != "" {
		secrets := viper.New()
		secrets.SetConfigFile(secretsFile)
		if err := secrets.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read secrets file %s: %w", secretsFile, err)
		}
		if err := v.MergeConfigMap(secrets.AllSettings()); err != nil {
			return nil, fmt.Errorf("failed to merge secrets: %w", err)
		}
	}

	if err := l.bindEnvVars(v); err != nil {
		return nil, err
	}
	if err := l.bindFlags(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// EnvName returns the environment variable bound to key, for example
// BACKOFFICE_STORE_QUERY_TIMEOUT for store.query_timeout.
func (l *Loader) EnvName(key string) string {
	return l.envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func (l *Loader) bindEnvVars(v *viper.Viper) error {
	for _, s := range DefaultConfig().settings() {
		if err := v.BindEnv(s.key, l.EnvName(s.key)); err != nil {
			return fmt.Errorf("bind %s: %w", s.key, err)
		}
	}
	return nil
}

func (l *Loader) bindFlags(v *viper.Viper) error {
	if l.flags == nil {
		return nil
	}
	for name, key := range FlagBindings {
		flag := l.flags.Lookup(name)
		if flag == nil || !flag.Changed {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag --%s: %w", name, err)
		}
	}
	return nil
}

// discoverSecretsFile finds the secrets file:
//  1. <PREFIX>_SECRETS_FILE, which must name a readable file
//  2. secrets.<ext> next to the config file
func (l *Loader) discoverSecretsFile() (string, error) {
	secretsEnv := l.envPrefix + "_SECRETS_FILE"
	if raw, ok := os.LookupEnv(secretsEnv); ok {
		secretsFile := strings.TrimSpace(raw)
		if secretsFile == "" {
			return "", fmt.Errorf("%s is set but empty", secretsEnv)
		}
		info, err := os.Stat(secretsFile)
		if err != nil {
			return "", fmt.Errorf("%s points to an inaccessible file %s: %w", secretsEnv, secretsFile, err)
		}
		if info.IsDir() {
			return "", fmt.Errorf("%s must point to a file, got directory %s", secretsEnv, secretsFile)
		}
		return secretsFile, nil
	}

	if l.configFile != "" {
		secretsFile := filepath.Join(filepath.Dir(l.configFile), "secrets"+filepath.Ext(l.configFile))
		if info, err := os.Stat(secretsFile); err == nil && !info.IsDir() {
			return secretsFile, nil
		}
	}
	return "", nil
}
