package configs

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// CONFIGURATOR_SERVICES_BUILD_URL for services.build-url.
const EnvPrefix = "CONFIGURATOR"

//go:embed config.example.yaml
var defaultConfigYAML string

// Load decodes the configuration held by v, layered in increasing precedence:
// the embedded config.example.yaml, a config file, CONFIGURATOR_* environment
// variables and any flags already bound to v. An explicit file must exist;
// otherwise config.yaml is looked up in searchPaths and may be absent.
func Load(v *viper.Viper, file string, searchPaths ...string) (Config, error) {
	v.SetConfigType("yaml")
	if err := v.ReadConfig(strings.NewReader(defaultConfigYAML)); err != nil {
		return Config{}, fmt.Errorf("failed to read embedded config.example.yaml: %w", err)
	}

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		for _, path := range searchPaths {
			v.AddConfigPath(path)
		}
	}

	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode application config: %w", err)
	}
	return cfg, nil
}
