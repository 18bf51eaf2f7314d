package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// NewViper reads config.yaml from CONFIG_PATH (or the working directory) with environment overrides,
// e.g. DATABASE_DSN for database.dsn.
func NewViper() *viper.Viper {
	config := viper.New()

	config.SetConfigName("config")
	config.SetConfigType("yaml")
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		config.AddConfigPath(path)
	}
	config.AddConfigPath(".")
	config.AddConfigPath("./../")

	config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.AutomaticEnv()

	if err := config.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
	}

	return config
}
