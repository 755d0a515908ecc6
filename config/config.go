// Package config manages application settings: the default registry, environment bindings and the TOML file.
package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/kplay-cli/kplay/constant"
	"github.com/kplay-cli/kplay/filesystem"
	"github.com/kplay-cli/kplay/where"
	"github.com/spf13/viper"
)

// EnvKeyReplacer normalizes configuration keys into environment variable names.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Setup registers defaults and env bindings, then reads kplay.toml from where.Config() if present.
func Setup() error {
	viper.SetConfigName(constant.Kplay)
	viper.SetConfigType("toml")
	viper.SetFs(filesystem.API())
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.Kplay)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, env := range EnvExposed {
		viper.MustBindEnv(env)
	}

	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		viper.SetDefault(name, field.Value)
	}

	if err := viper.ReadInConfig(); err != nil {
		// the file may have been deleted since viper first located it
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	return nil
}
