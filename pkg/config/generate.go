package config

import (
	toml "github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/dotfiles/pkg/errors"
)

// ToTOML renders the configuration in the format accepted by the config files
func (c *Config) ToTOML() (string, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to render configuration")
	}
	return string(data), nil
}
