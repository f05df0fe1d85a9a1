package config

import (
	"errors"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/dmitrijs2005/verixa/internal/flagx"
	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

// godotenvLoad is a seam for tests.
var godotenvLoad = godotenv.Load

// parseEnv loads the dotenv file (from -env, else ".env" when present) into
// the process environment and then overlays every variable that is set onto
// config. Unset variables leave the current value untouched. Variables that
// are already exported take precedence over the dotenv file.
func parseEnv(config *Config) error {
	path := flagx.EnvFileFlags()
	explicit := path != ""
	if !explicit {
		path = defaultEnvFile
	}

	if err := godotenvLoad(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	return env.Parse(config)
}
