package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// envPrefix namespaces every environment variable read by the server.
const envPrefix = "GOPHAUTH_"

// parseEnv overlays config with GOPHAUTH_* environment variables. A .env
// file (or the file named by GOPHAUTH_ENV_FILE) is loaded first when it
// exists; variables already present in the environment take precedence over
// the file. Unset variables leave fields untouched. Malformed values panic.
func parseEnv(config *Config) {
	envFile := os.Getenv(envPrefix + "ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	if err := env.ParseWithOptions(config, env.Options{Prefix: envPrefix}); err != nil {
		panic(err)
	}
}
