package config

import (
	"os"

	"github.com/joho/godotenv"
)

// dotenvFiles in precedence order: .env.local beats .env. Real OS env
// vars beat both, since godotenv never overwrites variables that are
// already set. The same variables then flow into Load's env overrides
// (APP_*, DB_*, REDIS_*, SWEEP_*, STORAGE_*).
var dotenvFiles = []string{".env.local", ".env"}

// LoadDotEnv reads the dotenv files present in the working directory
// and reports which ones it found. Missing files are not an error;
// containers typically run with env vars only.
func LoadDotEnv() []string {
	var found []string
	for _, f := range dotenvFiles {
		if _, err := os.Stat(f); err == nil {
			found = append(found, f)
		}
	}
	if len(found) > 0 {
		_ = godotenv.Load(found...)
	}
	return found
}
