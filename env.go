package pulseboard

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// EnvInt returns key parsed as an integer, or fallback if unset or invalid.
func EnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// EnvBool returns key parsed as a boolean, or fallback if unset or invalid.
func EnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// EnvDuration returns key parsed with time.ParseDuration, or fallback if
// unset or invalid.
func EnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// LoadEnvFiles loads the given dotenv files, skipping any that do not exist.
// Values already set in the process environment win. It returns the files
// that were loaded.
func LoadEnvFiles(files ...string) ([]string, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	loaded := make([]string, 0, len(files))
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return loaded, err
		}
		loaded = append(loaded, file)
	}
	return loaded, nil
}
