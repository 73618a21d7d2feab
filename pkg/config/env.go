package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Variable names understood by the original webhook receiver. They are read
// only when the corresponding envconfig variable is unset.
const (
	legacySharedSecretEnv = "DWINSHAREDSECRET"
	legacyStripeKeyEnv    = "STRIPE_SECRET_KEY"
	legacyDailyLimitEnv   = "EUR_DAILY_LIMIT"
	legacyDBPathEnv       = "DB_PATH"
	legacyBankIDSuffix    = "_BANK_ID"
)

// GetEnv retrieves an environment variable with a default value
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsEnvSet checks if an environment variable is set
func IsEnvSet(key string) bool {
	return os.Getenv(key) != ""
}

// legacyDestinations collects <CUR>_BANK_ID variables into a destination table.
// The table is built once at startup instead of probing the environment per payout.
func legacyDestinations(environ []string) map[string]string {
	out := map[string]string{}
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasSuffix(key, legacyBankIDSuffix) {
			continue
		}
		code := strings.TrimSuffix(key, legacyBankIDSuffix)
		if len(code) != 3 || strings.TrimSpace(value) == "" {
			continue
		}
		out[code] = value
	}
	return out
}

// findEnvFile walks from the working directory up to the filesystem root and
// returns the first match for name, so binaries and tests started from a
// subdirectory still pick up the repository's .env.
func findEnvFile(name string) (string, error) {
	if name == "" {
		name = ".env"
	}
	if filepath.IsAbs(name) {
		if _, err := os.Stat(name); err != nil {
			return "", err
		}
		return name, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}
