package environ

import (
	"os"
	"strconv"
	"time"

	"k8s.io/kube-openapi/pkg/validation/strfmt"
)

// Prefix namespaces the exporter's variables. A prefixed variable wins over
// the bare name, so TEGRA_EXPORTER_PORT overrides PORT.
const Prefix = "TEGRA_EXPORTER_"

func lookup(key string) (string, bool) {
	if value, ok := os.LookupEnv(Prefix + key); ok {
		return value, true
	}
	return os.LookupEnv(key)
}

func GetString(key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}

	return fallback
}

func GetInt(key string, fallback int) int {
	if value, ok := lookup(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}

	return fallback
}

func GetBool(key string, fallback bool) bool {
	if value, ok := lookup(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}

	return fallback
}

// GetDuration accepts Go durations as well as day and week units ("1d", "2w").
func GetDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok {
		if t, err := strfmt.ParseDuration(value); err == nil {
			return t
		}
	}
	return fallback
}
