package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/v2"
)

// envMappings ties the environment variable names the apps have always used
// to koanf keys. Anything not listed is ignored.
var envMappings = map[string]string{
	"host":             "server.host",
	"port":             "server.port",
	"shutdown_timeout": "server.shutdown_timeout",
	"app_timezone":     "server.timezone",

	"store_driver":       "database.driver",
	"mongo_uri":          "database.uri",
	"mongodb_uri":        "database.uri",
	"db_name":            "database.name",
	"db_timeout":         "database.timeout",
	"mongo_transactions": "database.transactions",

	"jwt_secret":        "auth.jwt_secret",
	"token_ttl":         "auth.token_ttl",
	"allow_role_signup": "auth.allow_role_signup",

	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_requests",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"casbin_model_path":   "security.casbin_model_path",
	"casbin_policy_path":  "security.casbin_policy_path",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

var sliceConfigPaths = []string{
	"security.cors_origins",
}

func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}

// processSliceFields splits comma-separated env values for slice keys.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}
