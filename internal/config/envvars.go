// ABOUTME: Environment variable expansion and overrides for config string fields
// ABOUTME: Replaces ${VAR} patterns with os.Getenv values; PI_POST_BASE_URL wins over files

package config

import (
	"os"
	"regexp"
)

// EnvBaseURL overrides server.base_url when set.
const EnvBaseURL = "PI_POST_BASE_URL"

var envVarPattern = regexp.MustCompile(`\$\{(\w+)\}`)

// ResolveEnvVars expands ${VAR} patterns in string fields of Settings and
// applies direct environment overrides.
func ResolveEnvVars(s *Settings) {
	s.Server.BaseURL = expandEnv(s.Server.BaseURL)
	s.Storage.Path = expandEnv(s.Storage.Path)
	s.Cache.Key = expandEnv(s.Cache.Key)

	if v := os.Getenv(EnvBaseURL); v != "" {
		s.Server.BaseURL = v
	}
}

// expandEnv replaces ${VAR} with os.Getenv(VAR). Unset vars become "".
func expandEnv(s string) string {
	if s == "" {
		return s
	}
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}
