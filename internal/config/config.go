package config

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

type Config interface {
	EnvConfig
	GatewayConfig
	SandboxConfig
	CorsConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetDataFolder() string
	GetLogLevel() string
	GetLogFile() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Gateway
	Sandbox
	Cors
}

func New() Config {
	return mainConfig{}
}

var (
	fileValues     = map[string]string{}
	fileValuesLock sync.RWMutex
)

// Load reads a flat YAML map of variable names to values. File values sit
// between the process environment and the built-in defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return New(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load read %s: %w", path, err)
	}
	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config.Load parse %s: %w", path, err)
	}

	values := make(map[string]string, len(raw))
	for k, v := range raw {
		if v == nil {
			continue
		}
		values[k] = fmt.Sprint(v)
	}

	fileValuesLock.Lock()
	fileValues = values
	fileValuesLock.Unlock()
	return New(), nil
}

func fileValue(name string) string {
	fileValuesLock.RLock()
	defer fileValuesLock.RUnlock()
	return fileValues[name]
}
