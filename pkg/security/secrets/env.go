package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// DefaultEnvPrefix namespaces the gateway's secret environment variables.
const DefaultEnvPrefix = "WEBRANA_SECRET_"

// EnvProvider loads secrets from environment variables. A secret name
// like "openai-api-key" maps to WEBRANA_SECRET_OPENAI_API_KEY.
type EnvProvider struct {
	// Prefix is prepended to every derived variable name
	Prefix string
}

// NewEnvProvider creates an environment variable secret provider.
func NewEnvProvider(prefix string) *EnvProvider {
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	return &EnvProvider{Prefix: prefix}
}

// GetSecret reads the secret's derived environment variable.
func (p *EnvProvider) GetSecret(ctx context.Context, name string) (string, error) {
	envVar := p.envVarName(name)
	value := os.Getenv(envVar)
	if value == "" {
		return "", fmt.Errorf("secret not found in environment: %s (env var: %s)", name, envVar)
	}
	return value, nil
}

// Provider returns the backend name.
func (p *EnvProvider) Provider() string {
	return "env"
}

// Supports always returns true; any secret can arrive via environment,
// which makes this backend the natural last link of a chain.
func (p *EnvProvider) Supports(name string) bool {
	return true
}

// envVarName derives the variable name: uppercase, hyphens to
// underscores, prefix prepended.
func (p *EnvProvider) envVarName(name string) string {
	return p.Prefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}
