package config

import "strings"

// Environment names a deployment environment.
type Environment string

// Recognized environments.
const (
	Development Environment = "development"
	Testing     Environment = "testing"
	Production  Environment = "production"
)

// EnvironmentKey is the variable that selects the active environment.
const EnvironmentKey = "APP_ENV"

// Environments returns every recognized environment in a stable order.
func Environments() []Environment {
	return []Environment{Development, Testing, Production}
}

// Valid reports whether e is one of the recognized environments.
func (e Environment) Valid() bool {
	switch e {
	case Development, Testing, Production:
		return true
	}
	return false
}

func (e Environment) String() string {
	return string(e)
}

// ResolveEnvironment determines the active environment from the selector key.
// An absent or empty selector yields Development. Any other unrecognized value
// is an *UnknownEnvironmentError.
func ResolveEnvironment(raw RawSettings) (Environment, error) {
	value, ok := raw[EnvironmentKey]
	if !ok || strings.TrimSpace(value) == "" {
		return Development, nil
	}

	env := Environment(strings.ToLower(strings.TrimSpace(value)))
	if !env.Valid() {
		return "", &UnknownEnvironmentError{Value: value}
	}
	return env, nil
}
