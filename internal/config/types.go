package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Environment names a deployment target an application may expose.
type Environment string

const (
	// EnvDev is the default environment for local and demo targets.
	EnvDev Environment = "dev"
	// EnvStaging is the pre-production environment.
	EnvStaging Environment = "staging"
	// EnvProduction is the live environment.
	EnvProduction Environment = "production"
)

// Environments lists every valid environment, in precedence order.
var Environments = []Environment{EnvDev, EnvStaging, EnvProduction}

// ParseEnvironment validates a user-supplied environment name.
func ParseEnvironment(s string) (Environment, error) {
	for _, env := range Environments {
		if string(env) == s {
			return env, nil
		}
	}
	known := make([]string, len(Environments))
	for i, env := range Environments {
		known[i] = string(env)
	}
	return "", fmt.Errorf("invalid environment %q, must be one of: %s", s, strings.Join(known, ", "))
}

// AppKind distinguishes browser-driven applications from API-only ones.
type AppKind string

const (
	// AppKindBrowser marks applications exercised through a browser page.
	AppKindBrowser AppKind = "browser"
	// AppKindAPI marks applications exercised through an HTTP client.
	AppKindAPI AppKind = "api"
)

// DefaultTimeoutMS applies when an application document omits
// default_timeout_ms.
const DefaultTimeoutMS = 30000

// Credential is one role's login material for an application. The secret may
// be given inline or indirected through a process environment variable, which
// keeps real passwords out of checked-in configuration.
type Credential struct {
	Username  string `yaml:"username"`
	Secret    string `yaml:"secret,omitempty"`
	SecretEnv string `yaml:"secret_env,omitempty"`
}

// Resolve returns the effective secret, reading SecretEnv when set.
func (c Credential) Resolve() string {
	if c.SecretEnv != "" {
		return os.Getenv(c.SecretEnv)
	}
	return c.Secret
}

// Viewport is the browser window size for browser applications.
type Viewport struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// AppConfig describes one target application. Instances are constructed once
// at registry load time and treated as immutable afterwards; the registry
// hands out deep copies so no two callers share mutable state.
type AppConfig struct {
	// Name is the unique identifier, stable across environments.
	Name string `yaml:"name"`
	// DisplayName is a human-readable label, defaults to Name.
	DisplayName string `yaml:"display_name,omitempty"`
	// Kind selects the session driver (browser or api). Defaults to api.
	Kind AppKind `yaml:"kind,omitempty"`
	// BaseURLs maps environment names to base URLs. At least one entry is
	// required.
	BaseURLs map[Environment]string `yaml:"base_urls"`
	// Credentials maps role names (e.g. "standard") to login material.
	Credentials map[string]Credential `yaml:"credentials,omitempty"`
	// DefaultTimeoutMS bounds navigation and request calls.
	DefaultTimeoutMS int `yaml:"default_timeout_ms,omitempty"`
	// ScreenshotOnFailure captures a screenshot when a scenario against
	// this application fails. Browser applications only.
	ScreenshotOnFailure bool `yaml:"screenshot_on_failure,omitempty"`
	// Viewport overrides the default browser window size.
	Viewport *Viewport `yaml:"viewport,omitempty"`
	// Extra carries application-specific settings (API keys etc.).
	Extra map[string]interface{} `yaml:"extra,omitempty"`
}

// DefaultTimeout returns the configured timeout as a duration.
func (a *AppConfig) DefaultTimeout() time.Duration {
	ms := a.DefaultTimeoutMS
	if ms <= 0 {
		ms = DefaultTimeoutMS
	}
	return time.Duration(ms) * time.Millisecond
}

// Clone returns a deep copy so callers can never mutate registry state.
func (a *AppConfig) Clone() *AppConfig {
	clone := *a

	clone.BaseURLs = make(map[Environment]string, len(a.BaseURLs))
	for env, url := range a.BaseURLs {
		clone.BaseURLs[env] = url
	}

	if a.Credentials != nil {
		clone.Credentials = make(map[string]Credential, len(a.Credentials))
		for role, cred := range a.Credentials {
			clone.Credentials[role] = cred
		}
	}

	if a.Viewport != nil {
		vp := *a.Viewport
		clone.Viewport = &vp
	}

	clone.Extra = cloneExtra(a.Extra)

	return &clone
}

func cloneExtra(extra map[string]interface{}) map[string]interface{} {
	if extra == nil {
		return nil
	}
	clone := make(map[string]interface{}, len(extra))
	for k, v := range extra {
		clone[k] = cloneValue(v)
	}
	return clone
}

func cloneValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return cloneExtra(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
