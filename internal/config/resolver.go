package config

import (
	"sort"
	"strings"
	"time"
)

// ResolvedConfig is an AppConfig narrowed to a single environment: one base
// URL, one credential set, one timeout. It is a read-only view built from
// copies, so resolving never mutates the shared AppConfig and parallel
// scenarios cannot interfere with each other.
type ResolvedConfig struct {
	Name                string
	DisplayName         string
	Kind                AppKind
	Environment         Environment
	BaseURL             string
	Credentials         map[string]Credential
	Timeout             time.Duration
	ScreenshotOnFailure bool
	Viewport            *Viewport
	Extra               map[string]interface{}
}

// Resolve combines an application configuration with the requested
// environment. Resolution is a pure substitution: the base URL for the
// environment is looked up, nothing else changes. An environment absent from
// the application's base_urls yields an *UnknownEnvironmentError — never a
// silent fallback to another environment.
func Resolve(app *AppConfig, env Environment) (*ResolvedConfig, error) {
	baseURL, ok := app.BaseURLs[env]
	if !ok {
		known := make([]Environment, 0, len(app.BaseURLs))
		for e := range app.BaseURLs {
			known = append(known, e)
		}
		sort.Slice(known, func(i, j int) bool { return known[i] < known[j] })
		return nil, &UnknownEnvironmentError{App: app.Name, Environment: env, Known: known}
	}

	clone := app.Clone()
	return &ResolvedConfig{
		Name:                clone.Name,
		DisplayName:         clone.DisplayName,
		Kind:                clone.Kind,
		Environment:         env,
		BaseURL:             strings.TrimRight(baseURL, "/"),
		Credentials:         clone.Credentials,
		Timeout:             clone.DefaultTimeout(),
		ScreenshotOnFailure: clone.ScreenshotOnFailure,
		Viewport:            clone.Viewport,
		Extra:               clone.Extra,
	}, nil
}

// Credential returns the named role's login material with the secret
// resolved from the environment when indirected.
func (rc *ResolvedConfig) Credential(role string) (Credential, bool) {
	cred, ok := rc.Credentials[role]
	if !ok {
		return Credential{}, false
	}
	cred.Secret = cred.Resolve()
	return cred, true
}

// URL joins a path to the resolved base URL.
func (rc *ResolvedConfig) URL(path string) string {
	if path == "" {
		return rc.BaseURL
	}
	return rc.BaseURL + "/" + strings.TrimLeft(path, "/")
}
