package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAppConfig(t *testing.T, dir, filename, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644))
}

const sauceDemoConfig = `name: sauce_demo
display_name: Sauce Demo
kind: browser
base_urls:
  dev: https://www.saucedemo.com
credentials:
  standard:
    username: standard_user
    secret: secret_sauce
default_timeout_ms: 15000
screenshot_on_failure: true
`

const reqresConfig = `name: reqres
kind: api
base_urls:
  dev: https://reqres.in
  staging: https://staging.reqres.in
extra:
  api_key: reqres-free-v1
`

func TestLoadRegistry(t *testing.T) {
	dir := t.TempDir()
	writeAppConfig(t, dir, "sauce_demo.yaml", sauceDemoConfig)
	writeAppConfig(t, dir, "reqres.yaml", reqresConfig)

	registry, err := LoadRegistry(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, registry.Len())
	assert.Equal(t, []string{"reqres", "sauce_demo"}, registry.Names())
}

func TestLoadRegistryAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeAppConfig(t, dir, "reqres.yaml", reqresConfig)

	registry, err := LoadRegistry(dir)
	require.NoError(t, err)

	app, err := registry.Get("reqres")
	require.NoError(t, err)
	assert.Equal(t, "reqres", app.DisplayName)
	assert.Equal(t, AppKindAPI, app.Kind)
	assert.Equal(t, DefaultTimeoutMS, app.DefaultTimeoutMS)
}

func TestGetReturnsMatchingName(t *testing.T) {
	dir := t.TempDir()
	writeAppConfig(t, dir, "sauce_demo.yaml", sauceDemoConfig)

	registry, err := LoadRegistry(dir)
	require.NoError(t, err)

	app, err := registry.Get("sauce_demo")
	require.NoError(t, err)
	assert.Equal(t, "sauce_demo", app.Name)
}

func TestGetReturnsIndependentCopies(t *testing.T) {
	dir := t.TempDir()
	writeAppConfig(t, dir, "sauce_demo.yaml", sauceDemoConfig)

	registry, err := LoadRegistry(dir)
	require.NoError(t, err)

	first, err := registry.Get("sauce_demo")
	require.NoError(t, err)
	first.BaseURLs[EnvDev] = "https://tampered.example.com"
	first.Credentials["standard"] = Credential{Username: "tampered"}

	second, err := registry.Get("sauce_demo")
	require.NoError(t, err)
	assert.Equal(t, "https://www.saucedemo.com", second.BaseURLs[EnvDev])
	assert.Equal(t, "standard_user", second.Credentials["standard"].Username)
}

func TestGetUnknownApp(t *testing.T) {
	dir := t.TempDir()
	writeAppConfig(t, dir, "sauce_demo.yaml", sauceDemoConfig)

	registry, err := LoadRegistry(dir)
	require.NoError(t, err)

	_, err = registry.Get("nonexistent")
	var unknownErr *UnknownAppError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, []string{"nonexistent"}, unknownErr.Names)
	assert.Contains(t, unknownErr.Error(), "sauce_demo")
}

func TestLoadRegistryDuplicateName(t *testing.T) {
	// Duplicate detection must not depend on file load order.
	cases := []struct{ first, second string }{
		{"a_dup.yaml", "b_dup.yaml"},
		{"z_dup.yaml", "a_dup.yaml"},
	}

	for _, tc := range cases {
		dir := t.TempDir()
		dupConfig := "name: dup\nbase_urls:\n  dev: https://dup.example.com\n"
		writeAppConfig(t, dir, tc.first, dupConfig)
		writeAppConfig(t, dir, tc.second, dupConfig)

		_, err := LoadRegistry(dir)
		var cfgErr *ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Contains(t, cfgErr.Error(), "duplicate app name")
	}
}

func TestLoadRegistryMalformedDocument(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing name", "base_urls:\n  dev: https://example.com\n"},
		{"missing base_urls", "name: broken\n"},
		{"empty base url", "name: broken\nbase_urls:\n  dev: \"\"\n"},
		{"unknown environment", "name: broken\nbase_urls:\n  qa: https://example.com\n"},
		{"negative timeout", "name: broken\nbase_urls:\n  dev: https://example.com\ndefault_timeout_ms: -5\n"},
		{"unknown kind", "name: broken\nkind: desktop\nbase_urls:\n  dev: https://example.com\n"},
		{"invalid yaml", "name: [broken\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeAppConfig(t, dir, "broken.yaml", tt.content)

			_, err := LoadRegistry(dir)
			var cfgErr *ConfigError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestLoadRegistryMissingDirectory(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "does-not-exist"))
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestLoadRegistryIgnoresNonYAMLFiles(t *testing.T) {
	dir := t.TempDir()
	writeAppConfig(t, dir, "sauce_demo.yaml", sauceDemoConfig)
	writeAppConfig(t, dir, "README.md", "# not a config\n")

	registry, err := LoadRegistry(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, registry.Len())
}

func TestValidateAppFilter(t *testing.T) {
	dir := t.TempDir()
	writeAppConfig(t, dir, "sauce_demo.yaml", sauceDemoConfig)
	writeAppConfig(t, dir, "reqres.yaml", reqresConfig)

	registry, err := LoadRegistry(dir)
	require.NoError(t, err)

	assert.NoError(t, registry.ValidateAppFilter(nil))
	assert.NoError(t, registry.ValidateAppFilter([]string{"sauce_demo"}))

	err = registry.ValidateAppFilter([]string{"sauce_demo", "typo_app", "another"})
	var unknownErr *UnknownAppError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, []string{"typo_app", "another"}, unknownErr.Names)
}

func TestParseEnvironment(t *testing.T) {
	for _, env := range Environments {
		parsed, err := ParseEnvironment(string(env))
		require.NoError(t, err)
		assert.Equal(t, env, parsed)
	}

	_, err := ParseEnvironment("qa")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dev, staging, production")
}

func TestConfigErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &ConfigError{Path: "x.yaml", Message: "failed", Err: cause}
	assert.ErrorIs(t, err, cause)
}
