package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sauceDemoApp() *AppConfig {
	app := &AppConfig{
		Name: "sauce_demo",
		Kind: AppKindBrowser,
		BaseURLs: map[Environment]string{
			EnvDev: "https://www.saucedemo.com",
		},
		Credentials: map[string]Credential{
			"standard": {Username: "standard_user", Secret: "secret_sauce"},
		},
		ScreenshotOnFailure: true,
	}
	applyAppDefaults(app)
	return app
}

func TestResolveSubstitutesBaseURL(t *testing.T) {
	resolved, err := Resolve(sauceDemoApp(), EnvDev)
	require.NoError(t, err)

	assert.Equal(t, "sauce_demo", resolved.Name)
	assert.Equal(t, EnvDev, resolved.Environment)
	assert.Equal(t, "https://www.saucedemo.com", resolved.BaseURL)
	assert.True(t, resolved.ScreenshotOnFailure)
}

func TestResolveUnknownEnvironment(t *testing.T) {
	_, err := Resolve(sauceDemoApp(), EnvStaging)

	var envErr *UnknownEnvironmentError
	require.ErrorAs(t, err, &envErr)
	assert.Equal(t, "sauce_demo", envErr.App)
	assert.Equal(t, EnvStaging, envErr.Environment)
	assert.Equal(t, []Environment{EnvDev}, envErr.Known)
	assert.Contains(t, envErr.Error(), "no base URL for environment staging")
}

func TestResolveIsPureSubstitution(t *testing.T) {
	// Only the environment-dependent fields may differ between resolutions
	// of the same app.
	app := sauceDemoApp()
	app.BaseURLs[EnvStaging] = "https://staging.saucedemo.com"

	dev, err := Resolve(app, EnvDev)
	require.NoError(t, err)
	staging, err := Resolve(app, EnvStaging)
	require.NoError(t, err)

	assert.Equal(t, dev.Name, staging.Name)
	assert.Equal(t, dev.Kind, staging.Kind)
	assert.Equal(t, dev.Credentials, staging.Credentials)
	assert.Equal(t, dev.Timeout, staging.Timeout)
	assert.NotEqual(t, dev.BaseURL, staging.BaseURL)
}

func TestResolveDoesNotMutateApp(t *testing.T) {
	app := sauceDemoApp()

	resolved, err := Resolve(app, EnvDev)
	require.NoError(t, err)
	resolved.Credentials["standard"] = Credential{Username: "tampered"}
	resolved.BaseURL = "https://tampered.example.com"

	assert.Equal(t, "standard_user", app.Credentials["standard"].Username)
	assert.Equal(t, "https://www.saucedemo.com", app.BaseURLs[EnvDev])
}

func TestResolveTrimsTrailingSlash(t *testing.T) {
	app := sauceDemoApp()
	app.BaseURLs[EnvDev] = "https://www.saucedemo.com/"

	resolved, err := Resolve(app, EnvDev)
	require.NoError(t, err)
	assert.Equal(t, "https://www.saucedemo.com", resolved.BaseURL)
}

func TestResolvedURLJoin(t *testing.T) {
	resolved, err := Resolve(sauceDemoApp(), EnvDev)
	require.NoError(t, err)

	assert.Equal(t, "https://www.saucedemo.com", resolved.URL(""))
	assert.Equal(t, "https://www.saucedemo.com/inventory.html", resolved.URL("inventory.html"))
	assert.Equal(t, "https://www.saucedemo.com/inventory.html", resolved.URL("/inventory.html"))
}

func TestResolvedCredential(t *testing.T) {
	resolved, err := Resolve(sauceDemoApp(), EnvDev)
	require.NoError(t, err)

	cred, ok := resolved.Credential("standard")
	require.True(t, ok)
	assert.Equal(t, "standard_user", cred.Username)
	assert.Equal(t, "secret_sauce", cred.Secret)

	_, ok = resolved.Credential("admin")
	assert.False(t, ok)
}

func TestResolvedCredentialFromEnv(t *testing.T) {
	t.Setenv("APPCHECK_TEST_SECRET", "from-env")

	app := sauceDemoApp()
	app.Credentials["ci"] = Credential{Username: "ci_user", SecretEnv: "APPCHECK_TEST_SECRET"}

	resolved, err := Resolve(app, EnvDev)
	require.NoError(t, err)

	cred, ok := resolved.Credential("ci")
	require.True(t, ok)
	assert.Equal(t, "from-env", cred.Secret)
}
