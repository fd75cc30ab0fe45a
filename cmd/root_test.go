package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appcheck/internal/config"
)

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "config error",
			err:  &config.ConfigError{Path: "apps.yaml", Message: "missing name"},
			want: ExitCodeConfig,
		},
		{
			name: "wrapped config error",
			err:  fmt.Errorf("loading registry: %w", &config.ConfigError{Path: "apps.yaml", Message: "bad"}),
			want: ExitCodeConfig,
		},
		{
			name: "unknown app",
			err:  &config.UnknownAppError{Names: []string{"nope"}, Known: []string{"reqres"}},
			want: ExitCodeConfig,
		},
		{
			name: "unknown environment",
			err:  &config.UnknownEnvironmentError{App: "reqres", Environment: config.EnvStaging},
			want: ExitCodeConfig,
		},
		{
			name: "generic error",
			err:  errors.New("boom"),
			want: ExitCodeError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, getExitCode(tt.err))
		})
	}
}

func TestVersionCommand(t *testing.T) {
	SetVersion("1.2.3")
	defer SetVersion("")

	var out bytes.Buffer
	cmd := newVersionCmd()
	cmd.SetOut(&out)

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Equal(t, "appcheck version 1.2.3\n", out.String())
}

func TestSetVersion(t *testing.T) {
	SetVersion("9.9.9")
	defer SetVersion("")
	assert.Equal(t, "9.9.9", GetVersion())
}

func TestSelfUpdateRejectsDevVersion(t *testing.T) {
	SetVersion("dev")
	defer SetVersion("")

	err := runSelfUpdate(newSelfUpdateCmd(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "development version")
}

func TestEnvFlagCompletion(t *testing.T) {
	suggestions, directive := completeEnvFlag(testCmd, nil, "")
	assert.Equal(t, []string{"dev", "staging", "production"}, suggestions)
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)
}

func writeValidateFixtures(t *testing.T, scenarioApp string) (string, string) {
	t.Helper()

	configDir := filepath.Join(t.TempDir(), "apps")
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	appDoc := `name: reqres
kind: api
base_urls:
  dev: http://localhost:8080
`
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "reqres.yaml"), []byte(appDoc), 0o644))

	scenarioDir := filepath.Join(t.TempDir(), "scenarios")
	require.NoError(t, os.MkdirAll(scenarioDir, 0o755))
	scenarioDoc := fmt.Sprintf(`name: list-users
app: %s
steps:
  - id: fetch
    action: request
    args:
      path: /api/users
`, scenarioApp)
	require.NoError(t, os.WriteFile(filepath.Join(scenarioDir, "list-users.yaml"), []byte(scenarioDoc), 0o644))

	return configDir, scenarioDir
}

func TestValidateCommand(t *testing.T) {
	configDir, scenarioDir := writeValidateFixtures(t, "reqres")
	validateConfigDir = configDir
	validateScenarioDir = scenarioDir

	err := runValidate(validateCmd, nil)
	assert.NoError(t, err)
}

func TestValidateCommandUnknownApp(t *testing.T) {
	configDir, scenarioDir := writeValidateFixtures(t, "missing-app")
	validateConfigDir = configDir
	validateScenarioDir = scenarioDir

	err := runValidate(validateCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed validation")
}

func TestValidateCommandTemplateTypo(t *testing.T) {
	configDir, scenarioDir := writeValidateFixtures(t, "reqres")
	scenarioDoc := `name: bad-placeholder
app: reqres
steps:
  - id: fetch
    action: request
    args:
      path: /api/users
      headers:
        x-api-key: "{{ extra.api_key }}"
`
	require.NoError(t, os.WriteFile(filepath.Join(scenarioDir, "bad-placeholder.yaml"), []byte(scenarioDoc), 0o644))
	validateConfigDir = configDir
	validateScenarioDir = scenarioDir

	err := runValidate(validateCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed validation")
}

func TestValidateCommandStoreChaining(t *testing.T) {
	configDir, scenarioDir := writeValidateFixtures(t, "reqres")
	scenarioDoc := `name: store-chain
app: reqres
steps:
  - id: login
    action: request
    args:
      path: /api/login
    store: session
  - id: me
    action: request
    args:
      path: /api/me
      headers:
        Authorization: "Bearer {{ session.token }}"
`
	require.NoError(t, os.WriteFile(filepath.Join(scenarioDir, "store-chain.yaml"), []byte(scenarioDoc), 0o644))
	validateConfigDir = configDir
	validateScenarioDir = scenarioDir

	err := runValidate(validateCmd, nil)
	assert.NoError(t, err)
}
