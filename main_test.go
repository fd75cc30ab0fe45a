package main

import (
	"testing"

	"appcheck/cmd"
)

func TestDefaultVersion(t *testing.T) {
	if version != "dev" {
		t.Errorf("expected default version to be 'dev', got %s", version)
	}
}

func TestVersionInjection(t *testing.T) {
	originalVersion := version
	defer func() {
		version = originalVersion
		cmd.SetVersion(originalVersion)
	}()

	for _, v := range []string{"1.0.0", "v2.1.0-beta", "dev"} {
		version = v
		cmd.SetVersion(version)
		if cmd.GetVersion() != v {
			t.Errorf("expected version %s, got %s", v, cmd.GetVersion())
		}
	}
}
