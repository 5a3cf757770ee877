package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"daycounter/internal/testsupport"
)

func TestCLIConfigValidate(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	base := testsupport.BaseDir(cfg)
	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)
	socket := filepath.Join(base, "unused.sock")

	out, _, err := runCLI(t, []string{"config", "validate"}, socket, configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Config path: "+configPath)
	requireContains(t, out, "Configuration valid")
	if strings.Contains(out, "defaults were used") {
		t.Fatalf("expected config file to be read, got %q", out)
	}
}

func TestCLIConfigInit(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "nested", "config.toml")
	socket := filepath.Join(base, "unused.sock")

	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, socket, target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration to "+target)
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected sample config on disk: %v", err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, socket, target); err == nil {
		t.Fatal("expected init to refuse overwriting an existing file")
	} else if !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, socket, target); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}
