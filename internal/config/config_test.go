package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"daycounter/internal/config"
)

func TestLoadDefaultsExpandPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".config", "daycounter")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	wantLogs := filepath.Join(tempHome, ".local", "share", "daycounter", "logs")
	if cfg.Paths.LogDir != wantLogs {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogs)
	}
	if cfg.DataFile() != filepath.Join(wantData, "data.json") {
		t.Fatalf("unexpected data file: %q", cfg.DataFile())
	}
	if cfg.HistoryFile() != filepath.Join(wantData, "history.db") {
		t.Fatalf("unexpected history file: %q", cfg.HistoryFile())
	}
	if !cfg.Milestones.Every100 || !cfg.Milestones.Every1000 || !cfg.Milestones.FunEnabled {
		t.Fatal("expected all milestone rules enabled by default")
	}
	if len(cfg.Milestones.FunNumbers) == 0 {
		t.Fatal("expected default fun numbers")
	}
	if cfg.Notifications.Command != "notify-send" {
		t.Fatalf("unexpected notify command: %q", cfg.Notifications.Command)
	}
	if cfg.Daemon.PollInterval != 1 {
		t.Fatalf("unexpected poll interval: %d", cfg.Daemon.PollInterval)
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history enabled by default")
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "daycounter.toml")

	type payload struct {
		Milestones struct {
			Every1000  bool  `toml:"every_1000"`
			FunNumbers []int `toml:"fun_numbers"`
		} `toml:"milestones"`
		Notifications struct {
			Command string `toml:"command"`
		} `toml:"notifications"`
		Daemon struct {
			PollInterval int `toml:"poll_interval"`
		} `toml:"daemon"`
	}
	custom := payload{}
	custom.Milestones.Every1000 = false
	custom.Milestones.FunNumbers = []int{42, 7, 42, 1000}
	custom.Notifications.Command = "dunstify"
	custom.Daemon.PollInterval = 30
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Milestones.Every1000 {
		t.Fatal("expected every_1000 override to false")
	}
	want := []int{7, 42, 1000}
	if len(cfg.Milestones.FunNumbers) != len(want) {
		t.Fatalf("expected fun numbers sorted and deduped, got %v", cfg.Milestones.FunNumbers)
	}
	for i, n := range want {
		if cfg.Milestones.FunNumbers[i] != n {
			t.Fatalf("expected fun numbers %v, got %v", want, cfg.Milestones.FunNumbers)
		}
	}
	if cfg.Notifications.Command != "dunstify" {
		t.Fatalf("expected command override, got %q", cfg.Notifications.Command)
	}
	if cfg.Daemon.PollInterval != 30 {
		t.Fatalf("expected poll interval 30, got %d", cfg.Daemon.PollInterval)
	}
}

func TestEnvVarFillsNtfyTopic(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("NTFY_TOPIC", "daycounter-env")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Notifications.NtfyTopic != "daycounter-env" {
		t.Fatalf("expected ntfy topic from env, got %q", cfg.Notifications.NtfyTopic)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "notify-send") {
		t.Fatalf("sample config missing notify command: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if !strings.Contains(cfg.Paths.DataDir, "daycounter") {
		t.Fatalf("expected data dir to contain daycounter, got %q", cfg.Paths.DataDir)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Daemon.PollInterval = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive poll interval")
	}

	cfg = config.Default()
	cfg.Milestones.FunNumbers = []int{100, -5}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative fun number")
	}

	cfg = config.Default()
	cfg.Notifications.Command = ""
	cfg.Notifications.NtfyTopic = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when notifications enabled without a sink")
	}

	cfg = config.Default()
	cfg.Notifications.Enabled = false
	cfg.Notifications.Command = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled notifications should skip sink validation: %v", err)
	}
}

func TestMilestoneRulesCopiesFunNumbers(t *testing.T) {
	cfg := config.Default()
	rules := cfg.MilestoneRules()
	if len(rules.FunNumbers) != len(cfg.Milestones.FunNumbers) {
		t.Fatalf("expected rules to carry %d fun numbers, got %d", len(cfg.Milestones.FunNumbers), len(rules.FunNumbers))
	}
	rules.FunNumbers[0] = -1
	if cfg.Milestones.FunNumbers[0] == -1 {
		t.Fatal("expected MilestoneRules to copy the slice")
	}
}
