package config

import "daycounter/internal/milestone"

const (
	defaultDataDir        = "~/.config/daycounter"
	defaultLogDir         = "~/.local/share/daycounter/logs"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultLogRetention   = 60
	defaultNotifyCommand  = "notify-send"
	defaultNtfyBaseURL    = "https://ntfy.sh"
	defaultRequestTimeout = 10
	defaultPollInterval   = 1
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Milestones: Milestones{
			Every100:   true,
			Every1000:  true,
			FunEnabled: true,
			FunNumbers: milestone.DefaultFunNumbers(),
		},
		Notifications: Notifications{
			Enabled:        true,
			Command:        defaultNotifyCommand,
			NtfyBaseURL:    defaultNtfyBaseURL,
			RequestTimeout: defaultRequestTimeout,
		},
		Daemon: Daemon{
			PollInterval: defaultPollInterval,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetention,
		},
	}
}

// MilestoneRules converts the milestones section into engine rules.
func (c *Config) MilestoneRules() milestone.Rules {
	return milestone.Rules{
		Every100:   c.Milestones.Every100,
		Every1000:  c.Milestones.Every1000,
		FunEnabled: c.Milestones.FunEnabled,
		FunNumbers: append([]int(nil), c.Milestones.FunNumbers...),
	}
}
