package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateMilestones(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateDaemon(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateMilestones() error {
	for _, n := range c.Milestones.FunNumbers {
		if n <= 0 {
			return fmt.Errorf("milestones.fun_numbers must be positive, got %d", n)
		}
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if !c.Notifications.Enabled {
		return nil
	}
	if strings.TrimSpace(c.Notifications.Command) == "" && c.Notifications.NtfyTopic == "" {
		return errors.New("notifications.command or notifications.ntfy_topic must be set when notifications.enabled is true")
	}
	if c.Notifications.NtfyTopic != "" && strings.TrimSpace(c.Notifications.NtfyBaseURL) == "" {
		return errors.New("notifications.ntfy_base_url must be set when notifications.ntfy_topic is set")
	}
	return ensurePositiveMap(map[string]int{
		"notifications.request_timeout": c.Notifications.RequestTimeout,
	})
}

func (c *Config) validateDaemon() error {
	return ensurePositiveMap(map[string]int{
		"daemon.poll_interval": c.Daemon.PollInterval,
	})
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
