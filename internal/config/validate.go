package config

import (
	"fmt"
	"strings"
)

var validLogFormats = map[string]struct{}{"console": {}, "json": {}}

var validResponseFormats = map[string]struct{}{"wav": {}, "mp3": {}, "opus": {}}

// Validate checks the configuration for values that would break the pipeline
// at runtime. It is called after normalization.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateDubbing(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if _, ok := validLogFormats[c.Logging.Format]; !ok {
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		return fmt.Errorf("paths.staging_dir is required")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return fmt.Errorf("paths.log_dir is required")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	intervals := map[string]int{
		"workflow.queue_poll_interval":  c.Workflow.QueuePollInterval,
		"workflow.error_retry_interval": c.Workflow.ErrorRetryInterval,
		"workflow.heartbeat_interval":   c.Workflow.HeartbeatInterval,
		"workflow.heartbeat_timeout":    c.Workflow.HeartbeatTimeout,
	}
	for name, value := range intervals {
		if value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", name, value)
		}
	}
	if c.Workflow.HeartbeatTimeout <= c.Workflow.HeartbeatInterval {
		return fmt.Errorf("workflow.heartbeat_timeout must exceed workflow.heartbeat_interval")
	}
	if c.Workflow.AsyncHandlerWorkers <= 0 {
		return fmt.Errorf("workflow.async_handler_workers must be positive, got %d", c.Workflow.AsyncHandlerWorkers)
	}
	if c.Workflow.AsyncHandlerQueue <= 0 {
		return fmt.Errorf("workflow.async_handler_queue must be positive, got %d", c.Workflow.AsyncHandlerQueue)
	}
	return nil
}

func (c *Config) validateDubbing() error {
	if c.Dubbing.QualityThreshold < 0 || c.Dubbing.QualityThreshold > 1 {
		return fmt.Errorf("dubbing.quality_threshold must be within [0,1], got %v", c.Dubbing.QualityThreshold)
	}
	if c.Dubbing.ResponseFormat != "" {
		if _, ok := validResponseFormats[c.Dubbing.ResponseFormat]; !ok {
			return fmt.Errorf("dubbing.response_format must be wav, mp3, or opus, got %q", c.Dubbing.ResponseFormat)
		}
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.NtfyTopic != "" && c.Notifications.RequestTimeout <= 0 {
		return fmt.Errorf("notifications.request_timeout must be positive when ntfy is enabled")
	}
	return nil
}
