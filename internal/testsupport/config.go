package testsupport

import (
	"path/filepath"
	"testing"

	"revoice/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StagingDir = filepath.Join(base, "staging")
	cfgVal.Paths.LibraryDir = filepath.Join(base, "library")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Providers.ASR.APIKey = "test"
	cfgVal.Providers.Translator.APIKey = "test"
	cfgVal.Providers.TTS.APIKey = "test"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithProviderBaseURL points all three provider endpoints at the given URL,
// typically an httptest server.
func WithProviderBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Providers.ASR.BaseURL = url
		b.cfg.Providers.Translator.BaseURL = url
		b.cfg.Providers.TTS.BaseURL = url
	}
}

// WithNtfyTopic sets the push notification topic on the test config.
func WithNtfyTopic(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = topic
	}
}

// WithHeartbeatIntervals overrides workflow heartbeat timing for tests that
// exercise reclaim behavior.
func WithHeartbeatIntervals(interval, timeout int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Workflow.HeartbeatInterval = interval
		b.cfg.Workflow.HeartbeatTimeout = timeout
	}
}
