package config

import (
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeProviders()
	c.normalizeDubbing()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return err
	}
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}
	return nil
}

func (c *Config) normalizeProviders() {
	normalizeProvider(&c.Providers.ASR, "REVOICE_ASR_API_KEY")
	normalizeProvider(&c.Providers.Translator, "REVOICE_TRANSLATOR_API_KEY")
	normalizeProvider(&c.Providers.TTS, "REVOICE_TTS_API_KEY")
}

// Environment keys override file values so secrets can stay out of config files.
func normalizeProvider(p *Provider, envKey string) {
	p.BaseURL = strings.TrimSpace(p.BaseURL)
	p.Model = strings.TrimSpace(p.Model)
	p.APIKey = strings.TrimSpace(p.APIKey)
	if env := strings.TrimSpace(os.Getenv(envKey)); env != "" {
		p.APIKey = env
	}
}

func (c *Config) normalizeDubbing() {
	c.Dubbing.Voice = strings.ToLower(strings.TrimSpace(c.Dubbing.Voice))
	c.Dubbing.ResponseFormat = strings.ToLower(strings.TrimSpace(c.Dubbing.ResponseFormat))
	if c.Dubbing.StreamBufferChunks <= 0 {
		c.Dubbing.StreamBufferChunks = Default().Dubbing.StreamBufferChunks
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}
