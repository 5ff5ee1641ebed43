package config

// Default returns the configuration revoice starts from before any file or
// environment overrides are applied.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: "~/revoice/staging",
			LibraryDir: "~/revoice/library",
			LogDir:     "~/revoice/logs",
		},
		Providers: Providers{
			ASR: Provider{
				BaseURL:        "https://api.openai.com/v1",
				Model:          "whisper-1",
				TimeoutSeconds: 120,
			},
			Translator: Provider{
				BaseURL:        "https://api.openai.com/v1",
				Model:          "gpt-4o-mini",
				TimeoutSeconds: 60,
			},
			TTS: Provider{
				BaseURL:        "https://api.openai.com/v1",
				Model:          "gpt-4o-mini-tts",
				TimeoutSeconds: 120,
			},
		},
		Workflow: Workflow{
			QueuePollInterval:   5,
			ErrorRetryInterval:  10,
			HeartbeatInterval:   15,
			HeartbeatTimeout:    120,
			AsyncHandlerWorkers: 2,
			AsyncHandlerQueue:   64,
		},
		Dubbing: Dubbing{
			Voice:              "coral",
			ResponseFormat:     "wav",
			QualityThreshold:   0.7,
			PreserveEmotions:   true,
			StrictTiming:       false,
			StreamBufferChunks: 16,
		},
		Notifications: Notifications{
			RequestTimeout: 10,
			Push:           true,
			InApp:          true,
			Created:        true,
			Completed:      true,
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}
