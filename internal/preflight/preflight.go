package preflight

import (
	"context"

	"revoice/internal/config"
	"revoice/internal/deps"
)

// MinFreeBytes is the staging-disk headroom required before processing starts.
// Preprocessing can briefly hold both the upload and its converted copy.
const MinFreeBytes = 512 * 1024 * 1024

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir))
	if cfg.Paths.LibraryDir != "" {
		results = append(results, CheckDirectoryAccess("Library directory", cfg.Paths.LibraryDir))
	}
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	results = append(results, CheckDiskSpace("Staging disk space", cfg.Paths.StagingDir, MinFreeBytes))

	for _, status := range deps.CheckBinaries(deps.PipelineRequirements()) {
		if status.Optional && !status.Available {
			continue
		}
		result := Result{Name: status.Name, Passed: status.Available, Detail: status.Detail}
		if status.Available {
			result.Detail = status.Command
		}
		results = append(results, result)
	}

	results = append(results, CheckRecognitionProvider(ctx, cfg.Providers.ASR))
	results = append(results, CheckTranslationProvider(ctx, cfg.Providers.Translator))
	results = append(results, CheckSynthesisProvider(ctx, cfg.Providers.TTS))

	return results
}

// AllPassed reports whether every check in the batch passed.
func AllPassed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}
