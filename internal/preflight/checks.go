package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"revoice/internal/config"
	"revoice/internal/providers"
	"revoice/internal/providers/asr"
	"revoice/internal/providers/translator"
	"revoice/internal/providers/tts"
)

// providerCheckTimeout bounds a single reachability probe. A single attempt,
// no retries.
const providerCheckTimeout = 30 * time.Second

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDiskSpace verifies the filesystem behind path has at least minBytes
// free for non-root users.
func CheckDiskSpace(name, path string, minBytes uint64) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	free := stat.Bavail * uint64(stat.Bsize)
	detail := fmt.Sprintf("%s (%.1f GiB free)", path, float64(free)/(1024*1024*1024))
	if free < minBytes {
		return Result{Name: name, Detail: fmt.Sprintf("%s, need %.1f GiB", detail, float64(minBytes)/(1024*1024*1024))}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckRecognitionProvider verifies the ASR endpoint is reachable and the key
// is usable.
func CheckRecognitionProvider(ctx context.Context, cfg config.Provider) Result {
	const name = "Recognition provider"
	if strings.TrimSpace(cfg.APIKey) == "" {
		return Result{Name: name, Detail: "API key missing"}
	}
	checkCtx, cancel := context.WithTimeout(ctx, providerCheckTimeout)
	defer cancel()

	client := asr.NewClient(providerConfig(cfg), providers.WithRetryMaxAttempts(1))
	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeProviderError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// CheckTranslationProvider verifies the translation endpoint is reachable.
func CheckTranslationProvider(ctx context.Context, cfg config.Provider) Result {
	const name = "Translation provider"
	if strings.TrimSpace(cfg.APIKey) == "" {
		return Result{Name: name, Detail: "API key missing"}
	}
	checkCtx, cancel := context.WithTimeout(ctx, providerCheckTimeout)
	defer cancel()

	client := translator.NewClient(providerConfig(cfg), providers.WithRetryMaxAttempts(1))
	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeProviderError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// CheckSynthesisProvider verifies the TTS endpoint is reachable.
func CheckSynthesisProvider(ctx context.Context, cfg config.Provider) Result {
	const name = "Synthesis provider"
	if strings.TrimSpace(cfg.APIKey) == "" {
		return Result{Name: name, Detail: "API key missing"}
	}
	checkCtx, cancel := context.WithTimeout(ctx, providerCheckTimeout)
	defer cancel()

	client := tts.NewClient(providerConfig(cfg), providers.WithRetryMaxAttempts(1))
	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeProviderError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

func providerConfig(cfg config.Provider) providers.Config {
	return providers.Config{
		APIKey:         cfg.APIKey,
		BaseURL:        cfg.BaseURL,
		Model:          cfg.Model,
		TimeoutSeconds: cfg.TimeoutSeconds,
	}
}

// summarizeProviderError produces a human-readable summary for provider
// health check failures.
func summarizeProviderError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (API unreachable)"
	}
	return err.Error()
}
