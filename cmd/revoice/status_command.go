package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"revoice/internal/config"
	"revoice/internal/preflight"
	"revoice/internal/queue"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var skipProviders bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon, environment, and queue status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)

				for _, line := range renderSectionHeader("Daemon", colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out, renderStatusLine("Config path", statusInfo, ctx.configPath, colorize))
				if pid, running := daemonPID(cfg); running {
					fmt.Fprintln(out, renderStatusLine("Daemon", statusOK, fmt.Sprintf("running (pid %d)", pid), colorize))
				} else {
					fmt.Fprintln(out, renderStatusLine("Daemon", statusWarn, "not running", colorize))
				}

				fmt.Fprintln(out)
				for _, line := range renderSectionHeader("Environment", colorize) {
					fmt.Fprintln(out, line)
				}
				results := environmentChecks(cmd, cfg, skipProviders)
				for _, result := range results {
					kind := statusOK
					if !result.Passed {
						kind = statusError
					}
					fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
				}

				fmt.Fprintln(out)
				for _, line := range renderSectionHeader("Queue", colorize) {
					fmt.Fprintln(out, line)
				}
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				rows := buildQueueStatusRows(stats)
				if len(rows) == 0 {
					fmt.Fprintln(out, statusIndent+"Queue is empty")
				} else {
					fmt.Fprintln(out, renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
				}

				if !preflight.AllPassed(results) {
					return fmt.Errorf("one or more environment checks failed")
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&skipProviders, "skip-providers", false, "Skip provider reachability probes")
	return cmd
}

// environmentChecks runs the same battery the daemon runs at startup; the
// provider probes hit the network, so they can be skipped for a quick look.
func environmentChecks(cmd *cobra.Command, cfg *config.Config, skipProviders bool) []preflight.Result {
	if !skipProviders {
		return preflight.RunAll(cmd.Context(), cfg)
	}
	results := []preflight.Result{
		preflight.CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir),
		preflight.CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		preflight.CheckDiskSpace("Staging disk space", cfg.Paths.StagingDir, preflight.MinFreeBytes),
	}
	if strings.TrimSpace(cfg.Paths.LibraryDir) != "" {
		results = append(results, preflight.CheckDirectoryAccess("Library directory", cfg.Paths.LibraryDir))
	}
	return results
}

func daemonPID(cfg *config.Config) (int, bool) {
	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "revoiced.pid"))
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	if err := syscall.Kill(pid, 0); err != nil {
		return 0, false
	}
	return pid, true
}
