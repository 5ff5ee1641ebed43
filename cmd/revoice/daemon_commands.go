package main

import (
	"fmt"
	"os/exec"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newStartCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the revoiced daemon in the background",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if pid, running := daemonPID(cfg); running {
				return fmt.Errorf("daemon already running (pid %d)", pid)
			}

			binary, err := exec.LookPath("revoiced")
			if err != nil {
				return fmt.Errorf("revoiced binary not found in PATH: %w", err)
			}

			daemonCmd := exec.Command(binary)
			daemonCmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
			if err := daemonCmd.Start(); err != nil {
				return fmt.Errorf("start revoiced: %w", err)
			}
			pid := daemonCmd.Process.Pid
			if err := daemonCmd.Process.Release(); err != nil {
				return fmt.Errorf("detach revoiced: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Started revoiced (pid %d)\n", pid)
			return nil
		},
	}
}

func newStopCommand(ctx *commandContext) *cobra.Command {
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the running revoiced daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			pid, running := daemonPID(cfg)
			if !running {
				fmt.Fprintln(cmd.OutOrStdout(), "Daemon is not running")
				return nil
			}

			if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
				return fmt.Errorf("signal daemon (pid %d): %w", pid, err)
			}

			deadline := time.Now().Add(wait)
			for time.Now().Before(deadline) {
				if _, still := daemonPID(cfg); !still {
					fmt.Fprintf(cmd.OutOrStdout(), "Stopped revoiced (pid %d)\n", pid)
					return nil
				}
				time.Sleep(100 * time.Millisecond)
			}
			return fmt.Errorf("daemon (pid %d) did not exit within %s", pid, wait)
		},
	}

	cmd.Flags().DurationVar(&wait, "wait", 10*time.Second, "How long to wait for the daemon to exit")
	return cmd
}
