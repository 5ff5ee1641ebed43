package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"revoice/internal/testsupport"
)

func writeCLIConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	content := fmt.Sprintf(`[paths]
staging_dir = %q
library_dir = %q
log_dir = %q
`,
		filepath.Join(base, "staging"),
		filepath.Join(base, "library"),
		filepath.Join(base, "logs"),
	)
	path := filepath.Join(base, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCLI(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

func requireContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("output missing %q:\n%s", want, output)
	}
}

func TestQueueStatusEmpty(t *testing.T) {
	configPath := writeCLIConfig(t)

	out, err := runCLI(t, configPath, "queue", "status")
	if err != nil {
		t.Fatalf("queue status: %v", err)
	}
	requireContains(t, out, "Queue is empty")
}

func TestAddAndListQueue(t *testing.T) {
	configPath := writeCLIConfig(t)
	audio := testsupport.AudioFixture(t, "interview.mp3")

	out, err := runCLI(t, configPath, "add", audio, "--target-language", "fr")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	requireContains(t, out, "Queued interview.mp3 as item 1")

	out, err = runCLI(t, configPath, "queue", "list")
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	requireContains(t, out, "interview")
	requireContains(t, out, "pending")

	out, err = runCLI(t, configPath, "queue", "status")
	if err != nil {
		t.Fatalf("queue status: %v", err)
	}
	requireContains(t, out, "pending")
	requireContains(t, out, "total")
}

func TestAddRejectsUnsupportedFile(t *testing.T) {
	configPath := writeCLIConfig(t)
	doc := filepath.Join(t.TempDir(), "notes.pdf")
	if err := os.WriteFile(doc, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := runCLI(t, configPath, "add", doc); err == nil {
		t.Fatal("unsupported file accepted")
	}
}

func TestShowCommand(t *testing.T) {
	configPath := writeCLIConfig(t)
	audio := testsupport.AudioFixture(t, "podcast.mp3")

	if _, err := runCLI(t, configPath, "add", audio, "--title", "Weekly Podcast"); err != nil {
		t.Fatalf("add: %v", err)
	}

	out, err := runCLI(t, configPath, "show", "1")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, out, "Weekly Podcast")
	requireContains(t, out, "pending")

	if _, err := runCLI(t, configPath, "show", "42"); err == nil {
		t.Fatal("missing item accepted")
	}
}

func TestQueueRemoveAndClear(t *testing.T) {
	configPath := writeCLIConfig(t)
	audio := testsupport.AudioFixture(t, "memo.mp3")

	if _, err := runCLI(t, configPath, "add", audio); err != nil {
		t.Fatalf("add: %v", err)
	}

	out, err := runCLI(t, configPath, "queue", "remove", "1")
	if err != nil {
		t.Fatalf("queue remove: %v", err)
	}
	requireContains(t, out, "Removed item 1")

	if _, err := runCLI(t, configPath, "queue", "remove", "1"); err == nil {
		t.Fatal("removing a missing item succeeded")
	}

	if _, err := runCLI(t, configPath, "add", audio); err != nil {
		t.Fatalf("re-add: %v", err)
	}
	out, err = runCLI(t, configPath, "queue", "clear")
	if err != nil {
		t.Fatalf("queue clear: %v", err)
	}
	requireContains(t, out, "Removed 1 item(s)")
}

func TestQueueRetryRejectsBadID(t *testing.T) {
	configPath := writeCLIConfig(t)

	if _, err := runCLI(t, configPath, "queue", "retry", "not-a-number"); err == nil {
		t.Fatal("invalid ID accepted")
	}
}

func TestQueueHealth(t *testing.T) {
	configPath := writeCLIConfig(t)

	out, err := runCLI(t, configPath, "queue", "health")
	if err != nil {
		t.Fatalf("queue health: %v", err)
	}
	requireContains(t, out, "Queue Database")
	requireContains(t, out, "Integrity check")
}

func TestStatusSkipProviders(t *testing.T) {
	configPath := writeCLIConfig(t)

	out, err := runCLI(t, configPath, "status", "--skip-providers")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Daemon")
	requireContains(t, out, "not running")
	requireContains(t, out, "Staging directory")
}

func TestTestNotifyWithoutTopic(t *testing.T) {
	configPath := writeCLIConfig(t)

	out, err := runCLI(t, configPath, "test-notify")
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "ntfy topic not configured")
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	configPath := writeCLIConfig(t)

	if _, err := runCLI(t, configPath, "export", "no-such-id", "--format", "docx"); err == nil {
		t.Fatal("unknown format accepted")
	}
}
