package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"revoice/internal/config"
)

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("Staging directory", dir)
	if !result.Passed {
		t.Fatalf("existing dir failed: %+v", result)
	}

	result = CheckDirectoryAccess("Staging directory", filepath.Join(dir, "missing"))
	if result.Passed {
		t.Fatal("missing dir passed")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("detail = %q", result.Detail)
	}

	file := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result = CheckDirectoryAccess("Staging directory", file)
	if result.Passed {
		t.Fatal("regular file passed directory check")
	}
}

func TestCheckDiskSpace(t *testing.T) {
	dir := t.TempDir()
	result := CheckDiskSpace("Staging disk space", dir, 1)
	if !result.Passed {
		t.Fatalf("tiny requirement failed: %+v", result)
	}

	const exabyte = uint64(1) << 60
	result = CheckDiskSpace("Staging disk space", dir, exabyte)
	if result.Passed {
		t.Fatal("exabyte requirement passed")
	}

	result = CheckDiskSpace("Staging disk space", filepath.Join(dir, "missing"), 1)
	if result.Passed {
		t.Fatal("statfs on missing path passed")
	}
}

func TestCheckProvidersReachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	provider := config.Provider{APIKey: "k", BaseURL: server.URL, Model: "m"}
	for _, check := range []func(context.Context, config.Provider) Result{
		CheckRecognitionProvider,
		CheckTranslationProvider,
		CheckSynthesisProvider,
	} {
		result := check(context.Background(), provider)
		if !result.Passed {
			t.Fatalf("%s: %+v", result.Name, result)
		}
	}
}

func TestCheckProviderFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	result := CheckRecognitionProvider(context.Background(), config.Provider{APIKey: "k", BaseURL: server.URL})
	if result.Passed {
		t.Fatal("forbidden endpoint passed")
	}
	if result.Detail == "" {
		t.Fatal("failure detail empty")
	}
}

func TestCheckProviderMissingKey(t *testing.T) {
	result := CheckTranslationProvider(context.Background(), config.Provider{BaseURL: "http://localhost:1"})
	if result.Passed {
		t.Fatal("missing key passed")
	}
	if result.Detail != "API key missing" {
		t.Fatalf("detail = %q", result.Detail)
	}
}

func TestAllPassed(t *testing.T) {
	if !AllPassed([]Result{{Passed: true}, {Passed: true}}) {
		t.Fatal("all-passing batch reported failure")
	}
	if AllPassed([]Result{{Passed: true}, {Passed: false}}) {
		t.Fatal("failing batch reported success")
	}
	if !AllPassed(nil) {
		t.Fatal("empty batch should pass")
	}
}

func TestRunAllCoversChecks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Paths.StagingDir = t.TempDir()
	cfg.Paths.LibraryDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()
	for _, provider := range []*config.Provider{&cfg.Providers.ASR, &cfg.Providers.Translator, &cfg.Providers.TTS} {
		provider.APIKey = "k"
		provider.BaseURL = server.URL
	}

	results := RunAll(context.Background(), &cfg)
	names := make(map[string]bool, len(results))
	for _, result := range results {
		names[result.Name] = true
	}
	for _, want := range []string{
		"Staging directory", "Library directory", "Log directory",
		"Staging disk space", "Recognition provider", "Translation provider", "Synthesis provider",
	} {
		if !names[want] {
			t.Fatalf("missing check %q in %v", want, names)
		}
	}

	if RunAll(context.Background(), nil) != nil {
		t.Fatal("nil config should produce no results")
	}
}
