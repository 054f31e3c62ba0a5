package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crimson-sun/sawmill/internal/config"
)

func TestAnalyzeCommand(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "build.log")
	logBody := "AssertionError: expected 2 got 3\nTest failed: test_authentication\n"
	if err := os.WriteFile(logPath, []byte(logBody), 0o644); err != nil {
		t.Fatal(err)
	}

	commitsPath := filepath.Join(dir, "commits.yaml")
	commitsBody := "- sha: abc1234\n  author: dev@example.com\n  changed_files:\n    - tests/test_authentication.py\n"
	if err := os.WriteFile(commitsPath, []byte(commitsBody), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"analyze", logPath, "--commits", commitsPath})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	report := out.String()
	for _, want := range []string{
		"`Test:Failure:Assertion`",
		"`abc1234`",
		"`test_authentication`",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}

func TestOpenStore_UnknownBackend(t *testing.T) {
	if _, err := openStore(config.StoreConfig{Backend: "bogus"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestBuildSink(t *testing.T) {
	sink, err := buildSink(config.NotifyConfig{})
	if err != nil {
		t.Fatalf("buildSink(empty): %v", err)
	}
	if sink != nil {
		t.Error("expected nil sink when none configured")
	}

	if _, err := buildSink(config.NotifyConfig{Sinks: "carrier-pigeon"}); err == nil {
		t.Error("expected error for unknown sink name")
	}

	if _, err := buildSink(config.NotifyConfig{Sinks: "webhook"}); err == nil {
		t.Error("expected error for webhook sink without URL")
	}

	sink, err = buildSink(config.NotifyConfig{
		Sinks:    "file",
		FilePath: filepath.Join(t.TempDir(), "notices.ndjson"),
	})
	if err != nil {
		t.Fatalf("buildSink(file): %v", err)
	}
	if sink == nil {
		t.Fatal("expected a sink")
	}
	if err := sink.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
