package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zekoder/zegraphql/zegraphql/manager"
)

// execute runs the root command in-process and returns its stdout
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	testChdir(t, dir)
	t.Setenv("ZEGRAPHQL_LOG_LEVEL", "error")
	db := filepath.Join(dir, "cli.db")

	out, err := execute(t, "--db", db, "bootstrap")
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if !strings.Contains(out, "3 entities") {
		t.Errorf("unexpected bootstrap output %q", out)
	}

	out, err = execute(t, "--db", db, "--format", "json", "list", "documents", "--where", "status=new")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Errorf("expected no documents, got %q", out)
	}

	_, err = execute(t, "--db", db, "get", "industries", "a0000000-0000-4000-8000-000000000001")
	var cliErr *CLIError
	if !errors.As(err, &cliErr) || !errors.Is(err, manager.ErrNotFound) {
		t.Errorf("expected a not found CLIError, got %v", err)
	}

	_, err = execute(t, "--db", db, "get", "widgets", "x")
	if !errors.As(err, &cliErr) || !strings.Contains(cliErr.Cause, "unknown entity") {
		t.Errorf("expected an unknown entity CLIError, got %v", err)
	}
}
