// Package integration provides CLI integration tests for sheetlog.
package integration

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

var (
	// sheetlogBin is the path to the built sheetlog binary.
	sheetlogBin string
	// buildErr captures any build error.
	buildErr error
)

// BuildError wraps a build error with output.
type BuildError struct {
	Err    error
	Output string
}

func (e *BuildError) Error() string {
	return e.Err.Error() + ": " + e.Output
}

// FindProjectRoot finds the project root by walking up and looking for go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// SetSheetlogBin sets the path to the sheetlog binary (called from TestMain).
func SetSheetlogBin(path string) {
	sheetlogBin = path
}

// SetBuildErr sets the build error (called from TestMain).
func SetBuildErr(err error) {
	buildErr = err
}

// TestEnv provides an isolated test environment with its own config, data
// and watched directories.
type TestEnv struct {
	t       *testing.T
	TempDir string
	Config  string
	DataDir string
	Books   string
}

// NewTestEnv creates a new isolated test environment. configYAML is
// written to config.yaml when non-empty.
func NewTestEnv(t *testing.T, configYAML string) *TestEnv {
	t.Helper()

	if buildErr != nil {
		t.Fatalf("failed to build sheetlog: %v", buildErr)
	}
	if sheetlogBin == "" {
		t.Fatal("sheetlog binary not built (sheetlogBin is empty)")
	}

	tempDir := t.TempDir()
	e := &TestEnv{
		t:       t,
		TempDir: tempDir,
		Config:  filepath.Join(tempDir, "config"),
		DataDir: filepath.Join(tempDir, "data"),
		Books:   filepath.Join(tempDir, "books"),
	}
	for _, dir := range []string{e.Config, e.Books} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("failed to create %s: %v", dir, err)
		}
	}
	if configYAML != "" {
		if err := os.WriteFile(filepath.Join(e.Config, "config.yaml"), []byte(configYAML), 0o644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
	}
	return e
}

// CmdResult holds the result of a sheetlog command execution.
type CmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

func (e *TestEnv) command(args ...string) *exec.Cmd {
	allArgs := append([]string{"--config-dir", e.Config, "--data-dir", e.DataDir}, args...)
	cmd := exec.Command(sheetlogBin, allArgs...)
	cmd.Dir = e.TempDir
	cmd.Env = append(os.Environ(), "SHEETLOG_CONFIG_DIR=", "SHEETLOG_DATA_DIR=")
	return cmd
}

// RunSheetlog executes the sheetlog CLI with the given arguments.
func (e *TestEnv) RunSheetlog(args ...string) CmdResult {
	e.t.Helper()

	cmd := e.command(args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			e.t.Fatalf("failed to run sheetlog: %v", err)
		}
	}

	return CmdResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}
}

// MustRunSheetlog executes the sheetlog CLI and fails the test if it returns non-zero.
func (e *TestEnv) MustRunSheetlog(args ...string) CmdResult {
	e.t.Helper()
	result := e.RunSheetlog(args...)
	if result.ExitCode != 0 {
		e.t.Fatalf("sheetlog %v failed with exit code %d:\nstdout: %s\nstderr: %s",
			args, result.ExitCode, result.Stdout, result.Stderr)
	}
	return result
}

// syncBuffer is a bytes.Buffer safe for a writing process and a polling test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Watch is a running "sheetlog watch" process.
type Watch struct {
	cmd     *exec.Cmd
	Stderr  *syncBuffer
	done    chan error
	stopped bool
}

// StartWatch starts "sheetlog watch" on the environment's book directory
// and waits until it reports that it is watching.
func (e *TestEnv) StartWatch() *Watch {
	e.t.Helper()

	cmd := e.command("watch", e.Books)
	w := &Watch{cmd: cmd, Stderr: &syncBuffer{}, done: make(chan error, 1)}
	cmd.Stdout = w.Stderr
	cmd.Stderr = w.Stderr
	if err := cmd.Start(); err != nil {
		e.t.Fatalf("failed to start watch: %v", err)
	}
	go func() { w.done <- cmd.Wait() }()
	e.t.Cleanup(func() {
		if !w.stopped {
			cmd.Process.Kill()
			<-w.done
		}
	})

	Eventually(e.t, 10*time.Second, func() bool {
		return bytes.Contains([]byte(w.Stderr.String()), []byte("msg=watching"))
	}, "watch did not start:\n%s", w.Stderr)
	return w
}

// Stop interrupts the watch process and returns its exit code.
func (w *Watch) Stop(t *testing.T) int {
	t.Helper()
	w.stopped = true
	if err := w.cmd.Process.Signal(os.Interrupt); err != nil {
		t.Fatalf("failed to interrupt watch: %v", err)
	}
	select {
	case err := <-w.done:
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode()
		}
		if err != nil {
			t.Fatalf("watch failed: %v", err)
		}
		return 0
	case <-time.After(10 * time.Second):
		t.Fatalf("watch did not stop:\n%s", w.Stderr)
		return -1
	}
}

// Eventually polls cond until it holds or timeout passes.
func Eventually(t *testing.T, timeout time.Duration, cond func() bool, format string, args ...any) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf(format, args...)
}

// WriteWorkbook saves a workbook with one sheet per entry of sheets. The
// order of sheet names fixes the sheet order.
func WriteWorkbook(t *testing.T, path string, names []string, sheets map[string][][]any) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, name := range names {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			t.Fatalf("new sheet: %v", err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				t.Fatalf("set row %s: %v", cell, err)
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
}

// ListDir returns the names of the entries of dir, or nil if it is missing.
func ListDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("read dir %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

// ParseJSON parses JSON output into the target type.
func ParseJSON[T any](t *testing.T, jsonStr string) T {
	t.Helper()
	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		t.Fatalf("failed to parse JSON %q: %v", jsonStr, err)
	}
	return result
}

// ReadJSONFile reads and parses a JSON file.
func ReadJSONFile[T any](t *testing.T, path string) T {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file %s: %v", path, err)
	}
	return ParseJSON[T](t, string(data))
}

// ReadJSONLFile reads a JSONL file (one JSON object per line) and returns a slice.
func ReadJSONLFile[T any](t *testing.T, path string) []T {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open JSONL file %s: %v", path, err)
	}
	defer f.Close()

	var results []T
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var record T
		if err := json.Unmarshal(line, &record); err != nil {
			t.Fatalf("failed to parse JSONL line in %s: %v", path, err)
		}
		results = append(results, record)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("failed to scan JSONL file %s: %v", path, err)
	}
	return results
}

// fastConfig is a config.yaml with short pipeline delays.
func fastConfig(extra string) string {
	return fmt.Sprintf("debounce: 0s\nsettle_delay: 300ms\nlog_level: debug\n%s", extra)
}
