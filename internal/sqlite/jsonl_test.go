package sqlite

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadJSONLMissingFile(t *testing.T) {
	records, err := readJSONL(filepath.Join(t.TempDir(), "absent.jsonl"))
	if err != nil {
		t.Fatalf("readJSONL failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestReadJSONLSkipsBlankAndMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "captures.jsonl")
	content := "{\"a\":1}\n\n not json\n{\"b\":2}\n{\"c\":"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	records, err := readJSONL(path)
	if err != nil {
		t.Fatalf("readJSONL failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if string(records[0]) != `{"a":1}` || string(records[1]) != `{"b":2}` {
		t.Errorf("unexpected records: %s, %s", records[0], records[1])
	}
}

func TestAppendJSONLCreatesAndAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "captures.jsonl")

	for _, v := range []map[string]int{{"n": 1}, {"n": 2}} {
		if err := appendJSONL(path, v); err != nil {
			t.Fatalf("appendJSONL failed: %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading file: %v", err)
	}
	if got, want := string(data), "{\"n\":1}\n{\"n\":2}\n"; got != want {
		t.Errorf("file content = %q, want %q", got, want)
	}
}
