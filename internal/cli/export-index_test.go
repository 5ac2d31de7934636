package cli

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolora/toolora-search/internal/catalog"
	"github.com/toolora/toolora-search/internal/search"
)

func TestNewExportIndexCmd(t *testing.T) {
	cmd := NewExportIndexCmd()

	if cmd == nil {
		t.Fatal("NewExportIndexCmd() returned nil")
	}

	// Verify command properties
	if cmd.Use != "export-index" {
		t.Errorf("Expected Use='export-index', got %q", cmd.Use)
	}

	// Verify flags are registered
	for _, name := range []string{"format", "output", "what"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("Flag %q not registered", name)
		}
	}

	if cmd.Example == "" {
		t.Error("Command missing example usage")
	}
}

func sampleTools() []ToolEntry {
	return []ToolEntry{
		{
			ID:          "pdf-merge",
			Name:        "PDF Merge",
			Category:    "pdf",
			Description: "Combine PDF files",
			Keywords:    []string{"pdf", "merge"},
			URL:         "/tools/pdf-merge",
		},
		{
			ID:       "qr-generator",
			Name:     "QR Generator",
			Category: "utility",
			Keywords: []string{"qr", "code"},
			URL:      "/tools/qr-generator",
		},
	}
}

func TestWriteIndexJSONL(t *testing.T) {
	output := filepath.Join(t.TempDir(), "test-index.jsonl")
	tools := sampleTools()

	err := writeIndex(tools, output, "jsonl")
	if err != nil {
		t.Fatalf("writeIndex failed: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("Failed to read output file: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != len(tools) {
		t.Fatalf("Expected %d lines, got %d", len(tools), len(lines))
	}

	// Verify each line is valid JSON
	for i, line := range lines {
		var entry ToolEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Errorf("Line %d is not valid JSON: %v", i, err)
		}
		if diff := cmp.Diff(tools[i], entry); diff != "" {
			t.Errorf("Line %d mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestWriteIndexJSON(t *testing.T) {
	output := filepath.Join(t.TempDir(), "test-index.json")
	tools := sampleTools()

	err := writeIndex(tools, output, "json")
	if err != nil {
		t.Fatalf("writeIndex failed: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("Failed to read output file: %v", err)
	}

	var entries []ToolEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Errorf("Output is not valid JSON array: %v", err)
	}

	if len(entries) != len(tools) {
		t.Errorf("Expected %d entries, got %d", len(tools), len(entries))
	}
}

func TestWriteIndexWithEmptyTools(t *testing.T) {
	output := filepath.Join(t.TempDir(), "empty.jsonl")

	var empty []ToolEntry
	require.NoError(t, writeIndex(empty, output, "jsonl"))

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestAcquireFileLock(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "test-lock.jsonl")

	lockFile, err := acquireFileLock(testFile)
	if err != nil {
		t.Fatalf("Failed to acquire lock: %v", err)
	}
	defer releaseFileLock(lockFile)

	// Verify lock file was created
	if _, err := os.Stat(testFile + ".lock"); os.IsNotExist(err) {
		t.Error("Lock file was not created")
	}

	// Try to acquire lock again (should fail)
	_, err = acquireFileLock(testFile)
	if err == nil {
		t.Error("Expected lock acquisition to fail, but it succeeded")
	}
}

func TestReleaseFileLock(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "test-lock.jsonl")

	lockFile, err := acquireFileLock(testFile)
	if err != nil {
		t.Fatalf("Failed to acquire lock: %v", err)
	}

	lockPath := lockFile.Name()

	if err := releaseFileLock(lockFile); err != nil {
		t.Errorf("Failed to release lock: %v", err)
	}

	// Verify lock file was removed
	if _, err := os.Stat(lockPath); !os.IsNotExist(err) {
		t.Error("Lock file was not removed after release")
	}

	// Should be able to acquire lock again
	lockFile2, err := acquireFileLock(testFile)
	if err != nil {
		t.Errorf("Failed to re-acquire lock after release: %v", err)
	}
	defer releaseFileLock(lockFile2)

	assert.NoError(t, releaseFileLock(nil))
}

func TestConcurrentFileLocking(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "test-concurrent.jsonl")

	var wg sync.WaitGroup
	successCount := 0
	mu := sync.Mutex{}

	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			lockFile, err := acquireFileLock(testFile)
			if err == nil {
				mu.Lock()
				successCount++
				mu.Unlock()

				// Hold lock briefly
				time.Sleep(10 * time.Millisecond)
				releaseFileLock(lockFile)
			}
		}()
	}

	wg.Wait()

	if successCount == 0 {
		t.Error("No goroutine acquired lock")
	}
}

func TestRunExportIndex_Catalog(t *testing.T) {
	a := newTestApp(t, false)
	output := filepath.Join(t.TempDir(), "catalog.jsonl")

	buf := new(bytes.Buffer)
	require.NoError(t, runExportIndex(buf, a.Catalog(), a.Config().SearchOptions(), exportCatalog, "jsonl", output))
	assert.Contains(t, buf.String(), "✓ Exported 85 catalog entries")

	f, err := os.Open(output)
	require.NoError(t, err)
	defer f.Close()

	var first ToolEntry
	scanner := bufio.NewScanner(f)
	require.True(t, scanner.Scan())
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &first))
	assert.Equal(t, "pdf-merge", first.ID)
	assert.Equal(t, "PDF Toolkit", first.CategoryName)
	assert.NotEmpty(t, first.Keywords)

	_, err = os.Stat(output + ".lock")
	assert.True(t, os.IsNotExist(err), "lock file removed after export")
}

func TestRunExportIndex_Index(t *testing.T) {
	records := []catalog.ToolRecord{
		{ID: "pdf-merge", DisplayName: "PDF Merge", Category: "pdf", Keywords: []string{"combine"}},
		{ID: "pdf-split", DisplayName: "PDF Split", Category: "pdf"},
	}
	cat := catalog.New(records, nil)
	output := filepath.Join(t.TempDir(), "index.json")

	require.NoError(t, runExportIndex(new(bytes.Buffer), cat, search.DefaultOptions(), exportIndex, "json", output))

	data, err := os.ReadFile(output)
	require.NoError(t, err)

	var terms []TermEntry
	require.NoError(t, json.Unmarshal(data, &terms))

	want := []TermEntry{
		{Term: "combine", Tools: []string{"pdf-merge"}},
		{Term: "merge", Tools: []string{"pdf-merge"}},
		{Term: "pdf", Tools: []string{"pdf-merge", "pdf-split"}},
		{Term: "split", Tools: []string{"pdf-split"}},
	}
	if diff := cmp.Diff(want, terms); diff != "" {
		t.Errorf("exported index mismatch (-want +got):\n%s", diff)
	}
}

func TestExportIndexCommand_InvalidFlags(t *testing.T) {
	isolateHome(t)

	_, err := execute(t, "export-index", "--what", "everything")
	assert.Error(t, err)

	_, err = execute(t, "export-index", "--format", "xml")
	assert.Error(t, err)
}

func TestExportIndexCommand_DefaultPath(t *testing.T) {
	home := isolateHome(t)
	path := writeConfig(t, home, `{"storage": {"enabled": false}, "logging": {"level": "error"}}`)

	out, err := execute(t, "--config", path, "export-index")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(home, ".toolora-search-index.jsonl"))

	_, err = os.Stat(filepath.Join(home, ".toolora-search-index.jsonl"))
	assert.NoError(t, err)
}
