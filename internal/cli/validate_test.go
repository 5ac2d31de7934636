package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const brokenCatalog = `
categories:
  - id: pdf
    name: PDF Toolkit
    tools:
      - id: pdf-merge
      - id: pdf-merge
        description: duplicate
tools:
  - id: orphan
    displayName: Orphan
`

func TestRunValidate_Builtin(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, runValidate(buf, "", true))

	out := buf.String()
	assert.Contains(t, out, "✓ Catalog: builtin")
	assert.Contains(t, out, "✓ Records accepted: 85 of 85")
	assert.NotContains(t, out, "✗")
}

func TestRunValidate_SkippedRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(brokenCatalog), 0644))

	buf := new(bytes.Buffer)
	require.NoError(t, runValidate(buf, path, false))

	out := buf.String()
	assert.Contains(t, out, "✓ Records accepted: 1 of 3")
	assert.Contains(t, out, "duplicate id")
	assert.Contains(t, out, "missing category")

	err := runValidate(new(bytes.Buffer), path, true)
	assert.True(t, errors.Is(err, errCatalogInvalid), "got %v", err)
}

func TestRunValidate_MissingFile(t *testing.T) {
	err := runValidate(new(bytes.Buffer), filepath.Join(t.TempDir(), "missing.yaml"), false)
	assert.Error(t, err)
}

func TestValidateCommand_Args(t *testing.T) {
	isolateHome(t)

	_, err := execute(t, "validate", "a.yaml", "b.yaml")
	assert.Error(t, err)

	out, err := execute(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "builtin")
}
