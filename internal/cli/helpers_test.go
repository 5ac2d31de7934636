package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/toolora/toolora-search/internal/app"
	"github.com/toolora/toolora-search/internal/config"
)

// isolateHome points HOME at a temp dir so commands never touch real files.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

// writeConfig writes a JSON config file and returns its path.
func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "toolora.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newTestApp(t *testing.T, withHistory bool) *app.App {
	t.Helper()

	cfg := config.NewConfig()
	cfg.Logging.Level = "error"
	cfg.Storage.Enabled = withHistory
	cfg.Storage.Path = filepath.Join(t.TempDir(), "history.db")

	a, err := app.New(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

// execute runs the full command tree with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := NewRootCmd()
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(new(bytes.Buffer))
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}
