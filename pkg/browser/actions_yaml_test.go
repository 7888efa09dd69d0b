package browser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadActionsFromFileParsesSequence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actions.yaml")
	contents := `
- type: click
  selector: "#login"
- type: fill
  selector: "#username"
  value: "admin"
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	actions, err := LoadActionsFromFile(path)
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, "#login", actions[0].Selector)
	assert.Equal(t, "#username", actions[1].Selector)
}

func TestLoadActionsFromFileMissingFile(t *testing.T) {
	_, err := LoadActionsFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadActionsFromFileInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("not: [valid"), 0o644))

	_, err := LoadActionsFromFile(path)
	assert.Error(t, err)
}
