package usecase

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadKnowledge(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conocimiento.txt")
	require.NoError(t, os.WriteFile(path, []byte("\nTraderMexico ofrece mentorías.\n"), 0o600))

	text, ok := LoadKnowledge(path)
	require.True(t, ok)
	require.Equal(t, "TraderMexico ofrece mentorías.", text)
}

func TestLoadKnowledge_FallsBackToPlaceholder(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(empty, []byte("  \n"), 0o600))

	for _, path := range []string{"", filepath.Join(dir, "missing.txt"), empty, dir} {
		text, ok := LoadKnowledge(path)
		require.False(t, ok, "path=%q", path)
		require.Equal(t, KnowledgePlaceholder, text)
	}
}
