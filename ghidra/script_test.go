package ghidra

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/stoyse/spectrace/workspace"
)

func TestWriteScript(t *testing.T) {
	m, err := workspace.NewManager(zerolog.Nop(), filepath.Join(t.TempDir(), "staging"))
	require.NoError(t, err)
	ws, err := m.Create("script-test")
	require.NoError(t, err)
	defer m.Destroy(ws)

	path, err := WriteScript(ws)
	require.NoError(t, err)
	require.Equal(t, ws.Path(ScriptFilename), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	script := string(content)

	// Written verbatim, never templated per-request
	require.Equal(t, scriptSource, script)

	require.Contains(t, script, "public class DecompileAll extends GhidraScript")
	require.Contains(t, script, ScriptVersion)
	require.Contains(t, script, CompletionMarker)
	for _, name := range []string{AssemblyFile, DecompiledFile, MetadataFile} {
		require.Contains(t, script, name)
	}

	// Class name must match the file name the analyzer loads
	require.Equal(t, "DecompileAll", strings.TrimSuffix(ScriptFilename, ".java"))
}
