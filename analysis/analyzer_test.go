package analysis

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/stoyse/spectrace/classify"
	"github.com/stoyse/spectrace/ghidra"
	"github.com/stoyse/spectrace/model"
)

// fakeInstall creates a Ghidra-shaped install dir whose analyzeHeadless is
// the given shell script, and returns a ready Config.
func fakeInstall(t *testing.T, script string) Config {
	t.Helper()
	installDir := t.TempDir()
	supportDir := filepath.Join(installDir, "support")
	require.NoError(t, os.MkdirAll(supportDir, 0o755))
	toolPath := filepath.Join(supportDir, "analyzeHeadless")
	require.NoError(t, os.WriteFile(toolPath, []byte("#!/bin/sh\n"+script), 0o755))

	return Config{
		InstallDir:     installDir,
		StagingRoot:    filepath.Join(t.TempDir(), "staging"),
		DefaultTimeout: 10 * time.Second,
	}
}

func requireStagingEmpty(t *testing.T, cfg Config) {
	t.Helper()
	entries, err := os.ReadDir(cfg.StagingRoot)
	require.NoError(t, err)
	require.Empty(t, entries, "workspace left behind in staging root")
}

const successScript = `cat > assembly_output.txt <<'EOF'
=== Function: main @ 00401000 ===
00401000: PUSH RBP
EOF
cat > decompiled_output.txt <<'EOF'
int main(void) { return 0; }
EOF
cat > metadata_output.txt <<'EOF'
Program: foo
Language: x86:LE:32:default
Functions Found: 1
EOF
echo "` + ghidra.CompletionMarker + `"
`

func TestNew_MissingInstallIsFatal(t *testing.T) {
	cfg := Config{
		InstallDir:  filepath.Join(t.TempDir(), "nowhere"),
		StagingRoot: filepath.Join(t.TempDir(), "staging"),
	}
	_, err := New(zerolog.Nop(), cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "ghidra installation not found or incomplete")
}

func TestAnalyze_Success(t *testing.T) {
	cfg := fakeInstall(t, successScript)
	analyzer, err := New(zerolog.Nop(), cfg)
	require.NoError(t, err)

	outcome := analyzer.Analyze(context.Background(), model.AnalysisRequest{
		BinaryPath: "/tmp/foo.bin",
		Filename:   "foo.bin",
	})

	require.True(t, outcome.Success)
	require.Nil(t, outcome.Error)
	require.Empty(t, outcome.Diagnostic)
	require.Contains(t, outcome.Assembly, "=== Function: main @ 00401000 ===")
	require.Equal(t, "int main(void) { return 0; }", outcome.Decompiled)
	require.Equal(t, "foo", outcome.Metadata["program"])
	require.Equal(t, "x86:LE:32:default", outcome.Metadata["language"])
	require.Equal(t, "foo.bin", outcome.Metadata["filename"])

	requireStagingEmpty(t, cfg)
}

func TestAnalyze_ToolFailure(t *testing.T) {
	cfg := fakeInstall(t, `echo 'ERROR: Import failed' >&2
exit 1
`)
	analyzer, err := New(zerolog.Nop(), cfg)
	require.NoError(t, err)

	outcome := analyzer.Analyze(context.Background(), model.AnalysisRequest{
		BinaryPath: "/tmp/foo.bin",
		Filename:   "foo.bin",
	})

	require.False(t, outcome.Success)
	require.NotNil(t, outcome.Error)
	require.Equal(t, classify.CategoryGeneric, outcome.Error.Category)
	require.Contains(t, outcome.Error.Message, "ERROR: Import failed")

	requireStagingEmpty(t, cfg)
}

func TestAnalyze_Timeout(t *testing.T) {
	cfg := fakeInstall(t, "sleep 30\n")
	analyzer, err := New(zerolog.Nop(), cfg)
	require.NoError(t, err)

	start := time.Now()
	outcome := analyzer.Analyze(context.Background(), model.AnalysisRequest{
		BinaryPath: "/tmp/foo.bin",
		Filename:   "foo.bin",
		Timeout:    200 * time.Millisecond,
	})

	require.False(t, outcome.Success)
	require.NotNil(t, outcome.Error)
	require.Equal(t, classify.CategoryTimeout, outcome.Error.Category)
	require.Less(t, time.Since(start), 5*time.Second)

	requireStagingEmpty(t, cfg)
}

func TestAnalyze_CosmeticNonzeroExit(t *testing.T) {
	cfg := fakeInstall(t, `echo 'openjdk version "17.0.9" 2023-10-17' >&2
echo 'WARNING: Headless mode enabled' >&2
`+successScript+`exit 1
`)
	analyzer, err := New(zerolog.Nop(), cfg)
	require.NoError(t, err)

	outcome := analyzer.Analyze(context.Background(), model.AnalysisRequest{
		BinaryPath: "/tmp/foo.bin",
		Filename:   "foo.bin",
	})

	require.True(t, outcome.Success)
	require.Equal(t, "foo", outcome.Metadata["program"])

	requireStagingEmpty(t, cfg)
}

func TestAnalyze_DegradedEmptyResult(t *testing.T) {
	// Tool reports success but writes no code artifacts
	cfg := fakeInstall(t, `echo "`+ghidra.CompletionMarker+`"
`)
	analyzer, err := New(zerolog.Nop(), cfg)
	require.NoError(t, err)

	outcome := analyzer.Analyze(context.Background(), model.AnalysisRequest{
		BinaryPath: "/tmp/packed.bin",
		Filename:   "packed.bin",
	})

	require.True(t, outcome.Success, "empty decompilation is a degraded success, not a failure")
	require.Nil(t, outcome.Error)
	require.NotEmpty(t, outcome.Diagnostic)
	require.Equal(t, "packed.bin", outcome.Metadata["filename"])

	requireStagingEmpty(t, cfg)
}

func TestAnalyze_WorkspaceDestroyedOnCancellation(t *testing.T) {
	cfg := fakeInstall(t, "sleep 30\n")
	analyzer, err := New(zerolog.Nop(), cfg)
	require.NoError(t, err)

	// An already-canceled context aborts the run mid-sequence
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome := analyzer.Analyze(ctx, model.AnalysisRequest{
		BinaryPath: "/tmp/foo.bin",
		Filename:   "foo.bin",
	})

	require.False(t, outcome.Success)
	requireStagingEmpty(t, cfg)
}

func TestAnalyze_ConcurrentRequests(t *testing.T) {
	cfg := fakeInstall(t, successScript)
	analyzer, err := New(zerolog.Nop(), cfg)
	require.NoError(t, err)

	const n = 8
	outcomes := make(chan *model.AnalysisOutcome, n)
	for i := 0; i < n; i++ {
		go func() {
			outcomes <- analyzer.Analyze(context.Background(), model.AnalysisRequest{
				BinaryPath: "/tmp/foo.bin",
				Filename:   "foo.bin",
			})
		}()
	}
	for i := 0; i < n; i++ {
		outcome := <-outcomes
		require.True(t, outcome.Success)
	}

	requireStagingEmpty(t, cfg)
}
