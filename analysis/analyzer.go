// Package analysis orchestrates a full binary analysis: workspace creation,
// script generation, the bounded analyzer run, result parsing and failure
// classification, with the workspace guaranteed gone before it returns.
package analysis

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stoyse/spectrace/artifact"
	"github.com/stoyse/spectrace/classify"
	"github.com/stoyse/spectrace/ghidra"
	"github.com/stoyse/spectrace/model"
	"github.com/stoyse/spectrace/workspace"
)

// degradedNote is attached to successful runs that produced no code
// artifacts. An empty decompilation is meaningful signal, not a failure.
const degradedNote = "Analysis completed but produced no code artifacts; " +
	"the binary may be packed, obfuscated or stripped"

// Analyzer runs analyses end to end. It is safe for concurrent use: every
// request operates on its own workspace and the staging root is the only
// shared state.
type Analyzer struct {
	logger     zerolog.Logger
	cfg        Config
	workspaces *workspace.Manager
	runner     *ghidra.Runner
}

// New verifies the Ghidra installation and prepares the staging root.
// A missing or incomplete installation is a configuration fault and fails
// construction; it is never surfaced as a per-request error.
func New(logger zerolog.Logger, cfg Config) (*Analyzer, error) {
	toolPath := filepath.Join(cfg.InstallDir, "support", "analyzeHeadless")
	if _, err := os.Stat(toolPath); err != nil {
		return nil, fmt.Errorf("ghidra installation not found or incomplete: %s: %w", toolPath, err)
	}

	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = ghidra.DefaultTimeout
	}

	workspaces, err := workspace.NewManager(logger, cfg.StagingRoot)
	if err != nil {
		return nil, err
	}

	return &Analyzer{
		logger:     logger,
		cfg:        cfg,
		workspaces: workspaces,
		runner:     ghidra.NewRunner(logger, toolPath, cfg.JavaHome),
	}, nil
}

// Analyze runs one analysis request to completion. It always returns an
// outcome: every failure is classified, nothing escapes unstructured, and
// the request's workspace is destroyed on every exit path, including a
// panic in any step. The caller is expected to have validated the binary
// already. No retries are attempted.
func (a *Analyzer) Analyze(ctx context.Context, req model.AnalysisRequest) *model.AnalysisOutcome {
	correlationID := req.CorrelationID
	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	logger := a.logger.With().
		Str("correlation_id", correlationID).
		Str("binary", req.Filename).
		Logger()

	ws, err := a.workspaces.Create(correlationID)
	if err != nil {
		return a.failure(logger, err)
	}
	defer a.workspaces.Destroy(ws)

	if _, err := ghidra.WriteScript(ws); err != nil {
		return a.failure(logger, err)
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = a.cfg.DefaultTimeout
	}

	result, err := a.runner.Run(ctx, ws, req.BinaryPath, req.Architecture, timeout)
	if err != nil {
		return a.failure(logger, err)
	}

	if !ghidra.Succeeded(result) {
		err := fmt.Errorf("ghidra analysis failed with exit code %d: %s",
			result.ExitCode, result.FilteredStderr)
		return a.failure(logger, err)
	}

	parsed, err := artifact.Parse(logger, ws.Dir())
	if err != nil {
		return a.failure(logger, err)
	}

	parsed.Metadata["filename"] = req.Filename

	outcome := &model.AnalysisOutcome{
		Success:    true,
		Assembly:   parsed.Assembly,
		Decompiled: parsed.Decompiled,
		Metadata:   parsed.Metadata,
	}
	if parsed.Empty {
		outcome.Diagnostic = degradedNote
	}

	logger.Info().
		Bool("degraded", parsed.Empty).
		Dur("duration", result.Duration).
		Msg("Analysis completed")

	return outcome
}

// failure converts err into a classified negative outcome.
func (a *Analyzer) failure(logger zerolog.Logger, err error) *model.AnalysisOutcome {
	classified := classify.Error(err)
	logger.Error().
		Err(err).
		Str("category", classified.Category).
		Msg("Analysis failed")
	return &model.AnalysisOutcome{
		Success:  false,
		Metadata: map[string]string{},
		Error:    &classified,
	}
}
