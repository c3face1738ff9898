package cli

// This file contains the analyze and validate commands, the front door to
// the orchestrated analysis pipeline.

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/stoyse/spectrace/analysis"
	"github.com/stoyse/spectrace/ghidra"
	"github.com/stoyse/spectrace/model"
	"github.com/stoyse/spectrace/validate"
)

func (a *App) analyze(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("expected exactly one binary path argument")
	}

	path, err := filepath.Abs(ctx.Args().First())
	if err != nil {
		return fmt.Errorf("invalid binary path: %w", err)
	}

	// Validation happens here, before the analyzer is ever constructed;
	// the orchestrator assumes its input already passed.
	valid, diagnostic := validate.Binary(path)
	if !valid {
		return fmt.Errorf("invalid input: %s", diagnostic)
	}
	a.logger.Info().Str("binary", path).Msg(diagnostic)

	analyzer, err := analysis.New(a.logger, analysis.ConfigFromEnv())
	if err != nil {
		return err
	}

	req := model.AnalysisRequest{
		BinaryPath:   path,
		Filename:     filepath.Base(path),
		Architecture: ctx.String("arch"),
		Timeout:      time.Duration(ctx.Int("timeout")) * time.Second,
	}

	outcome := analyzer.Analyze(ctx.Context, req)

	if ctx.Bool("json") {
		encoded, err := json.MarshalIndent(outcome, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		fmt.Println(string(encoded))
		if !outcome.Success {
			return fmt.Errorf("analysis failed (%s)", outcome.Error.Category)
		}
		return nil
	}

	if !outcome.Success {
		return fmt.Errorf("%s: %s (suggestion: %s)",
			outcome.Error.Category, outcome.Error.Message, outcome.Error.Suggestion)
	}

	if outcome.Diagnostic != "" {
		a.logger.Warn().Msg(outcome.Diagnostic)
	}

	if outDir := ctx.String("out"); outDir != "" {
		return a.writeResults(outDir, outcome)
	}

	for key, value := range outcome.Metadata {
		a.logger.Info().Str(key, value).Msg("Binary metadata")
	}
	fmt.Println(outcome.Decompiled)
	return nil
}

// writeResults saves the outcome's text artifacts under dir, mirroring the
// file names the analyzer script itself uses.
func (a *App) writeResults(dir string, outcome *model.AnalysisOutcome) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	files := map[string]string{
		ghidra.AssemblyFile:   outcome.Assembly,
		ghidra.DecompiledFile: outcome.Decompiled,
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		a.logger.Info().Str("file", path).Msg("Result written")
	}

	metadata, err := json.MarshalIndent(outcome.Metadata, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	metaPath := filepath.Join(dir, "metadata.json")
	if err := os.WriteFile(metaPath, metadata, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	a.logger.Info().Str("file", metaPath).Msg("Result written")
	return nil
}

func (a *App) validateBinary(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("expected exactly one binary path argument")
	}

	valid, diagnostic := validate.Binary(ctx.Args().First())
	if !valid {
		return fmt.Errorf("invalid: %s", diagnostic)
	}
	a.logger.Info().Msg(diagnostic)
	return nil
}
