package cli

// This file contains the doctor command, which checks the external tool
// installation and Java runtime detection without running an analysis.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/stoyse/spectrace/analysis"
	"github.com/stoyse/spectrace/ghidra"
)

func (a *App) doctor(ctx *cli.Context) error {
	cfg := analysis.ConfigFromEnv()

	a.logger.Info().Str("install_dir", cfg.InstallDir).Msg("Ghidra installation directory")

	toolPath := filepath.Join(cfg.InstallDir, "support", "analyzeHeadless")
	if _, err := os.Stat(toolPath); err != nil {
		a.logger.Error().Str("path", toolPath).Msg("analyzeHeadless not found")
		return fmt.Errorf("ghidra installation not found or incomplete: set GHIDRA_INSTALL_DIR")
	}
	a.logger.Info().Str("path", toolPath).Msg("analyzeHeadless found")

	for _, candidate := range ghidra.JavaHomeCandidates(cfg.JavaHome) {
		if _, err := os.Stat(filepath.Join(candidate, "bin", "java")); err == nil {
			a.logger.Info().Str("candidate", candidate).Msg("Java home candidate present")
		} else {
			a.logger.Debug().Str("candidate", candidate).Msg("Java home candidate absent")
		}
	}

	if home := ghidra.DetectJavaHome(a.logger, cfg.JavaHome); home != "" {
		a.logger.Info().Str("java_home", home).Msg("Java runtime detected")
	} else {
		a.logger.Warn().Msg("Java runtime not detected; analyzer will rely on the inherited environment")
	}

	a.logger.Info().Str("staging_root", cfg.StagingRoot).Msg("Workspace staging root")
	return nil
}
