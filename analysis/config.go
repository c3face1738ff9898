package analysis

// config.go resolves the environment-level configuration the analyzer
// consumes. Configuration problems are startup-time faults, not per-request
// errors.

import (
	"os"
	"time"

	"github.com/stoyse/spectrace/ghidra"
)

const (
	// DefaultInstallDir is used when GHIDRA_INSTALL_DIR is unset.
	DefaultInstallDir = "/opt/ghidra"
	// DefaultStagingRoot is the ancestor directory for all workspaces.
	DefaultStagingRoot = "/tmp/ghidra_projects"
)

// Config is the analyzer's environment-level configuration.
type Config struct {
	// Ghidra installation directory; must contain support/analyzeHeadless
	InstallDir string
	// Optional explicit Java home; auto-detected when empty
	JavaHome string
	// Ancestor directory for per-request workspaces; created at startup,
	// never removed
	StagingRoot string
	// Per-request timeout applied when a request carries no override
	DefaultTimeout time.Duration
}

// ConfigFromEnv reads configuration from the process environment, filling
// in defaults for anything unset.
func ConfigFromEnv() Config {
	cfg := Config{
		InstallDir:     os.Getenv("GHIDRA_INSTALL_DIR"),
		JavaHome:       os.Getenv("JAVA_HOME"),
		StagingRoot:    os.Getenv("SPECTRACE_STAGING_ROOT"),
		DefaultTimeout: ghidra.DefaultTimeout,
	}
	if cfg.InstallDir == "" {
		cfg.InstallDir = DefaultInstallDir
	}
	if cfg.StagingRoot == "" {
		cfg.StagingRoot = DefaultStagingRoot
	}
	return cfg
}
