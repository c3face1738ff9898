// Package artifact reads the text files the extraction script leaves in a
// workspace and turns them into structured results.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/stoyse/spectrace/ghidra"
	"github.com/stoyse/spectrace/model"
)

// Parse reads the assembly, decompiled-code and metadata files from dir.
// A missing file is logged and treated as empty; the pass/fail decision for
// an all-empty result is left to the caller, since packed binaries can
// legitimately decompile to nothing.
func Parse(logger zerolog.Logger, dir string) (*model.ParsedArtifact, error) {
	parsed := &model.ParsedArtifact{
		Metadata: make(map[string]string),
	}

	assembly, err := readOutput(logger, dir, ghidra.AssemblyFile)
	if err != nil {
		return nil, err
	}
	parsed.Assembly = assembly

	decompiled, err := readOutput(logger, dir, ghidra.DecompiledFile)
	if err != nil {
		return nil, err
	}
	parsed.Decompiled = decompiled

	metadata, err := readOutput(logger, dir, ghidra.MetadataFile)
	if err != nil {
		return nil, err
	}
	parseMetadata(metadata, parsed.Metadata)

	parsed.Empty = parsed.Assembly == "" && parsed.Decompiled == ""
	if parsed.Empty {
		logger.Warn().Str("dir", dir).Msg("Analysis produced no code artifacts")
	}

	return parsed, nil
}

// readOutput reads one output file, trimming surrounding whitespace.
// Absence is not an error.
func readOutput(logger zerolog.Logger, dir, name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug().Str("file", name).Msg("Output file not produced")
			return "", nil
		}
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// parseMetadata splits each line at the first colon into a key/value pair.
// Keys are lowercased with spaces replaced by underscores; a duplicate key
// overwrites the earlier value. Lines without a colon are skipped.
func parseMetadata(content string, into map[string]string) {
	for _, line := range strings.Split(content, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), " ", "_")
		if key == "" {
			continue
		}
		into[key] = strings.TrimSpace(value)
	}
}
