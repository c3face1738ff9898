// Package classify maps raw analysis failures to operator-actionable
// categories with a fixed message and suggestion per category.
package classify

import (
	"strings"

	"github.com/stoyse/spectrace/model"
)

// Failure categories, most specific first. Classification walks the rule
// table in this order and stops at the first match.
const (
	CategoryMissingRuntime = "missing_runtime_dependency"
	CategoryMissingTool    = "missing_tool_installation"
	CategoryTimeout        = "timeout"
	CategoryPermission     = "permission_denied"
	CategoryOutOfMemory    = "out_of_memory"
	CategoryUnsupported    = "unsupported_format"
	CategoryGeneric        = "generic"
)

type rule struct {
	category   string
	match      func(text string) bool
	message    string
	suggestion string
}

func containsAny(text string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

var rules = []rule{
	{
		category: CategoryMissingRuntime,
		match: func(t string) bool {
			return strings.Contains(t, "java") && strings.Contains(t, "not found")
		},
		message:    "Java 17+ is required for Ghidra operations. Please ensure Java is installed and JAVA_HOME is set correctly.",
		suggestion: "Install Java 17+ and set JAVA_HOME environment variable",
	},
	{
		category: CategoryMissingTool,
		match: func(t string) bool {
			return strings.Contains(t, "ghidra") && containsAny(t, "not found", "no such file")
		},
		message:    "Ghidra installation directory not found. Please ensure Ghidra is properly installed.",
		suggestion: "Set GHIDRA_INSTALL_DIR environment variable to your Ghidra installation path",
	},
	{
		category: CategoryTimeout,
		match: func(t string) bool {
			return containsAny(t, "timeout", "timed out")
		},
		message:    "Binary analysis took too long and was terminated. This may happen with very large or complex binaries.",
		suggestion: "Try with a smaller binary or increase timeout limits",
	},
	{
		category: CategoryPermission,
		match: func(t string) bool {
			return containsAny(t, "permission", "denied")
		},
		message:    "Insufficient permissions to access required files or directories.",
		suggestion: "Check file permissions and ensure the application has write access to temporary directories",
	},
	{
		category: CategoryOutOfMemory,
		match: func(t string) bool {
			return containsAny(t, "memory", "heap")
		},
		message:    "Not enough memory available for binary analysis. This can happen with very large binaries.",
		suggestion: "Try with a smaller binary or increase available memory for the Java process",
	},
	{
		category: CategoryUnsupported,
		match: func(t string) bool {
			return containsAny(t, "unsupported", "unknown format")
		},
		message:    "The file format is not supported by Ghidra for analysis.",
		suggestion: "Ensure the file is a valid binary (ELF, PE, Mach-O, or raw binary)",
	},
}

// Error classifies err against the rule table. It never fails: text that
// matches no rule resolves to the generic category with the original error
// text preserved verbatim.
func Error(err error) model.ClassifiedError {
	text := strings.ToLower(err.Error())
	for _, r := range rules {
		if r.match(text) {
			return model.ClassifiedError{
				Category:   r.category,
				Message:    r.message,
				Suggestion: r.suggestion,
			}
		}
	}
	return model.ClassifiedError{
		Category:   CategoryGeneric,
		Message:    err.Error(),
		Suggestion: "Please check the binary file and try again",
	}
}
