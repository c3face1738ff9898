package ghidra

// javahome.go locates a usable Java installation for the headless analyzer.
// Detection is best-effort: when nothing is found the analyzer is launched
// with the inherited environment and the JVM is left to sort itself out.

import (
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Common Java installation locations, probed in order.
var javaHomeProbes = []string{
	"/usr/lib/jvm/java-21-openjdk-amd64",
	"/usr/lib/jvm/java-17-openjdk-amd64",
	"/usr/lib/jvm/java-21-openjdk-arm64",
	"/usr/lib/jvm/java-17-openjdk-arm64",
	"/usr/lib/jvm/default-java",
	"/usr/lib/jvm/default",
	"/opt/java/openjdk",
	"/usr/java/latest",
	"/Library/Java/JavaVirtualMachines/temurin-17.jdk/Contents/Home",
}

// JavaHomeCandidates returns the ordered list of directories considered for
// JAVA_HOME. An explicit override always comes first. The function is pure;
// it never touches the filesystem.
func JavaHomeCandidates(override string) []string {
	if override == "" {
		return javaHomeProbes
	}
	return append([]string{override}, javaHomeProbes...)
}

// ParseJavaHome extracts the java.home property from the output of
// `java -XshowSettings:properties -version`.
func ParseJavaHome(output string) string {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "java.home") {
			continue
		}
		if _, value, ok := strings.Cut(line, "="); ok {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// isJavaHome reports whether dir looks like a JDK/JRE root.
func isJavaHome(dir string) bool {
	_, err := exec.LookPath(filepath.Join(dir, "bin", "java"))
	return err == nil
}

// DetectJavaHome resolves a Java home: explicit override and well-known
// locations first, then the runtime's own introspection output, then empty
// (meaning: inherit the environment as-is).
func DetectJavaHome(logger zerolog.Logger, override string) string {
	for _, candidate := range JavaHomeCandidates(override) {
		if isJavaHome(candidate) {
			logger.Debug().Str("java_home", candidate).Msg("Java home resolved from candidate list")
			return candidate
		}
	}

	// Ask the JVM on PATH where it lives. The properties dump goes to stderr.
	cmd := exec.Command("java", "-XshowSettings:properties", "-version")
	output, err := cmd.CombinedOutput()
	if err == nil || len(output) > 0 {
		if home := ParseJavaHome(string(output)); home != "" {
			logger.Debug().Str("java_home", home).Msg("Java home resolved via java -XshowSettings")
			return home
		}
	}

	logger.Debug().Msg("Java home not detected, relying on inherited environment")
	return ""
}
