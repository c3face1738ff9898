// Package validate performs pre-flight checks on binaries before they are
// handed to the analysis engine.
package validate

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// MaxBinarySize is the ceiling for input binaries (100 MB). Anything larger
// is rejected before the analysis engine ever sees it.
const MaxBinarySize = 100 * 1024 * 1024

// magicPrefixLen is how many leading bytes are read for format detection.
const magicPrefixLen = 16

// signature pairs a magic prefix with the format it identifies.
type signature struct {
	prefix []byte
	format string
}

// Known executable format signatures. Order is irrelevant; the first match wins.
var signatures = []signature{
	{[]byte{0x7f, 'E', 'L', 'F'}, "ELF"},
	{[]byte{'M', 'Z'}, "PE/DOS"},
	{[]byte{0xfe, 0xed, 0xfa}, "Mach-O (32-bit)"},
	{[]byte{0xfe, 0xed, 0xfa, 0xce}, "Mach-O (64-bit)"},
	{[]byte{0xcf, 0xfa, 0xed, 0xfe}, "Mach-O (reverse)"},
	{[]byte{0xca, 0xfe, 0xba, 0xbe}, "Universal binary"},
}

// Binary checks that path points to a plausible binary file. It returns
// valid=false only for hard failures (missing, empty, oversized); a file
// whose magic prefix matches no known format is still accepted, with a
// cautionary diagnostic, because embedded and raw images carry no standard
// signature. It has no side effects.
func Binary(path string) (bool, string) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, "File does not exist"
		}
		return false, fmt.Sprintf("Error validating file: %v", err)
	}

	if info.Size() == 0 {
		return false, "File is empty"
	}

	if info.Size() > MaxBinarySize {
		return false, "File too large (max 100MB)"
	}

	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Sprintf("Error validating file: %v", err)
	}
	defer f.Close()

	magic := make([]byte, magicPrefixLen)
	n, err := f.Read(magic)
	if err != nil && err != io.EOF {
		return false, fmt.Sprintf("Error validating file: %v", err)
	}
	magic = magic[:n]

	for _, sig := range signatures {
		if bytes.HasPrefix(magic, sig.prefix) {
			return true, fmt.Sprintf("Valid binary file (%s)", sig.format)
		}
	}

	return true, "File format not clearly identified, proceeding with caution"
}
