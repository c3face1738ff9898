package validate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBinary_MissingFile(t *testing.T) {
	valid, diagnostic := Binary(filepath.Join(t.TempDir(), "nope"))
	require.False(t, valid)
	require.Equal(t, "File does not exist", diagnostic)
}

func TestBinary_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	valid, diagnostic := Binary(path)
	require.False(t, valid)
	require.Equal(t, "File is empty", diagnostic)
}

func TestBinary_Oversized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "huge")
	f, err := os.Create(path)
	require.NoError(t, err)
	// Sparse file just over the ceiling
	require.NoError(t, f.Truncate(MaxBinarySize+1))
	require.NoError(t, f.Close())

	valid, diagnostic := Binary(path)
	require.False(t, valid)
	require.Equal(t, "File too large (max 100MB)", diagnostic)
}

func TestBinary_KnownSignatures(t *testing.T) {
	tests := []struct {
		name  string
		magic []byte
	}{
		{"elf", []byte{0x7f, 'E', 'L', 'F', 2, 1, 1, 0}},
		{"pe", []byte{'M', 'Z', 0x90, 0x00}},
		{"macho32", []byte{0xfe, 0xed, 0xfa, 0xcd}},
		{"macho64", []byte{0xfe, 0xed, 0xfa, 0xce}},
		{"macho-reverse", []byte{0xcf, 0xfa, 0xed, 0xfe}},
		{"fat", []byte{0xca, 0xfe, 0xba, 0xbe}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.name)
			require.NoError(t, os.WriteFile(path, append(tt.magic, make([]byte, 32)...), 0o644))

			valid, diagnostic := Binary(path)
			require.True(t, valid)
			require.Contains(t, diagnostic, "Valid binary file")
		})
	}
}

func TestBinary_UnknownSignatureStillAccepted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw.bin")
	require.NoError(t, os.WriteFile(path, []byte{0x00, 0x11, 0x22, 0x33, 0x44}, 0o644))

	valid, diagnostic := Binary(path)
	require.True(t, valid)
	require.Equal(t, "File format not clearly identified, proceeding with caution", diagnostic)
}

func TestBinary_NoSideEffects(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bin")
	content := []byte{0x7f, 'E', 'L', 'F', 1, 2, 3}
	require.NoError(t, os.WriteFile(path, content, 0o644))

	_, _ = Binary(path)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, content, after)
}
