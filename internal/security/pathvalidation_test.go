package security

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestValidatePathWithinDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	// Create directories for symlink tests
	safeDir := filepath.Join(tmpDir, "safe")
	unsafeDir := filepath.Join(tmpDir, "unsafe")
	if err := os.MkdirAll(safeDir, 0755); err != nil {
		t.Fatalf("Failed to create safe directory: %v", err)
	}
	if err := os.MkdirAll(unsafeDir, 0755); err != nil {
		t.Fatalf("Failed to create unsafe directory: %v", err)
	}

	// Create a symlink inside safe directory pointing to unsafe directory
	symlinkPath := filepath.Join(safeDir, "evil-symlink")
	if err := os.Symlink(unsafeDir, symlinkPath); err != nil {
		t.Fatalf("Failed to create symlink: %v", err)
	}

	tests := []struct {
		name      string
		filePath  string
		safeDir   string
		wantError bool
	}{
		{
			name:      "figure in results folder",
			filePath:  filepath.Join(safeDir, "sub01_sound_first_converted_eda_processed1.png"),
			safeDir:   safeDir,
			wantError: false,
		},
		{
			name:      "valid nested path",
			filePath:  filepath.Join(safeDir, "subdir", "file.csv"),
			safeDir:   safeDir,
			wantError: false,
		},
		{
			name:      "participant id with ..",
			filePath:  filepath.Join(safeDir, "../../etc_sound_first_converted_eda_processed1.png"),
			safeDir:   safeDir,
			wantError: true,
		},
		{
			name:      "absolute path outside safe dir",
			filePath:  "/etc/passwd",
			safeDir:   safeDir,
			wantError: true,
		},
		{
			name:      "new file under symlink to outside dir",
			filePath:  filepath.Join(symlinkPath, "out.png"),
			safeDir:   safeDir,
			wantError: true,
		},
		{
			name:      "symlink itself",
			filePath:  symlinkPath,
			safeDir:   safeDir,
			wantError: true,
		},
		{
			name:      "missing safe dir",
			filePath:  filepath.Join(tmpDir, "missing", "a.png"),
			safeDir:   filepath.Join(tmpDir, "missing"),
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePathWithinDirectory(tt.filePath, tt.safeDir)
			if (err != nil) != tt.wantError {
				t.Errorf("ValidatePathWithinDirectory() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestValidatePathLexically(t *testing.T) {
	tests := []struct {
		name      string
		filePath  string
		safeDir   string
		wantError bool
	}{
		{"inside", "results/sub01_sound_first_converted_eda_processed1.png", "results", false},
		{"inside after cleaning", "results/a/../b.png", "results", false},
		{"dot dot", "results/../secret.png", "results", true},
		{"absolute outside", "/etc/passwd", "results", true},
		{"the directory itself", "results", "results", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePathLexically(tt.filePath, tt.safeDir)
			if (err != nil) != tt.wantError {
				t.Errorf("ValidatePathLexically() error = %v, wantError %v", err, tt.wantError)
			}
			if err != nil && !errors.Is(err, ErrPathTraversal) {
				t.Errorf("error %v does not wrap ErrPathTraversal", err)
			}
		})
	}
}
