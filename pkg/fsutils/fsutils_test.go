package fsutils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCreateDir(t *testing.T) {
	tempDir := t.TempDir()

	// Test 1: Create nested directories
	nestedDirPath := filepath.Join(tempDir, "parent", "child")
	if err := CreateDir(nestedDirPath); err != nil {
		t.Fatalf("CreateDir(%q) returned error: %v", nestedDirPath, err)
	}
	if _, err := os.Stat(nestedDirPath); os.IsNotExist(err) {
		t.Fatalf("Directory %q was not created", nestedDirPath)
	}

	// Test 2: Creating it again is fine
	if err := CreateDir(nestedDirPath); err != nil {
		t.Fatalf("CreateDir(%q) on existing dir returned error: %v", nestedDirPath, err)
	}
}

func TestWriteFileAtomic(t *testing.T) {
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "recipes.json")

	// Test 1: Write to a new file
	if err := WriteFileAtomic(filePath, []byte(`[]`)); err != nil {
		t.Fatalf("WriteFileAtomic(%q) returned error: %v", filePath, err)
	}

	// Test 2: Overwrite it
	if err := WriteFileAtomic(filePath, []byte(`[{"name":"Soup"}]`)); err != nil {
		t.Fatalf("WriteFileAtomic(%q) overwrite returned error: %v", filePath, err)
	}
	got, err := os.ReadFile(filePath)
	if err != nil {
		t.Fatalf("Error reading back file %q: %v", filePath, err)
	}
	if string(got) != `[{"name":"Soup"}]` {
		t.Errorf("Read content %q does not match written content", string(got))
	}

	// No temp files are left behind
	entries, err := os.ReadDir(tempDir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected only the target file in %s, found %v", tempDir, names)
	}

	// Test 3: Missing parent directory fails
	if err := WriteFileAtomic(filepath.Join(tempDir, "missing", "x.json"), []byte("x")); err == nil {
		t.Fatal("WriteFileAtomic succeeded for a non-existent directory, expected error")
	}
}

func TestReadFileIfExists(t *testing.T) {
	tempDir := t.TempDir()

	data, ok, err := ReadFileIfExists(filepath.Join(tempDir, "nope.json"))
	if err != nil || ok || data != nil {
		t.Fatalf("ReadFileIfExists(missing) = %q, %v, %v; want nil, false, nil", data, ok, err)
	}

	path := filepath.Join(tempDir, "yes.json")
	if err := os.WriteFile(path, []byte("dark"), 0o644); err != nil {
		t.Fatal(err)
	}
	data, ok, err = ReadFileIfExists(path)
	if err != nil || !ok || string(data) != "dark" {
		t.Fatalf("ReadFileIfExists(existing) = %q, %v, %v", data, ok, err)
	}
}

func TestRemoveIfExists(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "theme.json")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := RemoveIfExists(path); err != nil {
		t.Fatalf("RemoveIfExists(existing) returned error: %v", err)
	}
	if err := RemoveIfExists(path); err != nil {
		t.Fatalf("RemoveIfExists(missing) returned error: %v", err)
	}
}

func TestFileExists(t *testing.T) {
	tempDir := t.TempDir()

	filePath := filepath.Join(tempDir, "exists.txt")
	file, err := os.Create(filePath)
	if err != nil {
		t.Fatalf("Could not create temp file %q: %v", filePath, err)
	}
	file.Close()

	if !FileExists(filePath) {
		t.Errorf("FileExists(%q) returned false, want true", filePath)
	}
	if FileExists(filepath.Join(tempDir, "does_not_exist.txt")) {
		t.Error("FileExists returned true for a missing file")
	}
	if FileExists(tempDir) {
		t.Errorf("FileExists(%q) on a directory returned true, want false", tempDir)
	}
	if FileExists("") {
		t.Error(`FileExists("") returned true, want false`)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"Spaces", "Tomato Pasta", "tomato_pasta"},
		{"Special Chars", "Mac & Cheese!", "mac_cheese_"},
		{"Already Valid", "recipes", "recipes"},
		{"Leading/Trailing Spaces", "  leading and trailing  ", "leading_and_trailing"},
		{"Empty String", "", ""},
		{"Only Special Chars", "!@#$", "_"},
		{"Unicode (basic test)", "你好世界", "_"},
		{"With Periods", "recipes.export.json", "recipes.export.json"},
		{"Dot Dot", "..", "_"},
		{"Spaces and Special", " a ! b ", "a_b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeFilename(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
