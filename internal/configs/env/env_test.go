package env

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetEnvFallbacks(t *testing.T) {
	t.Setenv("WINNOW_TEST_INT", "12")
	t.Setenv("WINNOW_TEST_BAD_INT", "twelve")
	t.Setenv("WINNOW_TEST_UINT", "1048576")
	t.Setenv("WINNOW_TEST_FLOAT", "2.5")
	t.Setenv("WINNOW_TEST_BOOL", "true")
	t.Setenv("WINNOW_TEST_EMPTY", "")

	if got := GetEnv("WINNOW_TEST_EMPTY", "def"); got != "def" {
		t.Fatalf("expect default for empty value, got %q", got)
	}
	if got := GetEnvInt("WINNOW_TEST_INT", 1); got != 12 {
		t.Fatalf("expect 12, got %d", got)
	}
	if got := GetEnvInt("WINNOW_TEST_BAD_INT", 1); got != 1 {
		t.Fatalf("expect default for unparsable int, got %d", got)
	}
	if got := GetEnvUint64("WINNOW_TEST_UINT", 0); got != 1<<20 {
		t.Fatalf("expect 1048576, got %d", got)
	}
	if got := GetEnvFloat("WINNOW_TEST_FLOAT", 0); got != 2.5 {
		t.Fatalf("expect 2.5, got %v", got)
	}
	if got := GetEnvBool("WINNOW_TEST_BOOL", false); !got {
		t.Fatalf("expect true")
	}
}

func TestLoadEnvKeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("WINNOW_TEST_FILE=from-file\nWINNOW_TEST_SET=from-file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("WINNOW_TEST_SET", "from-env")
	t.Setenv("WINNOW_TEST_FILE", "")
	os.Unsetenv("WINNOW_TEST_FILE")

	if err := LoadEnv(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := os.Getenv("WINNOW_TEST_FILE"); got != "from-file" {
		t.Fatalf("expect value loaded from file, got %q", got)
	}
	if got := os.Getenv("WINNOW_TEST_SET"); got != "from-env" {
		t.Fatalf("expect existing value kept, got %q", got)
	}
}
