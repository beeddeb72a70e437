package auth

import (
	"os"
	"testing"
)

func TestGetAPIKeyFromEnv(t *testing.T) {
	const testKey = "test-api-key-12345"

	originalKey := os.Getenv(EnvVar)
	defer os.Setenv(EnvVar, originalKey)

	os.Setenv(EnvVar, testKey)

	key, err := GetAPIKey()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if key != testKey {
		t.Errorf("expected key %q, got %q", testKey, key)
	}
}

func TestGetAPIKeyWhitespaceOnly(t *testing.T) {
	originalKey := os.Getenv(EnvVar)
	defer os.Setenv(EnvVar, originalKey)

	os.Setenv(EnvVar, "   ")

	if _, err := GetAPIKey(); err == nil {
		t.Error("expected error for whitespace-only key")
	}
}

func TestGetAPIKeyMissing(t *testing.T) {
	originalKey := os.Getenv(EnvVar)
	defer os.Setenv(EnvVar, originalKey)

	os.Unsetenv(EnvVar)

	if _, err := GetAPIKey(); err == nil {
		t.Error("expected error when no API key is set")
	}
}
