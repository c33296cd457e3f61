package secrets

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// =============================================================================
// EnvProvider Tests
// =============================================================================

func TestEnvProviderResolvesSecret(t *testing.T) {
	t.Setenv("WEBRANA_SECRET_OPENAI_API_KEY", "sk-test-123")

	p := NewEnvProvider("")
	value, err := p.GetSecret(context.Background(), "openai-api-key")
	if err != nil {
		t.Fatalf("GetSecret failed: %v", err)
	}
	if value != "sk-test-123" {
		t.Errorf("Expected sk-test-123, got %s", value)
	}
}

func TestEnvProviderMissingSecret(t *testing.T) {
	p := NewEnvProvider("WEBRANA_TEST_MISSING_")
	if _, err := p.GetSecret(context.Background(), "nonexistent"); err == nil {
		t.Error("Expected error for missing secret")
	}
}

func TestEnvProviderCustomPrefix(t *testing.T) {
	t.Setenv("CUSTOM_ANTHROPIC_API_KEY", "sk-ant-test")

	p := NewEnvProvider("CUSTOM_")
	value, err := p.GetSecret(context.Background(), "anthropic-api-key")
	if err != nil {
		t.Fatalf("GetSecret failed: %v", err)
	}
	if value != "sk-ant-test" {
		t.Errorf("Expected sk-ant-test, got %s", value)
	}
}

// =============================================================================
// FileProvider Tests
// =============================================================================

func writeSecretFile(t *testing.T, dir, name, value string, mode os.FileMode) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(value), mode); err != nil {
		t.Fatalf("Failed to write secret file: %v", err)
	}
}

func TestFileProviderResolvesSecret(t *testing.T) {
	dir := t.TempDir()
	writeSecretFile(t, dir, "google-api-key", "AIza-test\n", 0600)

	p, err := NewFileProvider(dir, false)
	if err != nil {
		t.Fatalf("NewFileProvider failed: %v", err)
	}
	defer p.Close()

	value, err := p.GetSecret(context.Background(), "google-api-key")
	if err != nil {
		t.Fatalf("GetSecret failed: %v", err)
	}
	if value != "AIza-test" {
		t.Errorf("Expected trimmed value AIza-test, got %q", value)
	}
}

func TestFileProviderRejectsLoosePermissions(t *testing.T) {
	dir := t.TempDir()
	writeSecretFile(t, dir, "leaky-key", "secret", 0644)

	p, err := NewFileProvider(dir, false)
	if err != nil {
		t.Fatalf("NewFileProvider failed: %v", err)
	}
	defer p.Close()

	if _, err := p.GetSecret(context.Background(), "leaky-key"); err == nil {
		t.Error("Expected error for world-readable secret file")
	}
}

func TestFileProviderRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	p, err := NewFileProvider(dir, false)
	if err != nil {
		t.Fatalf("NewFileProvider failed: %v", err)
	}
	defer p.Close()

	if _, err := p.GetSecret(context.Background(), "../outside"); err == nil {
		t.Error("Expected error for path traversal")
	}
}

func TestFileProviderRefreshPicksUpRotation(t *testing.T) {
	dir := t.TempDir()
	writeSecretFile(t, dir, "qwen-api-key", "old-value", 0600)

	p, err := NewFileProvider(dir, false)
	if err != nil {
		t.Fatalf("NewFileProvider failed: %v", err)
	}
	defer p.Close()

	ctx := context.Background()
	if _, err := p.GetSecret(ctx, "qwen-api-key"); err != nil {
		t.Fatalf("GetSecret failed: %v", err)
	}

	writeSecretFile(t, dir, "qwen-api-key", "new-value", 0600)
	if err := p.Refresh(ctx); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	value, err := p.GetSecret(ctx, "qwen-api-key")
	if err != nil {
		t.Fatalf("GetSecret failed: %v", err)
	}
	if value != "new-value" {
		t.Errorf("Expected rotated value, got %q", value)
	}
}

// =============================================================================
// Resolver Chain Tests
// =============================================================================

func TestResolverFileBeatsEnv(t *testing.T) {
	t.Setenv("WEBRANA_SECRET_OPENAI_API_KEY", "from-env")

	dir := t.TempDir()
	writeSecretFile(t, dir, "openai-api-key", "from-file", 0600)

	fileProvider, err := NewFileProvider(dir, false)
	if err != nil {
		t.Fatalf("NewFileProvider failed: %v", err)
	}
	defer fileProvider.Close()

	r := NewResolver(fileProvider, NewEnvProvider(""))
	value, err := r.GetSecret(context.Background(), "openai-api-key")
	if err != nil {
		t.Fatalf("GetSecret failed: %v", err)
	}
	if value != "from-file" {
		t.Errorf("Expected file backend to win, got %q", value)
	}
}

func TestResolverFallsBackToEnv(t *testing.T) {
	t.Setenv("WEBRANA_SECRET_ANTHROPIC_API_KEY", "from-env")

	dir := t.TempDir()
	fileProvider, err := NewFileProvider(dir, false)
	if err != nil {
		t.Fatalf("NewFileProvider failed: %v", err)
	}
	defer fileProvider.Close()

	r := NewResolver(fileProvider, NewEnvProvider(""))
	value, err := r.GetSecret(context.Background(), "anthropic-api-key")
	if err != nil {
		t.Fatalf("GetSecret failed: %v", err)
	}
	if value != "from-env" {
		t.Errorf("Expected env fallback, got %q", value)
	}
}

func TestResolverMissingEverywhere(t *testing.T) {
	r := NewResolver(NewEnvProvider("WEBRANA_TEST_NONE_"))
	if _, err := r.GetSecret(context.Background(), "missing-key"); err == nil {
		t.Error("Expected error when no backend holds the secret")
	}
}
