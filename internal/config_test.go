package internal

import (
	"strings"
	"testing"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestConfig_LinkOptions(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Links.Style = "html"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "links") {
		t.Errorf("unknown link style should fail, got %v", err)
	}

	cfg = NewDefaultConfig()
	cfg.Links.PathFormat = "relative"
	if err := cfg.Validate(); err != nil {
		t.Errorf("relative path format should pass: %v", err)
	}
}

func TestConfig_LogFormat(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.App.LogFormat = "xml"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown log format should fail")
	}
}

func TestConfig_VaultPathRequired(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Vault.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Error("empty vault path should fail")
	}
}

func TestConfig_NegativeSettle(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Inbox.Settle = -1
	if err := cfg.Validate(); err == nil {
		t.Error("negative settle should fail")
	}
}

func TestHTTPConfig_DefaultIsLoopback(t *testing.T) {
	cfg := NewDefaultConfig()
	if got := cfg.App.HTTP.Address(); got != "127.0.0.1:8080" {
		t.Errorf("address = %q", got)
	}
	if !cfg.App.HTTP.Loopback() {
		t.Error("default bind should be loopback")
	}

	cfg.App.HTTP.Host = ""
	if got := cfg.App.HTTP.Address(); got != ":8080" || cfg.App.HTTP.Loopback() {
		t.Errorf("all interfaces: address = %q, loopback = %v", got, cfg.App.HTTP.Loopback())
	}
	cfg.App.HTTP.Host = "::1"
	if got := cfg.App.HTTP.Address(); got != "[::1]:8080" || !cfg.App.HTTP.Loopback() {
		t.Errorf("ipv6 loopback: address = %q", got)
	}
}
