package remote

import (
	"strings"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.ValidateStrict(); err != nil {
		t.Errorf("default config should be valid, got %v", err)
	}
	if verr := cfg.Validate(); verr != nil {
		t.Errorf("default config produced warnings: %v", verr)
	}
}

func TestValidateAppliesDefaults(t *testing.T) {
	cfg := Config{
		Port:         80,
		NgrokPlan:    "enterprise",
		TokenExpiry:  0,
		NgrokAPIPort: 99999,
	}

	verr := cfg.Validate()
	if verr == nil || !verr.HasWarnings() {
		t.Fatal("expected warnings for invalid config")
	}

	if cfg.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Port)
	}
	if cfg.NgrokPlan != "free" {
		t.Errorf("plan = %q, want free", cfg.NgrokPlan)
	}
	if cfg.TokenExpiry != 24 {
		t.Errorf("tokenExpiry = %d, want 24", cfg.TokenExpiry)
	}
	if cfg.NgrokAPIPort != 4040 {
		t.Errorf("apiPort = %d, want 4040", cfg.NgrokAPIPort)
	}
}

func TestValidateWarnsSubdomainOnFreePlan(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Subdomain = "myhosts"

	verr := cfg.Validate()
	if verr == nil {
		t.Fatal("expected warning for subdomain on free plan")
	}
	if !strings.Contains(verr.Error(), "subdomain") {
		t.Errorf("warning should mention subdomain, got %q", verr.Error())
	}
}

func TestValidateStrictRejects(t *testing.T) {
	cfg := Config{Port: 10, NgrokPlan: "free", TokenExpiry: 24, NgrokAPIPort: 4040}
	if err := cfg.ValidateStrict(); err == nil {
		t.Error("expected error for privileged port")
	}
}
