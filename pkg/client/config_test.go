package client

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.AcceptVersion != "1.2" {
		t.Errorf("AcceptVersion = %q, want 1.2", cfg.AcceptVersion)
	}
	if cfg.VHost != "matchwire" {
		t.Errorf("VHost = %q, want matchwire", cfg.VHost)
	}
	if cfg.LogoutTimeout != 3*time.Second {
		t.Errorf("LogoutTimeout = %v, want 3s", cfg.LogoutTimeout)
	}
	if !cfg.DisconnectOnError {
		t.Error("DisconnectOnError = false, want true")
	}
	if cfg.Debug {
		t.Error("Debug = true, want false")
	}
}

func TestConfigClone(t *testing.T) {
	cfg := DefaultConfig().WithVHost("prod").WithDebug(true)
	clone := cfg.Clone()

	clone.WithVHost("staging").WithLogoutTimeout(time.Minute)

	if cfg.VHost != "prod" {
		t.Errorf("original VHost = %q after mutating clone, want prod", cfg.VHost)
	}
	if cfg.LogoutTimeout != 3*time.Second {
		t.Errorf("original LogoutTimeout = %v after mutating clone, want 3s", cfg.LogoutTimeout)
	}
	if !clone.Debug {
		t.Error("clone lost Debug")
	}

	var nilCfg *Config
	if nilCfg.Clone() != nil {
		t.Error("nil Clone() != nil")
	}
}
