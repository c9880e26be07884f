package config

import (
	"testing"
	"time"
)

func TestLoadGameDefaults(t *testing.T) {
	cfg, err := LoadGame()
	if err != nil {
		t.Fatalf("LoadGame() error = %v", err)
	}
	if cfg.DisconnectGrace != 5*time.Second {
		t.Fatalf("DisconnectGrace = %v, want 5s", cfg.DisconnectGrace)
	}
	if cfg.ChallengeWindow != 5*time.Second {
		t.Fatalf("ChallengeWindow = %v, want 5s", cfg.ChallengeWindow)
	}
}

func TestLoadGameOverrides(t *testing.T) {
	t.Setenv("DISCONNECT_GRACE", "250ms")
	t.Setenv("CHALLENGE_WINDOW", "10s")

	cfg, err := LoadGame()
	if err != nil {
		t.Fatalf("LoadGame() error = %v", err)
	}
	if cfg.DisconnectGrace != 250*time.Millisecond || cfg.ChallengeWindow != 10*time.Second {
		t.Fatalf("unexpected game config: %+v", cfg)
	}
}
