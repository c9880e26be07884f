package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type GameConfig struct {
	// DisconnectGrace is how long a dropped player's seat, hand and
	// ledger entries are held for reconnection before eviction.
	DisconnectGrace time.Duration `env:"DISCONNECT_GRACE" envDefault:"5s"`

	// ChallengeWindow bounds how long a declared spice play may be
	// disputed before it is auto-accepted.
	ChallengeWindow time.Duration `env:"CHALLENGE_WINDOW" envDefault:"5s"`
}

func LoadGame() (GameConfig, error) {
	var cfg GameConfig
	err := env.Parse(&cfg)
	return cfg, err
}
