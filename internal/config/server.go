package config

import "github.com/caarlos0/env/v11"

type ServerConfig struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	CardImageBaseURL string `env:"CARD_IMAGE_BASE_URL" envDefault:"https://storage.googleapis.com/teak-banner-431004-n3.appspot.com/images/cards"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
