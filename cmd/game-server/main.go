package main

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"cardroom/internal/config"
	"cardroom/internal/game"
	"cardroom/internal/logging"
	"cardroom/internal/session"
	"cardroom/internal/ws"
)

func main() {
	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	logging.Init(cfg.Log)

	decks := game.NewDeckProvider(cfg.Server.CardImageBaseURL)
	registry := session.NewRegistry(cfg.Game, decks)
	wsServer := ws.NewServer(registry)

	r := newRouter(registry, wsServer)

	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log.Info().Str("addr", cfg.Server.HTTPAddr).Msg("http listening")
	log.Fatal().Err(server.ListenAndServe()).Msg("server stopped")
}
