package main

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"gamerelay/internal/auth"
	"gamerelay/internal/cluster"
	"gamerelay/internal/config"
	"gamerelay/internal/network"
	"gamerelay/internal/platform"
	"gamerelay/internal/relay"
)

// Intervalo da varredura de sessões ociosas.
const sweepInterval = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	var log *zap.Logger
	if cfg.DevLog {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	verifier := auth.NewVerifier(cfg.JWTSecret)
	if verifier.Guest() {
		log.Warn("RELAY_JWT_SECRET not set, running in guest mode: handshake identities are trusted verbatim")
	}

	events := platform.Connect(cfg.NATSURL, log)
	defer events.Close()

	opts := relay.Options{
		SessionTTL: cfg.SessionTTL,
		StateRate:  rate.Limit(cfg.StateRate),
		StateBurst: cfg.StateBurst,
		ChatRate:   rate.Limit(cfg.ChatRate),
		ChatBurst:  cfg.ChatBurst,
	}

	r := relay.NewRelay(relay.NewRegistry(), verifier, events, opts, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.RunSweeper(ctx, sweepInterval)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", cluster.NewHealthHandler(r.Stats))

	// Registro no Consul é opcional: sem CONSUL_HTTP_ADDR o relay roda
	// standalone (dev local, testes de carga).
	if cfg.ConsulAddr != "" {
		port, err := cfg.Port()
		if err != nil {
			log.Fatal("invalid relay address", zap.Error(err))
		}
		if err := cluster.Register(log, cfg.ConsulAddr, cfg.ServiceName, port, port); err != nil {
			log.Fatal("consul registration failed", zap.Error(err))
		}
	}

	server := network.NewServer(r, log)
	if err := server.Listen(cfg.Addr, mux); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
