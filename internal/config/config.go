package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config carrega toda a configuração do processo a partir de variáveis de
// ambiente. Tudo tem default: o relay sobe sem nenhuma variável setada, em
// modo guest, sem Consul e sem NATS.
type Config struct {
	Addr        string `env:"RELAY_ADDR" envDefault:":5001"`
	ServiceName string `env:"RELAY_SERVICE_NAME" envDefault:"game-relay"`

	// Vazia = modo guest: a identidade do handshake é aceita sem token.
	JWTSecret string `env:"RELAY_JWT_SECRET"`

	SessionTTL time.Duration `env:"RELAY_SESSION_TTL" envDefault:"30m"`

	StateRate  float64 `env:"RELAY_STATE_RATE" envDefault:"30"`
	StateBurst int     `env:"RELAY_STATE_BURST" envDefault:"60"`
	ChatRate   float64 `env:"RELAY_CHAT_RATE" envDefault:"10"`
	ChatBurst  int     `env:"RELAY_CHAT_BURST" envDefault:"20"`

	// Vazia = sem registro no Consul.
	ConsulAddr string `env:"CONSUL_HTTP_ADDR"`

	// Vazia = sem publicação de eventos de ciclo de vida.
	NATSURL string `env:"NATS_URL"`

	DevLog bool `env:"RELAY_DEV_LOG"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// Port extrai a porta numérica de Addr, para o registro no Consul.
func (c *Config) Port() (int, error) {
	_, portStr, err := net.SplitHostPort(c.Addr)
	if err != nil {
		return 0, fmt.Errorf("invalid RELAY_ADDR %q: %w", c.Addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, fmt.Errorf("invalid port in RELAY_ADDR %q: %w", c.Addr, err)
	}
	return port, nil
}
