package platform

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Assuntos dos eventos de ciclo de vida publicados para o resto da
// plataforma (presença, contadores do catálogo, etc). O relay só publica;
// quem consome decide o que fazer.
const (
	SubjectSessionCreated = "relay.session.created"
	SubjectSessionJoined  = "relay.session.joined"
	SubjectSessionLeft    = "relay.session.left"
	SubjectSessionClosed  = "relay.session.closed"
)

// SessionEvent é o payload JSON de todos os assuntos acima.
type SessionEvent struct {
	SessionID string    `json:"sessionId"`
	GameID    string    `json:"gameId"`
	UserID    string    `json:"userId,omitempty"`
	Players   int       `json:"players"`
	At        time.Time `json:"at"`
}

// Publisher publica os eventos de ciclo de vida no NATS. Ele é opcional por
// contrato: um Publisher nil (NATS não configurado ou indisponível na
// subida) vira no-op e o relay segue funcionando sozinho.
type Publisher struct {
	nc  *nats.Conn
	log *zap.Logger
}

// Connect tenta conectar no NATS. Falha de conexão não derruba o processo:
// loga o aviso e devolve nil, desligando a publicação.
func Connect(url string, log *zap.Logger) *Publisher {
	if url == "" {
		return nil
	}

	nc, err := nats.Connect(url,
		nats.Name("game-relay"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		log.Warn("nats unavailable, lifecycle events disabled",
			zap.String("url", url),
			zap.Error(err))
		return nil
	}

	log.Info("connected to nats", zap.String("url", url))
	return &Publisher{nc: nc, log: log}
}

// Close drena a conexão antes de sair, para não perder eventos enfileirados.
func (p *Publisher) Close() {
	if p == nil {
		return
	}
	p.nc.Drain()
}

func (p *Publisher) publish(subject string, ev SessionEvent) {
	if p == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		p.log.Warn("marshal lifecycle event failed", zap.Error(err))
		return
	}
	if err := p.nc.Publish(subject, data); err != nil {
		// Publicação é best-effort: o evento é descartado e o jogo continua.
		p.log.Warn("publish lifecycle event failed",
			zap.String("subject", subject),
			zap.Error(err))
	}
}

func (p *Publisher) SessionCreated(ev SessionEvent) { p.publish(SubjectSessionCreated, ev) }
func (p *Publisher) SessionJoined(ev SessionEvent)  { p.publish(SubjectSessionJoined, ev) }
func (p *Publisher) SessionLeft(ev SessionEvent)    { p.publish(SubjectSessionLeft, ev) }
func (p *Publisher) SessionClosed(ev SessionEvent)  { p.publish(SubjectSessionClosed, ev) }
