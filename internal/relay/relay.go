package relay

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"gamerelay/internal/auth"
	"gamerelay/internal/network"
	"gamerelay/internal/platform"
	"gamerelay/internal/relay/message"
)

// CommandHandlerFunc define a assinatura das funções que lidam com cada tipo
// de mensagem. Elas recebem o estado da conexão e o payload bruto.
type CommandHandlerFunc func(r *Relay, p Peer, c *conn, payload json.RawMessage)

// conn é o estado que o relay mantém por conexão: a identidade vinculada
// (nil até o handshake) e os limitadores de vazão.
//
// Máquina de estados da conexão: não autenticada -> vinculada -> membro de
// zero ou mais sessões. Desconectada é terminal e a limpeza roda uma vez só.
type conn struct {
	identity     *Identity
	stateLimiter *rate.Limiter
	chatLimiter  *rate.Limiter
}

// Options controla os limites operacionais do relay.
type Options struct {
	// SessionTTL é o tempo de ociosidade depois do qual uma sessão é varrida.
	SessionTTL time.Duration

	// Limites de vazão por conexão para gameStateUpdate e chatMessage.
	// Um membro abusivo tem as mensagens excedentes descartadas com um
	// evento de erro; a conexão não é derrubada.
	StateRate  rate.Limit
	StateBurst int
	ChatRate   rate.Limit
	ChatBurst  int
}

// DefaultOptions são os limites usados quando a configuração não diz nada.
func DefaultOptions() Options {
	return Options{
		SessionTTL: 30 * time.Minute,
		StateRate:  30,
		StateBurst: 60,
		ChatRate:   10,
		ChatBurst:  20,
	}
}

// Relay implementa network.EventHandler. Ele mantém o ciclo de vida e a
// composição das sessões e entrega os broadcasts de estado e chat para os
// membros, na ordem em que processou os eventos.
type Relay struct {
	// conns é acessado SOMENTE pela goroutine do Hub (OnConnect,
	// OnDisconnect e OnMessage chegam serializados por ela), então não
	// precisa de lock. A tabela de sessões tem o lock do Registry porque a
	// varredura de TTL roda fora da goroutine do Hub.
	conns map[Peer]*conn

	registry *Registry
	verifier *auth.Verifier
	events   *platform.Publisher
	opts     Options
	log      *zap.Logger

	connCount atomic.Int64

	router map[string]CommandHandlerFunc
}

// NewRelay monta o relay e registra os handlers do roteador.
func NewRelay(registry *Registry, verifier *auth.Verifier, events *platform.Publisher, opts Options, log *zap.Logger) *Relay {
	r := &Relay{
		conns:    make(map[Peer]*conn),
		registry: registry,
		verifier: verifier,
		events:   events,
		opts:     opts,
		log:      log,
		router:   make(map[string]CommandHandlerFunc),
	}
	r.registerHandlers()
	return r
}

// --- Implementação da interface network.EventHandler ---

func (r *Relay) OnConnect(c *network.Client) {
	r.Connect(c)
}

func (r *Relay) OnDisconnect(c *network.Client) {
	r.Disconnect(c)
}

func (r *Relay) OnMessage(c *network.Client, msg network.Message) {
	r.Handle(c, msg)
}

// --- Entradas reais, em termos de Peer (testáveis sem websocket) ---

// Connect registra uma conexão nova, ainda sem identidade.
func (r *Relay) Connect(p Peer) {
	r.conns[p] = &conn{
		stateLimiter: rate.NewLimiter(r.opts.StateRate, r.opts.StateBurst),
		chatLimiter:  rate.NewLimiter(r.opts.ChatRate, r.opts.ChatBurst),
	}
	r.connCount.Add(1)
	r.log.Debug("connection opened", zap.Int64("connections", r.connCount.Load()))
}

// Disconnect trata a queda da conexão como um leave implícito de todas as
// sessões das quais a identidade era membro.
func (r *Relay) Disconnect(p Peer) {
	c, ok := r.conns[p]
	if !ok {
		return
	}
	delete(r.conns, p)
	r.connCount.Add(-1)

	if c.identity == nil {
		return
	}

	for _, res := range r.registry.DropPeer(p, c.identity.UserID) {
		r.broadcast(res.Peers, message.CreatePlayerLeft(res.Snapshot, c.identity.UserID))
		r.publishLeft(res, c.identity.UserID)
	}
	r.log.Info("player disconnected",
		zap.String("userId", c.identity.UserID),
		zap.String("username", c.identity.Username))
}

// Handle roteia uma mensagem para o handler do seu tipo. Toda operação além
// do authenticate exige identidade vinculada.
func (r *Relay) Handle(p Peer, msg network.Message) {
	c, ok := r.conns[p]
	if !ok {
		return // Mensagem de uma conexão que já caiu. Ignora.
	}

	if msg.Type == message.TypeAuthenticate {
		handleAuthenticate(r, p, c, msg.Payload)
		return
	}

	if c.identity == nil {
		r.send(p, message.CreateError("not authenticated"))
		return
	}

	handler, found := r.router[msg.Type]
	if !found {
		r.send(p, message.CreateError("unknown event type: %s", msg.Type))
		return
	}

	handler(r, p, c, msg.Payload)
}

// RunSweeper fecha sessões ociosas periodicamente, até o contexto acabar.
func (r *Relay) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, snap := range r.registry.Sweep(r.opts.SessionTTL) {
				r.log.Info("idle session swept",
					zap.String("sessionId", snap.ID),
					zap.String("gameId", snap.GameID))
				r.events.SessionClosed(platform.SessionEvent{
					SessionID: snap.ID,
					GameID:    snap.GameID,
					Players:   len(snap.Players),
				})
			}
		}
	}
}

// Stats alimenta o health check.
func (r *Relay) Stats() (sessions, connections int) {
	return r.registry.Len(), int(r.connCount.Load())
}

// --- Entrega ---

// send entrega sem bloquear: se o buffer do peer está cheio, o evento é
// descartado. Entrega é best-effort, at-most-once; um peer lento não pode
// segurar a goroutine do Hub.
func (r *Relay) send(p Peer, msg network.Message) {
	select {
	case p.Send() <- msg:
	default:
		r.log.Warn("peer send buffer full, event dropped", zap.String("event", msg.Type))
	}
}

func (r *Relay) broadcast(peers []Peer, msg network.Message) {
	for _, p := range peers {
		r.send(p, msg)
	}
}

func (r *Relay) publishLeft(res LeaveResult, userID string) {
	ev := platform.SessionEvent{
		SessionID: res.Snapshot.ID,
		GameID:    res.Snapshot.GameID,
		UserID:    userID,
		Players:   len(res.Snapshot.Players),
	}
	r.events.SessionLeft(ev)
	if res.Closed {
		r.events.SessionClosed(ev)
	}
}
