package relay

import (
	"encoding/json"

	"go.uber.org/zap"

	"gamerelay/internal/platform"
	"gamerelay/internal/relay/message"
)

// registerHandlers popula o roteador com os comandos disponíveis para uma
// conexão já autenticada. O authenticate é tratado à parte no Handle, porque
// é o único evento válido antes do vínculo de identidade.
func (r *Relay) registerHandlers() {
	r.router[message.TypeCreateSession] = handleCreateSession
	r.router[message.TypeJoinSession] = handleJoinSession
	r.router[message.TypeStateUpdate] = handleStateUpdate
	r.router[message.TypeChat] = handleChat
	r.router[message.TypeLeaveSession] = handleLeaveSession
}

// handleAuthenticate vincula a identidade à conexão, uma única vez.
// Handshake sem os campos obrigatórios ou com credencial inválida recusa a
// conexão: erro para o cliente e fechamento, nada mais é processado nela.
func handleAuthenticate(r *Relay, p Peer, c *conn, payload json.RawMessage) {
	if c.identity != nil {
		r.send(p, message.CreateError("already authenticated"))
		return
	}

	var req message.AuthenticatePayload
	if err := json.Unmarshal(payload, &req); err != nil || req.UserID == "" || req.Username == "" {
		r.send(p, message.CreateError("authentication requires userId and username"))
		p.Close()
		return
	}

	if err := r.verifier.Verify(req.UserID, req.Username, req.Token); err != nil {
		r.log.Warn("handshake rejected",
			zap.String("userId", req.UserID),
			zap.Error(err))
		r.send(p, message.CreateError("invalid credentials"))
		p.Close()
		return
	}

	c.identity = &Identity{UserID: req.UserID, Username: req.Username}
	r.send(p, message.CreateAuthenticated(req.UserID, req.Username))

	r.log.Info("player authenticated",
		zap.String("userId", req.UserID),
		zap.String("username", req.Username))
}

// handleCreateSession aloca uma sessão nova com o chamador como único
// membro. O chamador já é membro inscrito ANTES do ack sair, então não há
// janela em que o ack chegue sem a inscrição estar valendo.
func handleCreateSession(r *Relay, p Peer, c *conn, payload json.RawMessage) {
	var req message.CreateSessionPayload
	if err := json.Unmarshal(payload, &req); err != nil || req.GameID == "" {
		r.send(p, message.CreateError("createGameSession requires gameId"))
		return
	}

	snap := r.registry.Create(req.GameID, *c.identity, p)
	r.send(p, message.CreateSessionCreated(snap))

	r.events.SessionCreated(platform.SessionEvent{
		SessionID: snap.ID,
		GameID:    snap.GameID,
		UserID:    c.identity.UserID,
		Players:   len(snap.Players),
	})

	r.log.Info("session created",
		zap.String("sessionId", snap.ID),
		zap.String("gameId", snap.GameID),
		zap.String("userId", c.identity.UserID))
}

// handleJoinSession inscreve o chamador e anuncia a entrada para todos os
// membros, incluindo quem acabou de entrar (a inscrição vem antes do
// broadcast). Sessão desconhecida devolve erro explícito em vez do silêncio.
func handleJoinSession(r *Relay, p Peer, c *conn, payload json.RawMessage) {
	var req message.JoinSessionPayload
	if err := json.Unmarshal(payload, &req); err != nil || req.SessionID == "" {
		r.send(p, message.CreateError("joinGameSession requires sessionId"))
		return
	}

	snap, peers, joined, err := r.registry.Join(req.SessionID, *c.identity, p)
	if err != nil {
		r.send(p, message.CreateError("session not found: %s", req.SessionID))
		return
	}

	msg := message.CreatePlayerJoined(snap, *c.identity)
	if joined {
		r.broadcast(peers, msg)
		r.events.SessionJoined(platform.SessionEvent{
			SessionID: snap.ID,
			GameID:    snap.GameID,
			UserID:    c.identity.UserID,
			Players:   len(snap.Players),
		})
		r.log.Info("player joined session",
			zap.String("sessionId", snap.ID),
			zap.String("userId", c.identity.UserID))
	} else {
		// Reentrada do mesmo userId: no-op idempotente na composição, mas o
		// chamador recebe o snapshot para ressincronizar o estado.
		r.send(p, msg)
	}
}

// handleStateUpdate faz o merge raso do patch e reenvia o estado COMPLETO
// para todos os membros, incluindo quem mandou. Broadcast de estado cheio é
// a política escolhida: gasta banda para que o cliente nunca precise de
// lógica de merge de deltas.
func handleStateUpdate(r *Relay, p Peer, c *conn, payload json.RawMessage) {
	var req message.StateUpdatePayload
	if err := json.Unmarshal(payload, &req); err != nil || req.SessionID == "" || req.State == nil {
		r.send(p, message.CreateError("gameStateUpdate requires sessionId and state"))
		return
	}

	if !c.stateLimiter.Allow() {
		r.send(p, message.CreateError("state update rate limit exceeded"))
		return
	}

	state, peers, err := r.registry.MergeState(req.SessionID, req.State)
	if err != nil {
		r.send(p, message.CreateError("session not found: %s", req.SessionID))
		return
	}

	r.broadcast(peers, message.CreateStateSync(state))
}

// handleChat é fan-out puro: sem persistência, eco para o remetente, ordem
// de entrega igual à ordem de processamento.
func handleChat(r *Relay, p Peer, c *conn, payload json.RawMessage) {
	var req message.ChatPayload
	if err := json.Unmarshal(payload, &req); err != nil || req.SessionID == "" || req.Message == "" {
		r.send(p, message.CreateError("chatMessage requires sessionId and message"))
		return
	}

	if !c.chatLimiter.Allow() {
		r.send(p, message.CreateError("chat rate limit exceeded"))
		return
	}

	peers, err := r.registry.Members(req.SessionID)
	if err != nil {
		r.send(p, message.CreateError("session not found: %s", req.SessionID))
		return
	}

	r.broadcast(peers, message.CreateChat(c.identity.UserID, c.identity.Username, req.Message, req.Kind))
}

// handleLeaveSession remove o chamador e avisa quem ficou. A saída do
// último membro fecha a sessão na hora.
func handleLeaveSession(r *Relay, p Peer, c *conn, payload json.RawMessage) {
	var req message.LeaveSessionPayload
	if err := json.Unmarshal(payload, &req); err != nil || req.SessionID == "" {
		r.send(p, message.CreateError("leaveSession requires sessionId"))
		return
	}

	res, err := r.registry.Leave(req.SessionID, c.identity.UserID, p)
	if err != nil {
		r.send(p, message.CreateError("session not found: %s", req.SessionID))
		return
	}

	r.broadcast(res.Peers, message.CreatePlayerLeft(res.Snapshot, c.identity.UserID))
	r.publishLeft(res, c.identity.UserID)

	r.log.Info("player left session",
		zap.String("sessionId", res.Snapshot.ID),
		zap.String("userId", c.identity.UserID),
		zap.Bool("closed", res.Closed))
}
