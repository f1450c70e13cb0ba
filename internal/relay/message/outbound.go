package message

// Isso aqui são as mensagens que vão no sentido relay -> cliente.

import (
	"encoding/json"
	"fmt"

	"gamerelay/internal/network"
)

type AuthenticatedClientPayload struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// SessionCreatedClientPayload é o ack de criação, entregue só ao criador.
type SessionCreatedClientPayload struct {
	Success bool `json:"success"`
	Session any  `json:"session"`
}

type PlayerJoinedClientPayload struct {
	Session any `json:"session"`
	Player  any `json:"player"`
}

type PlayerLeftClientPayload struct {
	Session any    `json:"session"`
	UserID  string `json:"userId"`
}

// StateSyncClientPayload carrega o estado COMPLETO da sessão após o merge,
// não só o delta. O cliente trata cada sync como estado autoritativo.
type StateSyncClientPayload struct {
	State map[string]json.RawMessage `json:"state"`
}

type ChatClientPayload struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Message  string `json:"message"`
	Kind     string `json:"type"`
}

// ErrorClientPayload define a estrutura de uma resposta de erro.
type ErrorClientPayload struct {
	Message string `json:"message"`
}

func envelope(msgType string, payload any) network.Message {
	payloadBytes, _ := json.Marshal(payload)
	return network.Message{
		Type:    msgType,
		Payload: payloadBytes,
	}
}

func CreateAuthenticated(userID, username string) network.Message {
	return envelope(TypeAuthenticated, AuthenticatedClientPayload{
		UserID:   userID,
		Username: username,
	})
}

func CreateSessionCreated(session any) network.Message {
	return envelope(TypeSessionCreated, SessionCreatedClientPayload{
		Success: true,
		Session: session,
	})
}

func CreatePlayerJoined(session, player any) network.Message {
	return envelope(TypePlayerJoined, PlayerJoinedClientPayload{
		Session: session,
		Player:  player,
	})
}

func CreatePlayerLeft(session any, userID string) network.Message {
	return envelope(TypePlayerLeft, PlayerLeftClientPayload{
		Session: session,
		UserID:  userID,
	})
}

func CreateStateSync(state map[string]json.RawMessage) network.Message {
	return envelope(TypeStateSync, StateSyncClientPayload{State: state})
}

func CreateChat(userID, username, text, kind string) network.Message {
	if kind == "" {
		kind = DefaultChatKind
	}
	return envelope(TypeChat, ChatClientPayload{
		UserID:   userID,
		Username: username,
		Message:  text,
		Kind:     kind,
	})
}

// CreateError monta a resposta de erro enviada só para quem causou o problema.
func CreateError(format string, args ...any) network.Message {
	return envelope(TypeError, ErrorClientPayload{
		Message: fmt.Sprintf(format, args...),
	})
}
