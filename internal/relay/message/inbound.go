package message

import (
	"encoding/json"
)

// Payloads das mensagens cliente -> relay.
// Cada operação decodifica o json.RawMessage do envelope para uma destas structs.

// AuthenticatePayload é o handshake de identidade, obrigatório antes de
// qualquer outra operação. Token é opcional quando o relay roda em modo guest.
type AuthenticatePayload struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Token    string `json:"token,omitempty"`
}

type CreateSessionPayload struct {
	GameID string `json:"gameId"`
}

type JoinSessionPayload struct {
	SessionID string `json:"sessionId"`
}

// StateUpdatePayload carrega um patch de estado. As chaves são opacas para o
// relay (tipicamente o username de quem atualiza), os valores também.
type StateUpdatePayload struct {
	SessionID string                     `json:"sessionId"`
	State     map[string]json.RawMessage `json:"state"`
}

type ChatPayload struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
	Kind      string `json:"type,omitempty"`
}

type LeaveSessionPayload struct {
	SessionID string `json:"sessionId"`
}
