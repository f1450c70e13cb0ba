package relay

import (
	"encoding/json"
	"time"

	"gamerelay/internal/network"
)

// Identity é o par (userId, username) vinculado a uma conexão após o handshake.
type Identity struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// Peer é o que o relay precisa saber sobre uma conexão para falar com ela.
// *network.Client satisfaz a interface; os testes usam fakes com canais.
type Peer interface {
	Send() chan<- network.Message
	Close() error
}

// Session é uma partida viva em memória: a referência do jogo, os membros
// atuais e o último estado compartilhado conhecido.
type Session struct {
	id      string
	gameID  string
	players []Identity                 // ordenado, único por UserID
	state   map[string]json.RawMessage // last-write-wins por chave
	members map[Peer]Identity          // o grupo de broadcast

	// lastActive é tocado por toda operação na sessão e alimenta a varredura
	// de sessões ociosas.
	lastActive time.Time
}

// Snapshot é a visão serializável de uma sessão, como vai nos payloads.
// Os clientes só enxergam snapshots, nunca os internos da tabela.
type Snapshot struct {
	ID      string                     `json:"id"`
	GameID  string                     `json:"gameId"`
	Players []Identity                 `json:"players"`
	State   map[string]json.RawMessage `json:"state"`
}

func (s *Session) hasPlayer(userID string) bool {
	for _, p := range s.players {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

func (s *Session) removePlayer(userID string) {
	for i, p := range s.players {
		if p.UserID == userID {
			s.players = append(s.players[:i], s.players[i+1:]...)
			return
		}
	}
}

// snapshot copia players e state para fora da sessão. Depois que o lock do
// registry é solto, o snapshot pode ser serializado sem corrida.
func (s *Session) snapshot() Snapshot {
	players := make([]Identity, len(s.players))
	copy(players, s.players)

	state := make(map[string]json.RawMessage, len(s.state))
	for k, v := range s.state {
		state[k] = v
	}

	return Snapshot{
		ID:      s.id,
		GameID:  s.gameID,
		Players: players,
		State:   state,
	}
}

func (s *Session) peers() []Peer {
	out := make([]Peer, 0, len(s.members))
	for p := range s.members {
		out = append(out, p)
	}
	return out
}
