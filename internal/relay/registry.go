package relay

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound indica que uma operação referenciou um sessionId que
// não existe (nunca criado, já fechado ou varrido por ociosidade).
var ErrSessionNotFound = errors.New("session not found")

// Registry é o dono exclusivo da tabela de sessões ativas. Nenhum outro
// componente muta uma sessão diretamente: tudo passa pelos métodos daqui.
//
// As operações de cliente chegam serializadas pela goroutine do Hub, mas a
// varredura de TTL e o health check rodam em goroutines próprias, então a
// tabela tem o próprio mutex.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

// LeaveResult descreve a saída de um membro: o snapshot já sem ele, os peers
// que ainda devem receber o broadcast de playerLeft e se a sessão fechou.
type LeaveResult struct {
	Snapshot Snapshot
	Peers    []Peer
	Closed   bool
}

// Create aloca uma sessão nova com o criador como único membro já inscrito
// no grupo de broadcast. Criações concorrentes do mesmo usuário produzem
// sessões independentes, de propósito: criação não é deduplicada.
func (r *Registry) Create(gameID string, owner Identity, p Peer) Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := &Session{
		id:         uuid.NewString(),
		gameID:     gameID,
		players:    []Identity{owner},
		state:      make(map[string]json.RawMessage),
		members:    map[Peer]Identity{p: owner},
		lastActive: time.Now(),
	}
	r.sessions[s.id] = s

	return s.snapshot()
}

// Join acrescenta ident à sessão. A inscrição do peer no grupo de broadcast
// acontece antes do retorno, então quem entra recebe o próprio playerJoined.
// joined=false significa que o userId já era membro (reentrada idempotente).
func (r *Registry) Join(id string, ident Identity, p Peer) (snap Snapshot, peers []Peer, joined bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return Snapshot{}, nil, false, ErrSessionNotFound
	}

	joined = !s.hasPlayer(ident.UserID)
	if joined {
		s.players = append(s.players, ident)
	}
	// Inscreve o peer de qualquer forma: uma reconexão do mesmo usuário
	// precisa voltar a receber os broadcasts.
	s.members[p] = ident
	s.lastActive = time.Now()

	return s.snapshot(), s.peers(), joined, nil
}

// MergeState aplica o patch com sobrescrita rasa por chave (last write wins)
// e devolve o estado completo resultante. Chaves não são validadas contra a
// lista de membros: chaves de quem já saiu persistem até a sessão fechar.
func (r *Registry) MergeState(id string, patch map[string]json.RawMessage) (state map[string]json.RawMessage, peers []Peer, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, nil, ErrSessionNotFound
	}

	for k, v := range patch {
		s.state[k] = v
	}
	s.lastActive = time.Now()

	snap := s.snapshot()
	return snap.State, s.peers(), nil
}

// Members devolve o grupo de broadcast atual da sessão (usado pelo chat,
// que não muta nada além do relógio de atividade).
func (r *Registry) Members(id string) ([]Peer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.lastActive = time.Now()
	return s.peers(), nil
}

// Leave desinscreve o peer e remove o jogador da sessão (no-op se ausente).
// Quando o último jogador sai, a sessão fecha e some da tabela na hora, em
// vez de vazar pela vida do processo.
func (r *Registry) Leave(id string, userID string, p Peer) (LeaveResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return LeaveResult{}, ErrSessionNotFound
	}

	res := r.leaveLocked(s, userID, p)
	return res, nil
}

func (r *Registry) leaveLocked(s *Session, userID string, p Peer) LeaveResult {
	delete(s.members, p)
	s.removePlayer(userID)
	s.lastActive = time.Now()

	if len(s.players) == 0 {
		delete(r.sessions, s.id)
		return LeaveResult{Snapshot: s.snapshot(), Closed: true}
	}

	return LeaveResult{Snapshot: s.snapshot(), Peers: s.peers()}
}

// DropPeer é o caminho da desconexão: uma saída implícita de TODAS as
// sessões das quais a identidade era membro, não só de uma "atual".
func (r *Registry) DropPeer(p Peer, userID string) []LeaveResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	var results []LeaveResult
	for _, s := range r.sessions {
		_, subscribed := s.members[p]
		if !subscribed && !s.hasPlayer(userID) {
			continue
		}
		results = append(results, r.leaveLocked(s, userID, p))
	}
	return results
}

// Sweep fecha sessões sem atividade há mais de ttl. Cobre sessões
// abandonadas sem um leave explícito (ex: processo do cliente morto depois
// da desconexão já ter limpado os membros de outras conexões).
func (r *Registry) Sweep(ttl time.Duration) []Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-ttl)
	var closed []Snapshot
	for id, s := range r.sessions {
		if s.lastActive.Before(cutoff) {
			closed = append(closed, s.snapshot())
			delete(r.sessions, id)
		}
	}
	return closed
}

// Len devolve o total de sessões ativas (health check).
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
