package network

import (
	"encoding/json"
)

// Message é o envelope padrão para toda a comunicação com os clientes.
// Ele contém um tipo para roteamento e um payload com os dados.
// As struct tags como json:"type" mantêm a convenção do lado javascript.
type Message struct {
	Type    string          `json:"type"`    // Ex: "joinGameSession", "gameStateSync"
	Payload json.RawMessage `json:"payload"` // Dados específicos, decodificados depois pelo relay.
}

// MaxMessageSize limita o tamanho de uma mensagem vinda do cliente.
// Mensagens maiores derrubam a conexão (comportamento do gorilla com SetReadLimit).
const MaxMessageSize = 64 * 1024
