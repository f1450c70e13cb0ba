package network

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Server é a porta de entrada websocket do relay. Ele gerencia um Hub.
type Server struct {
	hub *Hub
	log *zap.Logger
}

// upgrader armazena as configurações para promover uma conexão HTTP para websocket.
var upgrader = websocket.Upgrader{
	// Os clientes são browsers servidos por outro domínio (o web app da
	// plataforma), então aceitamos qualquer origem aqui e deixamos a
	// autenticação para o handshake do relay.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// NewServer aceita um EventHandler para passá-lo ao Hub.
// Este é o ponto de injeção da lógica do relay.
func NewServer(handler EventHandler, log *zap.Logger) *Server {
	return &Server{
		hub: NewHub(handler),
		log: log,
	}
}

// wsHandler lida com a requisição HTTP e a promove para uma conexão websocket.
func (s *Server) wsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		conn: conn,
		hub:  s.hub,
		send: make(chan Message, 256),
		log:  s.log,
	}

	// Registra o novo cliente no Hub antes de iniciar as goroutines,
	// para que o OnConnect aconteça antes de qualquer mensagem.
	client.hub.register <- client

	go client.writeLoop()
	go client.readLoop()
}

// Listen inicia a goroutine do Hub, registra a rota /ws no mux fornecido e
// sobe o servidor HTTP. Bloqueia até o servidor cair.
func (s *Server) Listen(address string, mux *http.ServeMux) error {
	go s.hub.Run()

	mux.HandleFunc("/ws", s.wsHandler)

	s.log.Info("websocket server listening", zap.String("addr", address), zap.String("path", "/ws"))

	return http.ListenAndServe(address, mux)
}
