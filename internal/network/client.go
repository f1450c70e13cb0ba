package network

import (
	"net"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Tempo para aguardar por uma escrita na conexão.
	writeWait = 10 * time.Second

	// Tempo máximo para aguardar por uma resposta de pong do cliente.
	pongWait = 60 * time.Second

	// Frequência com que enviamos pings para o cliente. Deve ser menor que pongWait.
	pingPeriod = (pongWait * 9) / 10
)

// Client é a representação de uma conexão do ponto de vista do servidor.
// Ele agrupa a conexão websocket e os canais de comunicação.
type Client struct {
	// A conexão websocket real com o jogador.
	conn *websocket.Conn

	// Uma referência ao Hub central. O cliente usa isso para se (des)registrar.
	hub *Hub

	// Um canal bufferizado para mensagens de saída.
	// O relay coloca as mensagens aqui, e a goroutine writeLoop as envia.
	// O buffer evita que o relay bloqueie se o cliente estiver lento.
	send chan Message

	log *zap.Logger
}

// Conn retorna a conexão net.Conn subjacente do cliente.
// Útil para obter o endereço remoto em logs.
func (c *Client) Conn() net.Conn {
	return c.conn.UnderlyingConn()
}

// Send retorna o canal de saída do cliente.
func (c *Client) Send() chan<- Message {
	return c.send
}

// Close encerra a conexão do cliente. O readLoop percebe o fechamento e
// dispara o fluxo normal de desregistro no Hub, então a limpeza acontece
// uma única vez, pelo mesmo caminho de uma desconexão espontânea.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) readLoop() {
	// Garante que a limpeza ocorrerá quando o loop terminar.
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(MaxMessageSize)
	// Configura um deadline para a próxima mensagem de pong.
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	// O handler de pong atualiza o read deadline, mantendo a conexão viva.
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn("unexpected close from client",
					zap.String("remoteAddr", c.conn.RemoteAddr().String()),
					zap.Error(err))
			}
			// Para qualquer erro (desconexão normal ou anormal), saímos do loop.
			break
		}

		c.hub.incoming <- clientMessage{client: c, msg: msg}
	}
}

// writeLoop bombeia mensagens do canal 'send' do cliente para a conexão websocket.
func (c *Client) writeLoop() {
	// Ticker para enviar pings periódicos para o cliente.
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			// O canal 'send' foi fechado pelo Hub: o cliente foi desregistrado.
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(msg); err != nil {
				c.log.Debug("write failed",
					zap.String("remoteAddr", c.conn.RemoteAddr().String()),
					zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return // Se o ping falhar, a conexão está morta.
			}
		}
	}
}
