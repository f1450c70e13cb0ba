// gamerelay/cmd/probe/main.go
//
// Cliente de terminal para bater no relay durante o desenvolvimento.
// Comandos:
//
//	auth <userId> <username> [token]
//	create <gameId>
//	join <sessionId>
//	state <sessionId> <key> <x> <y>
//	say <sessionId> <texto...>
//	leave <sessionId>
//	quit
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"

	"gamerelay/internal/network"
	"gamerelay/internal/relay/message"
)

func main() {
	addr := os.Getenv("RELAY_ADDR")
	if addr == "" {
		addr = "localhost:5001"
	}

	u := url.URL{Scheme: "ws", Host: addr, Path: "/ws"}
	log.Printf("Conectando em %s", u.String())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Falha ao conectar: %v", err)
	}
	defer conn.Close()

	// Imprime tudo que o relay mandar, do jeito que veio.
	go func() {
		for {
			var msg network.Message
			if err := conn.ReadJSON(&msg); err != nil {
				log.Printf("Conexão encerrada: %v", err)
				os.Exit(0)
			}
			fmt.Printf("<< %s %s\n", msg.Type, string(msg.Payload))
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		msg, ok := buildMessage(fields)
		if !ok {
			continue
		}
		if msg.Type == "" {
			return // quit
		}

		if err := conn.WriteJSON(msg); err != nil {
			log.Fatalf("Falha de escrita: %v", err)
		}
	}
}

func buildMessage(fields []string) (network.Message, bool) {
	send := func(msgType string, payload any) (network.Message, bool) {
		raw, _ := json.Marshal(payload)
		return network.Message{Type: msgType, Payload: raw}, true
	}

	switch fields[0] {
	case "auth":
		if len(fields) < 3 {
			fmt.Println("uso: auth <userId> <username> [token]")
			return network.Message{}, false
		}
		p := message.AuthenticatePayload{UserID: fields[1], Username: fields[2]}
		if len(fields) > 3 {
			p.Token = fields[3]
		}
		return send(message.TypeAuthenticate, p)

	case "create":
		if len(fields) != 2 {
			fmt.Println("uso: create <gameId>")
			return network.Message{}, false
		}
		return send(message.TypeCreateSession, message.CreateSessionPayload{GameID: fields[1]})

	case "join":
		if len(fields) != 2 {
			fmt.Println("uso: join <sessionId>")
			return network.Message{}, false
		}
		return send(message.TypeJoinSession, message.JoinSessionPayload{SessionID: fields[1]})

	case "state":
		if len(fields) != 5 {
			fmt.Println("uso: state <sessionId> <key> <x> <y>")
			return network.Message{}, false
		}
		x, errX := strconv.Atoi(fields[3])
		y, errY := strconv.Atoi(fields[4])
		if errX != nil || errY != nil {
			fmt.Println("x e y precisam ser inteiros")
			return network.Message{}, false
		}
		pos, _ := json.Marshal(map[string]int{"x": x, "y": y})
		return send(message.TypeStateUpdate, message.StateUpdatePayload{
			SessionID: fields[1],
			State:     map[string]json.RawMessage{fields[2]: pos},
		})

	case "say":
		if len(fields) < 3 {
			fmt.Println("uso: say <sessionId> <texto...>")
			return network.Message{}, false
		}
		return send(message.TypeChat, message.ChatPayload{
			SessionID: fields[1],
			Message:   strings.Join(fields[2:], " "),
		})

	case "leave":
		if len(fields) != 2 {
			fmt.Println("uso: leave <sessionId>")
			return network.Message{}, false
		}
		return send(message.TypeLeaveSession, message.LeaveSessionPayload{SessionID: fields[1]})

	case "quit":
		return network.Message{}, true

	default:
		fmt.Printf("Comando desconhecido: %s\n", fields[0])
		return network.Message{}, false
	}
}
