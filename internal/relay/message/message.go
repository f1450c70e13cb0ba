package message

// Tipos de evento que trafegam no envelope network.Message, nos dois sentidos.
// Os nomes seguem a convenção camelCase do cliente javascript.
const (
	// cliente -> relay
	TypeAuthenticate  = "authenticate"
	TypeCreateSession = "createGameSession"
	TypeJoinSession   = "joinGameSession"
	TypeStateUpdate   = "gameStateUpdate"
	TypeChat          = "chatMessage"
	TypeLeaveSession  = "leaveSession"

	// relay -> cliente
	TypeAuthenticated  = "authenticated"
	TypeSessionCreated = "sessionCreated"
	TypePlayerJoined   = "playerJoined"
	TypePlayerLeft     = "playerLeft"
	TypeStateSync      = "gameStateSync"
	TypeError          = "error"
	// chatMessage é simétrico: mesmo tipo nos dois sentidos.
)

// DefaultChatKind é o valor de "type" de um chat quando o cliente não manda nenhum.
const DefaultChatKind = "chat"
