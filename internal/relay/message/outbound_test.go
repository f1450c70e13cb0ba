package message

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateChatDefaultsKind(t *testing.T) {
	msg := CreateChat("u1", "Alice", "hello", "")
	require.Equal(t, TypeChat, msg.Type)

	var payload ChatClientPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, DefaultChatKind, payload.Kind)
	assert.Equal(t, "hello", payload.Message)
}

func TestCreateChatKeepsExplicitKind(t *testing.T) {
	msg := CreateChat("u1", "Alice", "gg", "system")

	var payload ChatClientPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, "system", payload.Kind)
}

func TestCreateErrorFormats(t *testing.T) {
	msg := CreateError("session not found: %s", "abc")
	require.Equal(t, TypeError, msg.Type)

	var payload ErrorClientPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, "session not found: abc", payload.Message)
}

func TestCreateSessionCreatedEnvelope(t *testing.T) {
	session := map[string]any{"id": "s1", "gameId": "g1"}
	msg := CreateSessionCreated(session)
	require.Equal(t, TypeSessionCreated, msg.Type)

	var payload struct {
		Success bool `json:"success"`
		Session struct {
			ID     string `json:"id"`
			GameID string `json:"gameId"`
		} `json:"session"`
	}
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.True(t, payload.Success)
	assert.Equal(t, "s1", payload.Session.ID)
	assert.Equal(t, "g1", payload.Session.GameID)
}

func TestCreateStateSyncCarriesState(t *testing.T) {
	state := map[string]json.RawMessage{
		"Alice": json.RawMessage(`{"x":1,"y":2}`),
	}
	msg := CreateStateSync(state)
	require.Equal(t, TypeStateSync, msg.Type)

	var payload StateSyncClientPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.JSONEq(t, `{"x":1,"y":2}`, string(payload.State["Alice"]))
}
