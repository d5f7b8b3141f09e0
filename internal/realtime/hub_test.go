package realtime

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drainMessage(t *testing.T, c *Client) *Message {
	t.Helper()
	select {
	case data := <-c.send:
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return &msg
	default:
		t.Fatal("expected a queued message")
		return nil
	}
}

func TestAddClient_SendsWelcomeThenState(t *testing.T) {
	hub := NewHub()
	client := NewClient(hub, nil, "user_a", "Ada", "cnv_1", "client_1")

	hub.addClient(client)

	welcome := drainMessage(t, client)
	assert.Equal(t, TypeWelcome, welcome.Type)

	var payload WelcomePayload
	require.NoError(t, json.Unmarshal(welcome.Payload, &payload))
	assert.Equal(t, "client_1", payload.ClientID)
	assert.Equal(t, "cnv_1", payload.CanvasID)
	assert.Equal(t, 1, payload.Viewers)

	state := drainMessage(t, client)
	assert.Equal(t, TypePresenceState, state.Type)
}

func TestWelcomeCountsAllViewers(t *testing.T) {
	hub := NewHub()
	first := NewClient(hub, nil, "user_a", "Ada", "cnv_1", "client_1")
	second := NewClient(hub, nil, "user_b", "Bo", "cnv_1", "client_2")

	hub.addClient(first)
	hub.addClient(second)

	welcome := drainMessage(t, second)
	var payload WelcomePayload
	require.NoError(t, json.Unmarshal(welcome.Payload, &payload))
	assert.Equal(t, 2, payload.Viewers)
}

func TestPresenceKeyedByClientID(t *testing.T) {
	// The same user in two tabs is two presences.
	pm := NewPresenceManager()
	pm.Update("client_1", &PresencePayload{DisplayName: "Ada"})
	pm.Update("client_2", &PresencePayload{DisplayName: "Ada"})

	assert.Equal(t, 2, pm.Count())

	pm.Remove("client_1")
	assert.Equal(t, 1, pm.Count())

	all := pm.GetAll()
	_, ok := all["client_2"]
	assert.True(t, ok)
}

func TestSendAfterDisconnectDoesNotPanic(t *testing.T) {
	hub := NewHub()
	client := NewClient(hub, nil, "user_a", "Ada", "cnv_1", "client_1")

	hub.addClient(client)
	hub.removeClient(client)

	// A broadcast that snapshotted the client before removal still delivers
	// into its send channel; the channel must stay open.
	assert.NotPanics(t, func() {
		client.Send(&Message{Type: TypePresenceUpdate})
	})

	hub.mu.RLock()
	_, roomAlive := hub.rooms["cnv_1"]
	hub.mu.RUnlock()
	assert.False(t, roomAlive, "empty rooms are reaped")
}

func TestLayoutApplied_ReachesRoomClients(t *testing.T) {
	hub := NewHub()
	client := NewClient(hub, nil, "user_a", "Ada", "cnv_1", "client_1")
	hub.addClient(client)
	drainMessage(t, client) // welcome
	drainMessage(t, client) // presence state

	hub.LayoutApplied("cnv_1", map[string]interface{}{"feature": "auto-nest", "version": 2})

	msg := drainMessage(t, client)
	assert.Equal(t, TypeLayoutApplied, msg.Type)
	assert.Equal(t, "cnv_1", msg.CanvasID)
}
