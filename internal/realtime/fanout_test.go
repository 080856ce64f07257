package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campuslink/internal/domain"
)

type recordedBroadcast struct {
	room    string
	event   string
	payload any
}

type fakeBroadcaster struct {
	calls []recordedBroadcast
}

func (b *fakeBroadcaster) Broadcast(room, event string, payload any) {
	b.calls = append(b.calls, recordedBroadcast{room: room, event: event, payload: payload})
}

func TestConnectionRequestedTargetsReceiver(t *testing.T) {
	reg := &fakeBroadcaster{}
	f := &Fanout{Registry: reg}

	f.ConnectionRequested(domain.Connection{ID: "conn-1", SenderID: "user-1", ReceiverID: "user-2"})

	require.Len(t, reg.calls, 1)
	assert.Equal(t, UserRoom("user-2"), reg.calls[0].room)
	assert.Equal(t, EventConnectionRequestNew, reg.calls[0].event)
	assert.Equal(t, map[string]string{"connection_id": "conn-1", "sender_id": "user-1"}, reg.calls[0].payload)
}

func TestConnectionAcceptedTargetsOriginalSender(t *testing.T) {
	reg := &fakeBroadcaster{}
	f := &Fanout{Registry: reg}

	f.ConnectionAccepted(domain.Connection{ID: "conn-1", SenderID: "user-1", ReceiverID: "user-2"})

	require.Len(t, reg.calls, 1)
	assert.Equal(t, UserRoom("user-1"), reg.calls[0].room)
	assert.Equal(t, EventConnectionRequestAccepted, reg.calls[0].event)
}

func TestMessageCreatedTargetsConnectionRoom(t *testing.T) {
	reg := &fakeBroadcaster{}
	f := &Fanout{Registry: reg}

	msg := domain.Message{ID: 9, ConnectionID: "conn-1", SenderID: "user-1", Body: "hi"}
	f.MessageCreated(msg)

	require.Len(t, reg.calls, 1)
	assert.Equal(t, ConnectionRoom("conn-1"), reg.calls[0].room)
	assert.Equal(t, EventMessageNew, reg.calls[0].event)
	assert.Equal(t, msg, reg.calls[0].payload)
}
