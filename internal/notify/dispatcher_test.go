package notify_test

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinematch/backend/internal/notify"
	ws "cinematch/backend/internal/websocket"
)

// fakeSink записывает доставленные сообщения по адресатам.
type fakeSink struct {
	deliveries map[uuid.UUID][][]byte
}

func newFakeSink() *fakeSink {
	return &fakeSink{deliveries: make(map[uuid.UUID][][]byte)}
}

func (s *fakeSink) SendToUser(userID uuid.UUID, message []byte) {
	s.deliveries[userID] = append(s.deliveries[userID], message)
}

// TestMatchRequestReceivedDelivery verifies the shape of the pending-request
// push: correct type, correct recipient, sender ID in the payload.
func TestMatchRequestReceivedDelivery(t *testing.T) {
	sink := newFakeSink()
	dispatcher := notify.NewDispatcher(sink, nil)

	target, from := uuid.New(), uuid.New()
	dispatcher.MatchRequestReceived(target, from)

	require.Len(t, sink.deliveries[target], 1)

	var msg ws.Message
	require.NoError(t, json.Unmarshal(sink.deliveries[target][0], &msg))
	assert.Equal(t, ws.TypeMatchRequestReceived, msg.Type)
	assert.Equal(t, target, msg.UserID)

	var payload struct {
		FromUserID uuid.UUID `json:"from_user_id"`
	}
	require.NoError(t, json.Unmarshal(msg.Data, &payload))
	assert.Equal(t, from, payload.FromUserID)
}

// TestMutualMatchDelivery verifies the mutual-match push payload: the new
// room and the counterpart's ID.
func TestMutualMatchDelivery(t *testing.T) {
	sink := newFakeSink()
	dispatcher := notify.NewDispatcher(sink, nil)

	userID, otherID, roomID := uuid.New(), uuid.New(), uuid.New()
	dispatcher.MutualMatch(userID, otherID, roomID)

	require.Len(t, sink.deliveries[userID], 1)
	assert.Empty(t, sink.deliveries[otherID], "Each call targets exactly one side")

	var msg ws.Message
	require.NoError(t, json.Unmarshal(sink.deliveries[userID][0], &msg))
	assert.Equal(t, ws.TypeMutualMatch, msg.Type)

	var payload struct {
		RoomID      uuid.UUID `json:"room_id"`
		OtherUserID uuid.UUID `json:"other_user_id"`
	}
	require.NoError(t, json.Unmarshal(msg.Data, &payload))
	assert.Equal(t, roomID, payload.RoomID)
	assert.Equal(t, otherID, payload.OtherUserID)
}
