package websocket_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ws "cinematch/backend/internal/websocket"
)

func startHub(t *testing.T) *ws.Hub {
	t.Helper()
	hub := ws.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)
	return hub
}

func registerClient(t *testing.T, hub *ws.Hub, userID uuid.UUID) *ws.Client {
	t.Helper()
	client := ws.NewClient(hub, nil, userID)
	hub.Register(client)
	require.Eventually(t, func() bool {
		return hub.IsUserOnline(userID)
	}, time.Second, 5*time.Millisecond)
	return client
}

// TestSendToUserReachesAllSessions verifies fan-out: a user with two live
// sessions gets the message on both, other users get nothing.
func TestSendToUserReachesAllSessions(t *testing.T) {
	hub := startHub(t)

	userA, userB := uuid.New(), uuid.New()
	sessionA1 := registerClient(t, hub, userA)
	sessionA2 := registerClient(t, hub, userA)
	sessionB := registerClient(t, hub, userB)

	payload := []byte(`{"type":"mutual_match"}`)
	hub.SendToUser(userA, payload)

	for _, session := range []*ws.Client{sessionA1, sessionA2} {
		select {
		case got := <-session.Send:
			assert.Equal(t, payload, got)
		case <-time.After(time.Second):
			t.Fatalf("session %s did not receive the message", session.ID)
		}
	}

	select {
	case <-sessionB.Send:
		t.Fatal("message leaked to another user's session")
	default:
	}
}

// TestSendToOfflineUserIsDropped: no sessions, no panic, nothing queued.
func TestSendToOfflineUserIsDropped(t *testing.T) {
	hub := startHub(t)

	offline := uuid.New()
	assert.False(t, hub.IsUserOnline(offline))
	hub.SendToUser(offline, []byte(`{}`))
}

// TestRoomMembershipAndBroadcast verifies room join/leave bookkeeping and
// that room broadcasts reach only joined sessions.
func TestRoomMembershipAndBroadcast(t *testing.T) {
	hub := startHub(t)

	userA, userB := uuid.New(), uuid.New()
	clientA := registerClient(t, hub, userA)
	clientB := registerClient(t, hub, userB)

	roomID := uuid.New()
	hub.JoinRoom(clientA, roomID)
	hub.JoinRoom(clientB, roomID)

	assert.True(t, clientA.IsInRoom(roomID))
	assert.ElementsMatch(t, []uuid.UUID{userA, userB}, hub.GetRoomUsers(roomID))

	// A получил уведомление room_join о входе B — вычитываем его
	<-clientA.Send

	payload := []byte(`{"type":"message"}`)
	hub.SendToRoom(roomID, payload)
	assert.Equal(t, payload, <-clientA.Send)
	assert.Equal(t, payload, <-clientB.Send)

	hub.LeaveRoom(clientB, roomID)
	assert.False(t, clientB.IsInRoom(roomID))
	assert.ElementsMatch(t, []uuid.UUID{userA}, hub.GetRoomUsers(roomID))
}

// TestUnregisterDropsSessions verifies that unregistering one session keeps
// the user online while another session remains.
func TestUnregisterDropsSessions(t *testing.T) {
	hub := startHub(t)

	userID := uuid.New()
	session1 := registerClient(t, hub, userID)
	session2 := registerClient(t, hub, userID)

	hub.Unregister(session1)
	require.Eventually(t, func() bool {
		_, open := <-session1.Send
		return !open
	}, time.Second, 5*time.Millisecond)
	assert.True(t, hub.IsUserOnline(userID), "Second session keeps the user online")

	hub.Unregister(session2)
	require.Eventually(t, func() bool {
		return !hub.IsUserOnline(userID)
	}, time.Second, 5*time.Millisecond)
}
