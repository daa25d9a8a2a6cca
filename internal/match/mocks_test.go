package match_test

import (
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockStore — мок хранилища матчей на testify/mock.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) UserExists(id uuid.UUID) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) CreateRequest(requesterID, targetID uuid.UUID) error {
	args := m.Called(requesterID, targetID)
	return args.Error(0)
}

func (m *MockStore) HasPendingRequest(requesterID, targetID uuid.UUID) (bool, error) {
	args := m.Called(requesterID, targetID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) DeleteRequest(requesterID, targetID uuid.UUID) (bool, error) {
	args := m.Called(requesterID, targetID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) ActiveRoom(userA, userB uuid.UUID) (uuid.UUID, bool, error) {
	args := m.Called(userA, userB)
	return args.Get(0).(uuid.UUID), args.Bool(1), args.Error(2)
}

func (m *MockStore) Consummate(userA, userB uuid.UUID) (uuid.UUID, error) {
	args := m.Called(userA, userB)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

// recordedEvent — одно записанное уведомление.
type recordedEvent struct {
	Kind   string // "request_received" или "mutual_match"
	UserID uuid.UUID
	FromID uuid.UUID
	RoomID uuid.UUID
}

// RecordingNotifier собирает уведомления; потокобезопасен, чтобы его можно
// было использовать и в конкурентных тестах.
type RecordingNotifier struct {
	mu     sync.Mutex
	Events []recordedEvent
}

func (n *RecordingNotifier) MatchRequestReceived(targetID, fromID uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Events = append(n.Events, recordedEvent{Kind: "request_received", UserID: targetID, FromID: fromID})
}

func (n *RecordingNotifier) MutualMatch(userID, otherID, roomID uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Events = append(n.Events, recordedEvent{Kind: "mutual_match", UserID: userID, FromID: otherID, RoomID: roomID})
}

func (n *RecordingNotifier) MutualMatches() []recordedEvent {
	n.mu.Lock()
	defer n.mu.Unlock()

	var events []recordedEvent
	for _, e := range n.Events {
		if e.Kind == "mutual_match" {
			events = append(events, e)
		}
	}
	return events
}
