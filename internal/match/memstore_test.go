package match_test

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinematch/backend/internal/match"
	"cinematch/backend/internal/models"
)

// memStore — эталонная реализация match.Store в памяти. Повторяет
// гарантии Postgres-слоя: уникальность направленной заявки, уникальный
// pair_key комнаты, атомарная консумация под общим мьютексом.
type memStore struct {
	mu       sync.Mutex
	users    map[uuid.UUID]bool
	requests map[string]bool      // "requester:target"
	rooms    map[string]uuid.UUID // pair_key -> roomID
	members  map[uuid.UUID]map[uuid.UUID]bool
}

func newMemStore(users ...uuid.UUID) *memStore {
	s := &memStore{
		users:    make(map[uuid.UUID]bool),
		requests: make(map[string]bool),
		rooms:    make(map[string]uuid.UUID),
		members:  make(map[uuid.UUID]map[uuid.UUID]bool),
	}
	for _, u := range users {
		s.users[u] = true
	}
	return s
}

func requestKey(requesterID, targetID uuid.UUID) string {
	return requesterID.String() + ":" + targetID.String()
}

func (s *memStore) UserExists(id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id], nil
}

func (s *memStore) CreateRequest(requesterID, targetID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := requestKey(requesterID, targetID)
	if s.requests[key] {
		return match.ErrRequestExists
	}
	s.requests[key] = true
	return nil
}

func (s *memStore) HasPendingRequest(requesterID, targetID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[requestKey(requesterID, targetID)], nil
}

func (s *memStore) DeleteRequest(requesterID, targetID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := requestKey(requesterID, targetID)
	if !s.requests[key] {
		return false, nil
	}
	delete(s.requests, key)
	return true, nil
}

func (s *memStore) ActiveRoom(userA, userB uuid.UUID) (uuid.UUID, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeRoomLocked(userA, userB)
}

func (s *memStore) activeRoomLocked(userA, userB uuid.UUID) (uuid.UUID, bool, error) {
	roomID, ok := s.rooms[models.PairKey(userA, userB)]
	if !ok {
		return uuid.Nil, false, nil
	}
	if !s.members[roomID][userA] || !s.members[roomID][userB] {
		return uuid.Nil, false, nil
	}
	return roomID, true, nil
}

func (s *memStore) Consummate(userA, userB uuid.UUID) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pairKey := models.PairKey(userA, userB)
	if roomID, ok := s.rooms[pairKey]; ok {
		if s.members[roomID][userA] && s.members[roomID][userB] {
			return uuid.Nil, match.ErrAlreadyMatched
		}
		// Пара сходится заново: оживляем старую комнату
		s.members[roomID][userA] = true
		s.members[roomID][userB] = true
		delete(s.requests, requestKey(userA, userB))
		delete(s.requests, requestKey(userB, userA))
		return roomID, nil
	}

	roomID := uuid.New()
	s.rooms[pairKey] = roomID
	s.members[roomID] = map[uuid.UUID]bool{userA: true, userB: true}
	delete(s.requests, requestKey(userA, userB))
	delete(s.requests, requestKey(userB, userA))
	return roomID, nil
}

func (s *memStore) leaveRoom(roomID, userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[roomID][userID] = false
}

func (s *memStore) roomCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}

func (s *memStore) requestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// TestMutualMatchScenario runs the full protocol end to end:
// A requests B, B requests A, then A resubmits.
func TestMutualMatchScenario(t *testing.T) {
	userA, userB := uuid.New(), uuid.New()
	store := newMemStore(userA, userB)
	notifier := &RecordingNotifier{}
	svc := match.NewService(store, notifier)

	// A -> B: одна сторона, pending
	result, err := svc.SubmitRequest(userA, userB)
	require.NoError(t, err)
	assert.False(t, result.Matched)

	statusA, _ := svc.StatusOf(userA, userB)
	statusB, _ := svc.StatusOf(userB, userA)
	assert.Equal(t, match.StatusPendingSent, statusA)
	assert.Equal(t, match.StatusPendingReceived, statusB)

	require.Len(t, notifier.Events, 1)
	assert.Equal(t, "request_received", notifier.Events[0].Kind)
	assert.Equal(t, userB, notifier.Events[0].UserID)
	assert.Equal(t, userA, notifier.Events[0].FromID)

	// B -> A: встречная заявка, консумация
	result, err = svc.SubmitRequest(userB, userA)
	require.NoError(t, err)
	require.True(t, result.Matched)
	roomID := result.RoomID
	assert.NotEqual(t, uuid.Nil, roomID)

	assert.Equal(t, 1, store.roomCount(), "Exactly one room for the pair")
	assert.Equal(t, 0, store.requestCount(), "Both requests consumed by the match")

	mutual := notifier.MutualMatches()
	require.Len(t, mutual, 2)
	recipients := map[uuid.UUID]uuid.UUID{}
	for _, e := range mutual {
		recipients[e.UserID] = e.RoomID
		assert.Equal(t, roomID, e.RoomID)
	}
	assert.Contains(t, recipients, userA)
	assert.Contains(t, recipients, userB)

	statusA, _ = svc.StatusOf(userA, userB)
	statusB, _ = svc.StatusOf(userB, userA)
	assert.Equal(t, match.StatusMatched, statusA)
	assert.Equal(t, match.StatusMatched, statusB)

	// Повторный вызов после матча идемпотентен
	result, err = svc.SubmitRequest(userA, userB)
	require.NoError(t, err)
	assert.True(t, result.Matched)
	assert.Equal(t, roomID, result.RoomID)
	assert.Equal(t, 1, store.roomCount(), "Resubmit must not create a second room")
}

// TestConcurrentConsummation fires N simultaneous consummating calls for the
// same pair: exactly one room, every call returns the same room ID.
func TestConcurrentConsummation(t *testing.T) {
	userA, userB := uuid.New(), uuid.New()
	store := newMemStore(userA, userB)
	svc := match.NewService(store, &RecordingNotifier{})

	// Обе встречные заявки уже существуют
	require.NoError(t, store.CreateRequest(userA, userB))
	require.NoError(t, store.CreateRequest(userB, userA))

	const callers = 32
	results := make([]match.Result, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				results[i], errs[i] = svc.SubmitRequest(userA, userB)
			} else {
				results[i], errs[i] = svc.SubmitRequest(userB, userA)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, store.roomCount(), "Exactly one room despite the race")

	roomID := results[0].RoomID
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i], "call %d", i)
		assert.True(t, results[i].Matched, "call %d", i)
		assert.Equal(t, roomID, results[i].RoomID, "call %d returned a different room", i)
	}
}

// TestRematchAfterLeaving verifies that a pair that split up gets their old
// room back only through a fresh mutual exchange.
func TestRematchAfterLeaving(t *testing.T) {
	userA, userB := uuid.New(), uuid.New()
	store := newMemStore(userA, userB)
	svc := match.NewService(store, &RecordingNotifier{})

	_, err := svc.SubmitRequest(userA, userB)
	require.NoError(t, err)
	result, err := svc.SubmitRequest(userB, userA)
	require.NoError(t, err)
	roomID := result.RoomID

	store.leaveRoom(roomID, userA)

	status, _ := svc.StatusOf(userA, userB)
	assert.Equal(t, match.StatusNone, status, "Pair is no longer matched after leaving")

	// Одна заявка пару не возвращает
	result, err = svc.SubmitRequest(userA, userB)
	require.NoError(t, err)
	assert.False(t, result.Matched)

	// Встречная заявка оживляет старую комнату, второй не появляется
	result, err = svc.SubmitRequest(userB, userA)
	require.NoError(t, err)
	require.True(t, result.Matched)
	assert.Equal(t, roomID, result.RoomID)
	assert.Equal(t, 1, store.roomCount())

	status, _ = svc.StatusOf(userA, userB)
	assert.Equal(t, match.StatusMatched, status)
}

// TestDeclineResetsPair verifies that declining drops the pending request and
// both sides project none again.
func TestDeclineResetsPair(t *testing.T) {
	userA, userB := uuid.New(), uuid.New()
	store := newMemStore(userA, userB)
	svc := match.NewService(store, &RecordingNotifier{})

	_, err := svc.SubmitRequest(userA, userB)
	require.NoError(t, err)

	ok, err := svc.Decline(userB, userA)
	require.NoError(t, err)
	assert.True(t, ok)

	statusA, _ := svc.StatusOf(userA, userB)
	statusB, _ := svc.StatusOf(userB, userA)
	assert.Equal(t, match.StatusNone, statusA)
	assert.Equal(t, match.StatusNone, statusB)
}
