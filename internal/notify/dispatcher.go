package notify

import (
	"context"
	"encoding/json"
	"log"
	"time"

	ws "cinematch/backend/internal/websocket"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// Канал Redis Pub/Sub для событий матчинга между инстансами сервиса.
const eventsChannel = "cinematch:events"

// Sink доставляет событие живым сессиям пользователя.
type Sink interface {
	SendToUser(userID uuid.UUID, message []byte)
}

// Dispatcher — best-effort доставка событий матчинга. Вызывается строго
// после коммита транзакции; ошибки доставки глотает: для корректности
// матча пуш не обязателен, недоставленное событие просто теряется.
//
// При нескольких инстансах сессия адресата может висеть на соседнем
// процессе, поэтому события публикуются в Redis Pub/Sub, а слушатель
// каждого инстанса раздает их своим локальным сессиям. Без Redis
// (rdb == nil, как в тестах) доставка только локальная.
type Dispatcher struct {
	sink Sink
	rdb  *redis.Client
}

// envelope — обертка события в Pub/Sub: кому и что доставить.
type envelope struct {
	TargetID uuid.UUID       `json:"target_id"`
	Message  json.RawMessage `json:"message"`
}

type requestReceivedPayload struct {
	FromUserID uuid.UUID `json:"from_user_id"`
}

type mutualMatchPayload struct {
	RoomID      uuid.UUID `json:"room_id"`
	OtherUserID uuid.UUID `json:"other_user_id"`
}

func NewDispatcher(sink Sink, rdb *redis.Client) *Dispatcher {
	return &Dispatcher{sink: sink, rdb: rdb}
}

// Run запускает слушателя Pub/Sub, который раздает опубликованные события
// локальным сессиям. Завершается по ctx.
func (d *Dispatcher) Run(ctx context.Context) {
	if d.rdb == nil {
		return
	}

	go func() {
		pubsub := d.rdb.Subscribe(ctx, eventsChannel)
		defer pubsub.Close()

		for msg := range pubsub.Channel() {
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.Printf("Bad event envelope: %v", err)
				continue
			}
			d.sink.SendToUser(env.TargetID, env.Message)
		}
	}()
}

// MatchRequestReceived — пуш адресату входящей заявки.
func (d *Dispatcher) MatchRequestReceived(targetID, fromID uuid.UUID) {
	d.send(targetID, ws.TypeMatchRequestReceived, requestReceivedPayload{FromUserID: fromID})
}

// MutualMatch — пуш одной из сторон взаимного матча.
func (d *Dispatcher) MutualMatch(userID, otherID, roomID uuid.UUID) {
	d.send(userID, ws.TypeMutualMatch, mutualMatchPayload{RoomID: roomID, OtherUserID: otherID})
}

func (d *Dispatcher) send(targetID uuid.UUID, msgType ws.MessageType, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s payload: %v", msgType, err)
		return
	}

	msg := ws.Message{
		Type:      msgType,
		UserID:    targetID,
		Data:      data,
		Timestamp: time.Now(),
	}

	raw, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", msgType, err)
		return
	}

	if d.rdb == nil {
		d.sink.SendToUser(targetID, raw)
		return
	}

	env, err := json.Marshal(envelope{TargetID: targetID, Message: raw})
	if err != nil {
		log.Printf("Failed to marshal %s envelope: %v", msgType, err)
		return
	}

	if err := d.rdb.Publish(context.Background(), eventsChannel, env).Err(); err != nil {
		// Pub/Sub недоступен — доставляем хотя бы локальным сессиям.
		log.Printf("Failed to publish %s event: %v", msgType, err)
		d.sink.SendToUser(targetID, raw)
	}
}
