package match

import (
	"log"

	"github.com/google/uuid"
)

// Store — персистентное состояние матчей. Реализуется поверх Postgres
// (internal/database); уникальные ограничения на направленную пару заявки
// и на pair_key комнаты обязаны обеспечиваться самим хранилищем — процессный
// мьютекс не защитил бы от второго инстанса сервиса.
type Store interface {
	// UserExists проверяет, что пользователь существует.
	UserExists(id uuid.UUID) (bool, error)

	// CreateRequest сохраняет заявку requester -> target.
	// Возвращает ErrRequestExists, если такая заявка уже есть.
	CreateRequest(requesterID, targetID uuid.UUID) error

	// HasPendingRequest проверяет наличие заявки requester -> target.
	HasPendingRequest(requesterID, targetID uuid.UUID) (bool, error)

	// DeleteRequest удаляет заявку requester -> target; false — её не было.
	DeleteRequest(requesterID, targetID uuid.UUID) (bool, error)

	// ActiveRoom возвращает комнату пары, в которой оба участника активны.
	ActiveRoom(userA, userB uuid.UUID) (uuid.UUID, bool, error)

	// Consummate атомарно создает комнату, оба участия и удаляет обе
	// заявки пары. Возвращает ErrAlreadyMatched, если активная комната
	// пары уже существует (проигранная гонка).
	Consummate(userA, userB uuid.UUID) (uuid.UUID, error)
}

// Notifier — push-уведомления подключенным сессиям. Доставка best-effort:
// ошибки не возвращаются и на результат матча не влияют.
type Notifier interface {
	MatchRequestReceived(targetID, fromID uuid.UUID)
	MutualMatch(userID, otherID, roomID uuid.UUID)
}

// Result — исход SubmitRequest. RoomID заполнен только при Matched.
type Result struct {
	Matched bool
	RoomID  uuid.UUID
}

// Service реализует протокол взаимного матча: одна заявка — pending,
// встречная — консумация (комната + участия + удаление заявок одной
// транзакцией) и уведомление обеих сторон строго после коммита.
type Service struct {
	store    Store
	notifier Notifier
}

func NewService(store Store, notifier Notifier) *Service {
	return &Service{store: store, notifier: notifier}
}

// SubmitRequest обрабатывает заявку requester -> target.
func (s *Service) SubmitRequest(requesterID, targetID uuid.UUID) (Result, error) {
	if requesterID == targetID {
		return Result{}, ErrInvalidTarget
	}

	exists, err := s.store.UserExists(targetID)
	if err != nil {
		return Result{}, err
	}
	if !exists {
		return Result{}, ErrInvalidTarget
	}

	// Пара уже сматчена — идемпотентно возвращаем существующую комнату.
	if roomID, ok, err := s.store.ActiveRoom(requesterID, targetID); err != nil {
		return Result{}, err
	} else if ok {
		return Result{Matched: true, RoomID: roomID}, nil
	}

	reciprocal, err := s.store.HasPendingRequest(targetID, requesterID)
	if err != nil {
		return Result{}, err
	}

	if reciprocal {
		return s.consummate(requesterID, targetID)
	}

	if err := s.store.CreateRequest(requesterID, targetID); err != nil {
		if err == ErrRequestExists {
			// Повторная отправка той же заявки — no-op без уведомления.
			// Пара могла успеть сматчиться параллельным вызовом — тогда
			// отвечаем комнатой, а не pending.
			if roomID, ok, err := s.store.ActiveRoom(requesterID, targetID); err != nil {
				return Result{}, err
			} else if ok {
				return Result{Matched: true, RoomID: roomID}, nil
			}
			return Result{}, nil
		}
		return Result{}, err
	}

	// Встречная заявка могла разминуться с проверкой выше (перекрестная
	// отправка или чужая консумация между чтением и записью) — перечитываем,
	// чтобы ни один вызов не вернул pending для уже сматченной пары.
	reciprocal, err = s.store.HasPendingRequest(targetID, requesterID)
	if err != nil {
		return Result{}, err
	}
	if reciprocal {
		return s.consummate(requesterID, targetID)
	}

	if roomID, ok, err := s.store.ActiveRoom(requesterID, targetID); err != nil {
		return Result{}, err
	} else if ok {
		// Пара сматчилась, пока мы писали заявку: подчищаем осиротевшую
		// запись и возвращаем комнату победителя.
		if _, err := s.store.DeleteRequest(requesterID, targetID); err != nil {
			return Result{}, err
		}
		return Result{Matched: true, RoomID: roomID}, nil
	}

	s.notifier.MatchRequestReceived(targetID, requesterID)
	return Result{}, nil
}

// consummate выполняет взаимный матч. Уведомления уходят только после
// успешного коммита; при откате транзакции не уходят вовсе.
func (s *Service) consummate(requesterID, targetID uuid.UUID) (Result, error) {
	roomID, err := s.store.Consummate(requesterID, targetID)
	if err == ErrAlreadyMatched {
		// Гонку выиграл встречный вызов: перечитываем его результат.
		roomID, ok, err := s.store.ActiveRoom(requesterID, targetID)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			return Result{}, ErrAlreadyMatched
		}
		return Result{Matched: true, RoomID: roomID}, nil
	}
	if err != nil {
		return Result{}, err
	}

	log.Printf("Mutual match: %s and %s, room %s", requesterID, targetID, roomID)
	s.notifier.MutualMatch(requesterID, targetID, roomID)
	s.notifier.MutualMatch(targetID, requesterID, roomID)
	return Result{Matched: true, RoomID: roomID}, nil
}

// Withdraw отзывает собственную заявку к target.
func (s *Service) Withdraw(requesterID, targetID uuid.UUID) (bool, error) {
	return s.store.DeleteRequest(requesterID, targetID)
}

// Decline отклоняет входящую заявку от from. Для обеих сторон пара
// возвращается в состояние none.
func (s *Service) Decline(userID, fromID uuid.UUID) (bool, error) {
	return s.store.DeleteRequest(fromID, userID)
}

// StatusOf проецирует состояние пары для viewer. Активная комната имеет
// приоритет над осиротевшими заявками.
func (s *Service) StatusOf(viewerID, candidateID uuid.UUID) (Status, error) {
	if viewerID == candidateID {
		return StatusNone, nil
	}

	if _, ok, err := s.store.ActiveRoom(viewerID, candidateID); err != nil {
		return StatusNone, err
	} else if ok {
		return StatusMatched, nil
	}

	if sent, err := s.store.HasPendingRequest(viewerID, candidateID); err != nil {
		return StatusNone, err
	} else if sent {
		return StatusPendingSent, nil
	}

	if received, err := s.store.HasPendingRequest(candidateID, viewerID); err != nil {
		return StatusNone, err
	} else if received {
		return StatusPendingReceived, nil
	}

	return StatusNone, nil
}

// StatusesOf — пакетная проекция для списка кандидатов.
func (s *Service) StatusesOf(viewerID uuid.UUID, candidateIDs []uuid.UUID) (map[uuid.UUID]Status, error) {
	statuses := make(map[uuid.UUID]Status, len(candidateIDs))
	for _, id := range candidateIDs {
		status, err := s.StatusOf(viewerID, id)
		if err != nil {
			return nil, err
		}
		statuses[id] = status
	}
	return statuses, nil
}
