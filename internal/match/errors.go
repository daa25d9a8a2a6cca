package match

import "errors"

var (
	// ErrInvalidTarget — заявка самому себе или несуществующему пользователю.
	ErrInvalidTarget = errors.New("invalid match target")

	// ErrRequestExists — такая заявка уже есть; для вызывающего это no-op.
	ErrRequestExists = errors.New("match request already exists")

	// ErrAlreadyMatched — у пары уже есть активная комната; проигравший
	// гонку консумации перечитывает состояние вместо создания дубля.
	ErrAlreadyMatched = errors.New("pair already matched")
)
