package match

// Status — состояние пары с точки зрения конкретного пользователя.
type Status string

const (
	StatusNone            Status = "none"
	StatusPendingSent     Status = "pending_sent"
	StatusPendingReceived Status = "pending_received"
	StatusMatched         Status = "matched"
)
