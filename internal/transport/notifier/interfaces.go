package notifier

import (
	"context"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

// Client отправляет одно событие внешнему сервису уведомлений.
type Client interface {
	Send(ctx context.Context, payload EventPayload) error
}
