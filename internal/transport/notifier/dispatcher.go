// Package notifier доставляет события лояльности внешнему сервису уведомлений.
package notifier

import (
	"context"
	"sync"
	"time"

	"github.com/fsdevblog/laverie-loyal/internal/service"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultSendTimeout       = 10 * time.Second
	defaultBufferSize   uint = 256
	defaultSendWorkers  uint = 4
)

// Dispatcher асинхронно отправляет события уведомлений. Доставка
// fire-and-forget: ошибки логируются и событие отбрасывается, Enqueue никогда
// не блокирует путь запроса.
type Dispatcher struct {
	client  Client
	l       *logrus.Entry
	events  chan service.NotificationEvent
	workers uint
}

// New создает новый диспетчер уведомлений.
func New(apiBaseURL string, l *logrus.Logger) *Dispatcher {
	loggerEntry := l.WithFields(logrus.Fields{
		"component": "notifier",
		"module":    "dispatcher",
	})

	return &Dispatcher{
		client:  NewHTTPClient(apiBaseURL),
		l:       loggerEntry,
		events:  make(chan service.NotificationEvent, defaultBufferSize),
		workers: defaultSendWorkers,
	}
}

// SetWorkers устанавливает кол-во воркеров отправки.
func (d *Dispatcher) SetWorkers(workers uint) *Dispatcher {
	d.workers = workers
	return d
}

// Enqueue ставит событие в очередь отправки. При переполненном буфере событие
// отбрасывается с warning: уведомления не важнее самой операции.
func (d *Dispatcher) Enqueue(event service.NotificationEvent) {
	select {
	case d.events <- event:
	default:
		d.l.WithFields(logrus.Fields{
			"kind":   event.Kind,
			"userID": event.UserID,
		}).Warn("notification buffer full, event dropped")
	}
}

// Run запускает воркеры отправки и блокируется до отмены контекста.
func (d *Dispatcher) Run(ctx context.Context) {
	d.l.WithField("workers", d.workers).Info("Starting")

	wg := new(sync.WaitGroup)
	wg.Add(int(d.workers)) //nolint:gosec

	for i := uint(0); i < d.workers; i++ {
		go d.worker(ctx, wg, i+1)
	}
	wg.Wait()

	d.l.Info("Got stop signal, exiting...")
}

func (d *Dispatcher) worker(ctx context.Context, wg *sync.WaitGroup, workerID uint) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case event := <-d.events:
			d.send(ctx, workerID, event)
		}
	}
}

func (d *Dispatcher) send(ctx context.Context, workerID uint, event service.NotificationEvent) {
	reqCtx, cancel := context.WithTimeout(ctx, defaultSendTimeout)
	defer cancel()

	l := d.l.WithFields(logrus.Fields{
		"worker": workerID,
		"kind":   event.Kind,
		"userID": event.UserID,
	})

	payload := EventPayload{
		Kind:       event.Kind,
		UserID:     event.UserID,
		Amount:     event.Amount,
		Balance:    event.Balance,
		Tier:       string(event.Tier),
		RewardName: event.RewardName,
	}
	if event.RedemptionID != uuid.Nil {
		payload.RedemptionID = event.RedemptionID.String()
	}

	if err := d.client.Send(reqCtx, payload); err != nil {
		l.WithError(err).Error("send notification")
		return
	}
	l.Debug("notification sent")
}

// Noop реализация для окружений без сервиса уведомлений.
type Noop struct{}

func (Noop) Enqueue(_ service.NotificationEvent) {}
