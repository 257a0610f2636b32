// Package expiry периодически помечает просроченными невостребованные награды.
package expiry

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultServiceTimeout = 3 * time.Second

// Servicer интерфейс сервисного слоя для свипера.
type Servicer interface {
	ExpireStale(ctx context.Context, ttl time.Duration) (int64, error)
}

// Sweeper переводит redeemed записи старше TTL в терминальный статус expired.
// Отдельная периодическая джоба: путь запроса про просрочку ничего не знает.
type Sweeper struct {
	svs      Servicer
	l        *logrus.Entry
	ttl      time.Duration
	interval time.Duration
}

func New(svs Servicer, ttl, interval time.Duration, l *logrus.Logger) *Sweeper {
	loggerEntry := l.WithFields(logrus.Fields{
		"component": "expiry",
		"module":    "sweeper",
	})

	return &Sweeper{
		svs:      svs,
		l:        loggerEntry,
		ttl:      ttl,
		interval: interval,
	}
}

// Run запускает свип в цикле до отмены контекста.
func (s *Sweeper) Run(ctx context.Context) {
	s.l.WithFields(logrus.Fields{
		"ttl":      s.ttl.String(),
		"interval": s.interval.String(),
	}).Info("Starting")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.l.Info("Got stop signal, exiting...")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	reqCtx, cancel := context.WithTimeout(ctx, defaultServiceTimeout)
	defer cancel()

	expired, err := s.svs.ExpireStale(reqCtx, s.ttl)
	if err != nil {
		s.l.WithError(err).Error("sweep error")
		return
	}
	if expired > 0 {
		s.l.WithField("expired", expired).Info("redemptions expired")
	}
}
