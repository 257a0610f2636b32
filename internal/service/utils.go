package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	mrand "math/rand"
	"time"

	"github.com/fsdevblog/laverie-loyal/internal/domain"
)

const maxConflictRetries = 2
const conflictRetryBaseDelay = 50 * time.Millisecond

// withConflictRetry перезапускает fn при конфликте конкурентного обновления
// (domain.ErrConflict) с небольшой рандомизированной паузой. Бизнес-ошибки
// и ошибки инфраструктуры не ретраятся.
func withConflictRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil || !errors.Is(err, domain.ErrConflict) || attempt >= maxConflictRetries {
			return err
		}
		delay := time.Duration(jitter(float64(conflictRetryBaseDelay), 0.15, 0.15))
		select {
		case <-ctx.Done():
			return ctx.Err() //nolint:wrapcheck
		case <-time.After(delay):
		}
	}
}

// jitter возвращает число, рассыпавшееся относительно value на случайный процент в пределах
// [1-minPercent, 1+maxPercent].
// Например, если minPercent=0.15, maxPercent=0.15, получим диапазон [0.85*value, 1.15*value].
//
// minPercent и maxPercent должны быть >= 0 (0.1 = 10%). Если указано иное, значение выставится в 0.15.
func jitter(value, minPercent, maxPercent float64) float64 {
	if minPercent < 0 || maxPercent < 0 {
		minPercent = 0.15
		maxPercent = 0.15
	}
	factor := 1 - minPercent + mrand.Float64()*(minPercent+maxPercent) // nolint:gosec
	return value * factor
}

const verificationCodeLength = 6

// без визуально похожих символов (0/O, 1/I): код сверяется на месте вручную.
const verificationCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// generateVerificationCode генерирует короткий непредсказуемый код для
// подтверждения выдачи награды персоналом.
func generateVerificationCode() (string, error) {
	buf := make([]byte, verificationCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating verification code: %s", err.Error())
	}
	for i, b := range buf {
		buf[i] = verificationCodeAlphabet[int(b)%len(verificationCodeAlphabet)]
	}
	return string(buf), nil
}
