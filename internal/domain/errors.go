package domain

import "errors"

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateKey   = errors.New("duplicate key")
	ErrConflict       = errors.New("concurrent update conflict")
	ErrUnknown        = errors.New("unknown error")

	ErrNonPositiveAmount   = errors.New("amount must be positive")
	ErrAccountNotFound     = errors.New("loyalty account not found")
	ErrRewardNotFound      = errors.New("reward not found")
	ErrInsufficientBalance = errors.New("insufficient points balance")
	// ErrInvalidRedemptionState возвращается при попытке выдать награду,
	// которая уже выдана или просрочена.
	ErrInvalidRedemptionState = errors.New("reward already claimed or expired")
)
