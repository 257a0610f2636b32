package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LoyaltyAccount struct {
	UserID         int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Points         int64
	LifetimePoints int64
	Tier           TierType
}

type PointTransaction struct {
	ID          int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	UserID      int64
	Direction   DirectionType
	Amount      int64
	Source      string
	ReferenceID *string
}

type Reward struct {
	ID          int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Name        string
	Description string
	Type        RewardType
	PointsCost  int64
	// Value хранит размер выгоды: процент скидки для DiscountPercentage,
	// денежную сумму для DiscountFixed. Для остальных типов не используется.
	Value    decimal.Decimal
	IsActive bool
}

type RewardRedemption struct {
	ID               uuid.UUID
	CreatedAt        time.Time
	UpdatedAt        time.Time
	UserID           int64
	RewardID         int64
	Status           RedemptionStatusType
	VerificationCode string
	ClaimedAt        *time.Time
	ClaimedByAdminID *int64
	Notes            *string
}
