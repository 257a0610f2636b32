package repoargs

import (
	"github.com/fsdevblog/laverie-loyal/internal/domain"
	"github.com/shopspring/decimal"
)

type RewardCreate struct {
	Name        string
	Description string
	Type        domain.RewardType
	PointsCost  int64
	Value       decimal.Decimal
}

// RewardUpdate обновляет только не nil поля.
type RewardUpdate struct {
	ID          int64
	Name        *string
	Description *string
	PointsCost  *int64
	Value       *decimal.Decimal
	IsActive    *bool
}
