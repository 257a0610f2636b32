package service

import (
	"context"
	"time"

	"github.com/fsdevblog/laverie-loyal/internal/domain"
	"github.com/fsdevblog/laverie-loyal/internal/repository/repoargs"
	"github.com/google/uuid"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

type LoyaltyAccountRepository interface {
	Credit(ctx context.Context, args repoargs.AccountCredit) (*domain.LoyaltyAccount, error)
	Debit(ctx context.Context, args repoargs.AccountDebit) (*domain.LoyaltyAccount, error)
	SetTier(ctx context.Context, args repoargs.AccountSetTier) error
	GetByUserID(ctx context.Context, userID int64) (*domain.LoyaltyAccount, error)
	GetForUpdate(ctx context.Context, userID int64) (*domain.LoyaltyAccount, error)
}

type PointTransactionRepository interface {
	Create(ctx context.Context, args repoargs.PointTransactionCreate) (*domain.PointTransaction, error)
	GetByFilter(ctx context.Context, filter repoargs.PointTransactionFilter) ([]domain.PointTransaction, error)
}

type RewardRepository interface {
	Create(ctx context.Context, args repoargs.RewardCreate) (*domain.Reward, error)
	Update(ctx context.Context, args repoargs.RewardUpdate) (*domain.Reward, error)
	Deactivate(ctx context.Context, id int64) (*domain.Reward, error)
	FindByID(ctx context.Context, id int64) (*domain.Reward, error)
	GetActive(ctx context.Context) ([]domain.Reward, error)
	GetActiveUpToCost(ctx context.Context, maxCost int64) ([]domain.Reward, error)
}

type RedemptionRepository interface {
	Create(ctx context.Context, args repoargs.RedemptionCreate) (*domain.RewardRedemption, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.RewardRedemption, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.RewardRedemption, error)
	Claim(ctx context.Context, args repoargs.RedemptionClaim) (*domain.RewardRedemption, error)
	GetByStatus(ctx context.Context, status domain.RedemptionStatusType) ([]domain.RewardRedemption, error)
	ExpireOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

const (
	EventPointsEarned   = "points_earned"
	EventRewardRedeemed = "reward_redeemed"
	EventRewardClaimed  = "reward_claimed"
)

// NotificationEvent описывает событие для внешнего сервиса уведомлений.
type NotificationEvent struct {
	Kind         string
	UserID       int64
	Amount       int64
	Balance      int64
	Tier         domain.TierType
	RedemptionID uuid.UUID
	RewardName   string
}

// Notifier отправляет события fire-and-forget: сбой доставки не влияет
// на результат операции.
type Notifier interface {
	Enqueue(event NotificationEvent)
}
