package api

import (
	"context"

	"github.com/fsdevblog/laverie-loyal/internal/domain"
	"github.com/fsdevblog/laverie-loyal/internal/repository/repoargs"
	"github.com/fsdevblog/laverie-loyal/internal/service"
	"github.com/google/uuid"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

type LedgerServicer interface {
	Earn(ctx context.Context, args service.EarnArgs) (*domain.LoyaltyAccount, error)
	Spend(ctx context.Context, args service.SpendArgs) (*domain.LoyaltyAccount, error)
	GetAccount(ctx context.Context, userID int64) (*domain.LoyaltyAccount, error)
	Transactions(ctx context.Context, userID int64, direction *domain.DirectionType) ([]domain.PointTransaction, error)
}

type RewardServicer interface {
	Create(ctx context.Context, args repoargs.RewardCreate) (*domain.Reward, error)
	Update(ctx context.Context, args repoargs.RewardUpdate) (*domain.Reward, error)
	Deactivate(ctx context.Context, id int64) (*domain.Reward, error)
	GetByID(ctx context.Context, id int64) (*domain.Reward, error)
	ListActive(ctx context.Context) ([]domain.Reward, error)
	AvailableFor(ctx context.Context, userID int64) ([]domain.Reward, error)
}

type RedemptionServicer interface {
	Redeem(ctx context.Context, userID int64, rewardID int64) (*domain.RewardRedemption, error)
	Claim(ctx context.Context, id uuid.UUID, adminID int64, notes *string) (*domain.RewardRedemption, error)
	ListByStatus(ctx context.Context, status domain.RedemptionStatusType) ([]domain.RewardRedemption, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RewardRedemption, error)
}
