package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fsdevblog/laverie-loyal/internal/domain"
	"github.com/fsdevblog/laverie-loyal/internal/repository/repoargs"
	"github.com/fsdevblog/laverie-loyal/pkg/uow"
)

// RewardService обслуживает каталог наград. Каталог read-mostly, мутации
// делает администратор, транзакционность тут не нужна.
type RewardService struct {
	uow         uow.UOW
	rewardRepo  RewardRepository
	accountRepo LoyaltyAccountRepository
}

func NewRewardService(u uow.UOW) (*RewardService, error) {
	rewardRepo, rewardRepoErr := uow.GetRepositoryAs[RewardRepository](
		u, uow.RepositoryName(repoargs.RewardRepoName))
	if rewardRepoErr != nil {
		return nil, rewardRepoErr
	}
	accountRepo, accountRepoErr := uow.GetRepositoryAs[LoyaltyAccountRepository](
		u, uow.RepositoryName(repoargs.LoyaltyAccountRepoName))
	if accountRepoErr != nil {
		return nil, accountRepoErr
	}
	return &RewardService{
		uow:         u,
		rewardRepo:  rewardRepo,
		accountRepo: accountRepo,
	}, nil
}

func (s *RewardService) Create(ctx context.Context, args repoargs.RewardCreate) (*domain.Reward, error) {
	if args.PointsCost <= 0 {
		return nil, fmt.Errorf("creating reward: %w", domain.ErrNonPositiveAmount)
	}
	reward, err := s.rewardRepo.Create(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("creating reward: %w", err)
	}
	return reward, nil
}

func (s *RewardService) Update(ctx context.Context, args repoargs.RewardUpdate) (*domain.Reward, error) {
	if args.PointsCost != nil && *args.PointsCost <= 0 {
		return nil, fmt.Errorf("updating reward: %w", domain.ErrNonPositiveAmount)
	}
	reward, err := s.rewardRepo.Update(ctx, args)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.ErrRewardNotFound
		}
		return nil, fmt.Errorf("updating reward: %w", err)
	}
	return reward, nil
}

// Deactivate скрывает награду от новых обменов. Уже созданные redemption
// записи продолжают жить своим циклом.
func (s *RewardService) Deactivate(ctx context.Context, id int64) (*domain.Reward, error) {
	reward, err := s.rewardRepo.Deactivate(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.ErrRewardNotFound
		}
		return nil, fmt.Errorf("deactivating reward: %w", err)
	}
	return reward, nil
}

func (s *RewardService) GetByID(ctx context.Context, id int64) (*domain.Reward, error) {
	reward, err := s.rewardRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.ErrRewardNotFound
		}
		return nil, err //nolint:wrapcheck
	}
	return reward, nil
}

func (s *RewardService) ListActive(ctx context.Context) ([]domain.Reward, error) {
	rewards, err := s.rewardRepo.GetActive(ctx)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return rewards, nil
}

// AvailableFor возвращает активные награды, на которые юзеру хватает баллов.
// Read-only проекция, баланс не меняется. Юзер без аккаунта получает пустой
// список, а не ошибку.
func (s *RewardService) AvailableFor(ctx context.Context, userID int64) ([]domain.Reward, error) {
	account, accountErr := s.accountRepo.GetByUserID(ctx, userID)
	if accountErr != nil {
		if errors.Is(accountErr, domain.ErrRecordNotFound) {
			return []domain.Reward{}, nil
		}
		return nil, accountErr //nolint:wrapcheck
	}
	rewards, err := s.rewardRepo.GetActiveUpToCost(ctx, account.Points)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return rewards, nil
}
