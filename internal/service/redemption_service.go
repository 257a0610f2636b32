package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fsdevblog/laverie-loyal/internal/domain"
	"github.com/fsdevblog/laverie-loyal/internal/repository/repoargs"
	"github.com/fsdevblog/laverie-loyal/pkg/uow"
	"github.com/google/uuid"
)

const redemptionSpendSource = "reward-redemption"

// RedemptionService управляет обменом баллов на награды и машиной состояний
// выдачи: redeemed -> claimed, redeemed -> expired. Статусы claimed и expired
// терминальные.
type RedemptionService struct {
	uow            uow.UOW
	ledger         *LedgerService
	redemptionRepo RedemptionRepository
	notifier       Notifier
}

func NewRedemptionService(u uow.UOW, ledger *LedgerService, notifier Notifier) (*RedemptionService, error) {
	redemptionRepo, redemptionRepoErr := uow.GetRepositoryAs[RedemptionRepository](
		u, uow.RepositoryName(repoargs.RedemptionRepoName))
	if redemptionRepoErr != nil {
		return nil, redemptionRepoErr
	}
	return &RedemptionService{
		uow:            u,
		ledger:         ledger,
		redemptionRepo: redemptionRepo,
		notifier:       notifier,
	}, nil
}

// Redeem обменивает баллы юзера на награду. Списание и создание redemption
// записи выполняются одной транзакцией: списанный баланс не может существовать
// без соответствующей redemption записи.
//
// GIFT награды создаются в статусе redeemed и ждут физической выдачи через
// Claim. Остальные типы (скидки, бесплатная услуга) применимы сразу и
// создаются в статусе claimed. Код подтверждения генерируется для всех типов.
func (s *RedemptionService) Redeem(ctx context.Context, userID, rewardID int64) (*domain.RewardRedemption, error) {
	var redemption *domain.RewardRedemption
	var reward *domain.Reward

	txErr := withConflictRetry(ctx, func() error {
		return s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
			var err error
			redemption, reward, err = s.redeemTx(c, tx, userID, rewardID)
			return err
		})
	})
	if txErr != nil {
		return nil, fmt.Errorf("redeeming reward %d for user %d: %w", rewardID, userID, txErr)
	}

	s.notifier.Enqueue(NotificationEvent{
		Kind:         EventRewardRedeemed,
		UserID:       userID,
		Amount:       reward.PointsCost,
		RedemptionID: redemption.ID,
		RewardName:   reward.Name,
	})
	return redemption, nil
}

func (s *RedemptionService) redeemTx(
	ctx context.Context,
	tx uow.TX,
	userID, rewardID int64,
) (*domain.RewardRedemption, *domain.Reward, error) {
	rewardRepo, rewardRepoErr := uow.GetAs[RewardRepository](tx, uow.RepositoryName(repoargs.RewardRepoName))
	if rewardRepoErr != nil {
		return nil, nil, rewardRepoErr //nolint:wrapcheck
	}
	redemptionRepo, redemptionRepoErr := uow.GetAs[RedemptionRepository](
		tx, uow.RepositoryName(repoargs.RedemptionRepoName))
	if redemptionRepoErr != nil {
		return nil, nil, redemptionRepoErr //nolint:wrapcheck
	}

	reward, rewardErr := rewardRepo.FindByID(ctx, rewardID)
	if rewardErr != nil {
		if errors.Is(rewardErr, domain.ErrRecordNotFound) {
			return nil, nil, domain.ErrRewardNotFound
		}
		return nil, nil, rewardErr //nolint:wrapcheck
	}
	// деактивированная награда для новых обменов неотличима от отсутствующей.
	if !reward.IsActive {
		return nil, nil, domain.ErrRewardNotFound
	}

	// id redemption записи служит reference списания: корреляция журнала
	// с redemption и защита от двойного списания при ретрае.
	redemptionID := uuid.New()
	reference := redemptionID.String()

	if _, spendErr := s.ledger.SpendTx(ctx, tx, SpendArgs{
		UserID:      userID,
		Amount:      reward.PointsCost,
		Source:      redemptionSpendSource,
		ReferenceID: &reference,
	}); spendErr != nil {
		return nil, nil, spendErr //nolint:wrapcheck
	}

	code, codeErr := generateVerificationCode()
	if codeErr != nil {
		return nil, nil, codeErr //nolint:wrapcheck
	}

	status := domain.RedemptionStatusClaimed
	var claimedAt *time.Time
	if reward.Type == domain.RewardGift {
		status = domain.RedemptionStatusRedeemed
	} else {
		now := time.Now()
		claimedAt = &now
	}

	redemption, createErr := redemptionRepo.Create(ctx, repoargs.RedemptionCreate{
		ID:               redemptionID,
		UserID:           userID,
		RewardID:         rewardID,
		Status:           status,
		VerificationCode: code,
		ClaimedAt:        claimedAt,
	})
	if createErr != nil {
		return nil, nil, createErr //nolint:wrapcheck
	}
	return redemption, reward, nil
}

// Claim подтверждает физическую выдачу GIFT награды. Переход валиден только
// из статуса redeemed; из любого другого возвращается
// domain.ErrInvalidRedemptionState. Повторный Claim по той же записи
// детерминированно падает с той же ошибкой.
func (s *RedemptionService) Claim(
	ctx context.Context,
	redemptionID uuid.UUID,
	adminID int64,
	notes *string,
) (*domain.RewardRedemption, error) {
	var redemption *domain.RewardRedemption

	txErr := withConflictRetry(ctx, func() error {
		return s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
			redemptionRepo, redemptionRepoErr := uow.GetAs[RedemptionRepository](
				tx, uow.RepositoryName(repoargs.RedemptionRepoName))
			if redemptionRepoErr != nil {
				return redemptionRepoErr //nolint:wrapcheck
			}

			locked, lockErr := redemptionRepo.GetForUpdate(c, redemptionID)
			if lockErr != nil {
				return lockErr //nolint:wrapcheck
			}
			if locked.Status != domain.RedemptionStatusRedeemed {
				return domain.ErrInvalidRedemptionState
			}

			var claimErr error
			redemption, claimErr = redemptionRepo.Claim(c, repoargs.RedemptionClaim{
				ID:               redemptionID,
				ClaimedByAdminID: adminID,
				Notes:            notes,
			})
			return claimErr //nolint:wrapcheck
		})
	})

	if txErr != nil {
		return nil, fmt.Errorf("claiming redemption %s: %w", redemptionID, txErr)
	}

	s.notifier.Enqueue(NotificationEvent{
		Kind:         EventRewardClaimed,
		UserID:       redemption.UserID,
		RedemptionID: redemption.ID,
	})
	return redemption, nil
}

// ListByStatus возвращает погашения в указанном статусе в порядке создания.
// Статус redeemed дает очередь GIFT наград, ожидающих выдачи.
func (s *RedemptionService) ListByStatus(
	ctx context.Context,
	status domain.RedemptionStatusType,
) ([]domain.RewardRedemption, error) {
	redemptions, err := s.redemptionRepo.GetByStatus(ctx, status)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return redemptions, nil
}

func (s *RedemptionService) GetByID(ctx context.Context, id uuid.UUID) (*domain.RewardRedemption, error) {
	redemption, err := s.redemptionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return redemption, nil
}

// ExpireStale помечает просроченными redeemed записи старше ttl.
// Возвращает кол-во затронутых записей.
func (s *RedemptionService) ExpireStale(ctx context.Context, ttl time.Duration) (int64, error) {
	expired, err := s.redemptionRepo.ExpireOlderThan(ctx, time.Now().Add(-ttl))
	if err != nil {
		return 0, fmt.Errorf("expiring stale redemptions: %w", err)
	}
	return expired, nil
}
