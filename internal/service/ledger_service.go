package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fsdevblog/laverie-loyal/internal/domain"
	"github.com/fsdevblog/laverie-loyal/internal/repository/repoargs"
	"github.com/fsdevblog/laverie-loyal/pkg/uow"
)

// LedgerService владеет балансом баллов. Все мутации проходят через
// транзакцию с блокировкой строки аккаунта: конкурентные earn/spend по
// одному юзеру сериализуются на уровне БД.
type LedgerService struct {
	uow             uow.UOW
	accountRepo     LoyaltyAccountRepository
	transactionRepo PointTransactionRepository
	notifier        Notifier
}

func NewLedgerService(u uow.UOW, notifier Notifier) (*LedgerService, error) {
	accountRepo, accountRepoErr := uow.GetRepositoryAs[LoyaltyAccountRepository](
		u, uow.RepositoryName(repoargs.LoyaltyAccountRepoName))
	if accountRepoErr != nil {
		return nil, accountRepoErr
	}
	transactionRepo, transactionRepoErr := uow.GetRepositoryAs[PointTransactionRepository](
		u, uow.RepositoryName(repoargs.PointTransactionRepoName))
	if transactionRepoErr != nil {
		return nil, transactionRepoErr
	}
	return &LedgerService{
		uow:             u,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		notifier:        notifier,
	}, nil
}

type EarnArgs struct {
	UserID      int64
	Amount      int64
	Source      string
	ReferenceID *string
}

type SpendArgs struct {
	UserID      int64
	Amount      int64
	Source      string
	ReferenceID *string
}

// Earn атомарно начисляет баллы и к балансу, и к lifetime сумме. Аккаунт
// создается лениво при первом начислении. Уровень пересчитывается от новой
// lifetime суммы в той же транзакции.
//
// Повторная доставка того же ReferenceID (ретрай клиента) не меняет баланс:
// запись журнала вставляется первой, дубликат откатывает транзакцию, и метод
// возвращает текущее состояние аккаунта.
func (s *LedgerService) Earn(ctx context.Context, args EarnArgs) (*domain.LoyaltyAccount, error) {
	if args.Amount <= 0 {
		return nil, fmt.Errorf("earning points: %w", domain.ErrNonPositiveAmount)
	}

	var account *domain.LoyaltyAccount
	txErr := withConflictRetry(ctx, func() error {
		return s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
			var err error
			account, err = s.earnTx(c, tx, args)
			return err
		})
	})

	if txErr != nil {
		if errors.Is(txErr, domain.ErrDuplicateKey) {
			// повтор по тому же reference: возвращаем состояние без изменений.
			return s.GetAccount(ctx, args.UserID)
		}
		return nil, fmt.Errorf("earning points: %w", txErr)
	}

	s.notifier.Enqueue(NotificationEvent{
		Kind:    EventPointsEarned,
		UserID:  account.UserID,
		Amount:  args.Amount,
		Balance: account.Points,
		Tier:    account.Tier,
	})
	return account, nil
}

func (s *LedgerService) earnTx(ctx context.Context, tx uow.TX, args EarnArgs) (*domain.LoyaltyAccount, error) {
	transactionRepo, transactionRepoErr := uow.GetAs[PointTransactionRepository](
		tx, uow.RepositoryName(repoargs.PointTransactionRepoName))
	if transactionRepoErr != nil {
		return nil, transactionRepoErr //nolint:wrapcheck
	}
	accountRepo, accountRepoErr := uow.GetAs[LoyaltyAccountRepository](
		tx, uow.RepositoryName(repoargs.LoyaltyAccountRepoName))
	if accountRepoErr != nil {
		return nil, accountRepoErr //nolint:wrapcheck
	}

	// журнал пишется первым: дубликат reference обрывает транзакцию
	// до какого-либо изменения баланса.
	if _, createErr := transactionRepo.Create(ctx, repoargs.PointTransactionCreate{
		UserID:      args.UserID,
		Direction:   domain.DirectionEarn,
		Amount:      args.Amount,
		Source:      args.Source,
		ReferenceID: args.ReferenceID,
	}); createErr != nil {
		return nil, createErr //nolint:wrapcheck
	}

	account, creditErr := accountRepo.Credit(ctx, repoargs.AccountCredit{
		UserID: args.UserID,
		Amount: args.Amount,
	})
	if creditErr != nil {
		return nil, creditErr //nolint:wrapcheck
	}

	if newTier := domain.TierFor(account.LifetimePoints); newTier != account.Tier {
		if tierErr := accountRepo.SetTier(ctx, repoargs.AccountSetTier{
			UserID: account.UserID,
			Tier:   newTier,
		}); tierErr != nil {
			return nil, tierErr //nolint:wrapcheck
		}
		account.Tier = newTier
	}
	return account, nil
}

// Spend атомарно списывает баллы. Lifetime сумма и уровень не меняются.
// Возвращает domain.ErrAccountNotFound если аккаунта нет и
// domain.ErrInsufficientBalance если баллов не хватает.
func (s *LedgerService) Spend(ctx context.Context, args SpendArgs) (*domain.LoyaltyAccount, error) {
	if args.Amount <= 0 {
		return nil, fmt.Errorf("spending points: %w", domain.ErrNonPositiveAmount)
	}

	var account *domain.LoyaltyAccount
	txErr := withConflictRetry(ctx, func() error {
		return s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
			var err error
			account, err = s.SpendTx(c, tx, args)
			return err
		})
	})

	if txErr != nil {
		if errors.Is(txErr, domain.ErrDuplicateKey) {
			return s.GetAccount(ctx, args.UserID)
		}
		return nil, fmt.Errorf("spending points: %w", txErr)
	}
	return account, nil
}

// SpendTx выполняет списание внутри уже открытой транзакции tx. Используется
// сценарием обмена награды: списание и создание redemption обязаны быть одной
// атомарной единицей.
func (s *LedgerService) SpendTx(ctx context.Context, tx uow.TX, args SpendArgs) (*domain.LoyaltyAccount, error) {
	if args.Amount <= 0 {
		return nil, domain.ErrNonPositiveAmount
	}
	accountRepo, accountRepoErr := uow.GetAs[LoyaltyAccountRepository](
		tx, uow.RepositoryName(repoargs.LoyaltyAccountRepoName))
	if accountRepoErr != nil {
		return nil, accountRepoErr //nolint:wrapcheck
	}
	transactionRepo, transactionRepoErr := uow.GetAs[PointTransactionRepository](
		tx, uow.RepositoryName(repoargs.PointTransactionRepoName))
	if transactionRepoErr != nil {
		return nil, transactionRepoErr //nolint:wrapcheck
	}

	locked, lockErr := accountRepo.GetForUpdate(ctx, args.UserID)
	if lockErr != nil {
		if errors.Is(lockErr, domain.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, lockErr //nolint:wrapcheck
	}

	if locked.Points < args.Amount {
		return nil, domain.ErrInsufficientBalance
	}

	if _, createErr := transactionRepo.Create(ctx, repoargs.PointTransactionCreate{
		UserID:      args.UserID,
		Direction:   domain.DirectionSpend,
		Amount:      args.Amount,
		Source:      args.Source,
		ReferenceID: args.ReferenceID,
	}); createErr != nil {
		return nil, createErr //nolint:wrapcheck
	}

	account, debitErr := accountRepo.Debit(ctx, repoargs.AccountDebit{
		UserID: args.UserID,
		Amount: args.Amount,
	})
	if debitErr != nil {
		return nil, debitErr //nolint:wrapcheck
	}
	return account, nil
}

// GetAccount возвращает аккаунт лояльности или domain.ErrAccountNotFound.
func (s *LedgerService) GetAccount(ctx context.Context, userID int64) (*domain.LoyaltyAccount, error) {
	account, err := s.accountRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err //nolint:wrapcheck
	}
	return account, nil
}

// Transactions возвращает журнал операций юзера (аудит, не источник баланса).
func (s *LedgerService) Transactions(
	ctx context.Context,
	userID int64,
	direction *domain.DirectionType,
) ([]domain.PointTransaction, error) {
	transactions, err := s.transactionRepo.GetByFilter(ctx, repoargs.PointTransactionFilter{
		UserID:    userID,
		Direction: direction,
	})
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return transactions, nil
}
