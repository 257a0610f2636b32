package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/fsdevblog/laverie-loyal/internal/domain"
	"github.com/fsdevblog/laverie-loyal/internal/repository/repoargs"
	"github.com/fsdevblog/laverie-loyal/internal/service/mocks"
	"github.com/fsdevblog/laverie-loyal/pkg/uow"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

// memoryLedgerUOW - in-memory unit of work для проверки конкурентных сценариев.
// Do выполняется под мьютексом: так же конкурентные транзакции по одному счету
// сериализуются блокировкой строки в БД. Ошибка fn откатывает состояние к
// снимку на момент начала транзакции.
type memoryLedgerUOW struct {
	mu      sync.Mutex
	account *domain.LoyaltyAccount
	journal []domain.PointTransaction
}

func (m *memoryLedgerUOW) Register(uow.RepositoryName, uow.RepositoryFactory) error { return nil }

func (m *memoryLedgerUOW) GetRepository(uow.RepositoryName) (uow.Repository, error) { return m, nil }

func (m *memoryLedgerUOW) Get(uow.RepositoryName) (uow.Repository, error) { return m, nil }

func (m *memoryLedgerUOW) Do(ctx context.Context, fn func(context.Context, uow.TX) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var snapshot *domain.LoyaltyAccount
	if m.account != nil {
		copied := *m.account
		snapshot = &copied
	}
	journalLen := len(m.journal)

	if err := fn(ctx, m); err != nil {
		m.account = snapshot
		m.journal = m.journal[:journalLen]
		return err
	}
	return nil
}

func (m *memoryLedgerUOW) GetForUpdate(_ context.Context, userID int64) (*domain.LoyaltyAccount, error) {
	if m.account == nil || m.account.UserID != userID {
		return nil, domain.ErrRecordNotFound
	}
	copied := *m.account
	return &copied, nil
}

func (m *memoryLedgerUOW) GetByUserID(ctx context.Context, userID int64) (*domain.LoyaltyAccount, error) {
	return m.GetForUpdate(ctx, userID)
}

func (m *memoryLedgerUOW) Credit(_ context.Context, args repoargs.AccountCredit) (*domain.LoyaltyAccount, error) {
	if m.account == nil || m.account.UserID != args.UserID {
		m.account = &domain.LoyaltyAccount{UserID: args.UserID, Tier: domain.TierBronze}
	}
	m.account.Points += args.Amount
	m.account.LifetimePoints += args.Amount
	copied := *m.account
	return &copied, nil
}

func (m *memoryLedgerUOW) Debit(_ context.Context, args repoargs.AccountDebit) (*domain.LoyaltyAccount, error) {
	m.account.Points -= args.Amount
	copied := *m.account
	return &copied, nil
}

func (m *memoryLedgerUOW) SetTier(_ context.Context, args repoargs.AccountSetTier) error {
	m.account.Tier = args.Tier
	return nil
}

func (m *memoryLedgerUOW) Create(
	_ context.Context,
	args repoargs.PointTransactionCreate,
) (*domain.PointTransaction, error) {
	for _, entry := range m.journal {
		if args.ReferenceID != nil && entry.ReferenceID != nil &&
			entry.UserID == args.UserID && entry.Direction == args.Direction &&
			*entry.ReferenceID == *args.ReferenceID {
			return nil, domain.ErrDuplicateKey
		}
	}
	transaction := domain.PointTransaction{
		ID:          int64(len(m.journal) + 1),
		UserID:      args.UserID,
		Direction:   args.Direction,
		Amount:      args.Amount,
		Source:      args.Source,
		ReferenceID: args.ReferenceID,
	}
	m.journal = append(m.journal, transaction)
	return &transaction, nil
}

func (m *memoryLedgerUOW) GetByFilter(
	_ context.Context,
	filter repoargs.PointTransactionFilter,
) ([]domain.PointTransaction, error) {
	var transactions []domain.PointTransaction
	for _, entry := range m.journal {
		if entry.UserID != filter.UserID {
			continue
		}
		if filter.Direction != nil && entry.Direction != *filter.Direction {
			continue
		}
		transactions = append(transactions, entry)
	}
	return transactions, nil
}

// Конкурентные списания полного баланса одного счета: пройти должно ровно
// одно, остальные завершаются нехваткой баллов, баланс не уходит в минус.
func TestSpend_ConcurrentFullBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	const attempts = 16
	balance := int64(300)

	m := &memoryLedgerUOW{account: &domain.LoyaltyAccount{
		UserID:         1,
		Points:         balance,
		LifetimePoints: balance,
		Tier:           domain.TierBronze,
	}}

	// Spend не шлет уведомлений: вызов Enqueue завалит тест.
	svs, err := NewLedgerService(m, mocks.NewMockNotifier(ctrl))
	require.NoError(t, err)

	var wg sync.WaitGroup
	var succeeded, insufficient atomic.Int64
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reference := fmt.Sprintf("checkout-%d", i)
			_, spendErr := svs.Spend(context.Background(), SpendArgs{
				UserID:      1,
				Amount:      balance,
				Source:      "manual",
				ReferenceID: &reference,
			})
			switch {
			case spendErr == nil:
				succeeded.Add(1)
			case errors.Is(spendErr, domain.ErrInsufficientBalance):
				insufficient.Add(1)
			default:
				t.Errorf("unexpected spend error: %v", spendErr)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int64(1), succeeded.Load())
	require.Equal(t, int64(attempts-1), insufficient.Load())
	require.Equal(t, int64(0), m.account.Points)
	require.Equal(t, balance, m.account.LifetimePoints)
	require.Len(t, m.journal, 1)
}
