package service

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/fsdevblog/laverie-loyal/internal/domain"
	"github.com/fsdevblog/laverie-loyal/internal/repository/repoargs"
	"github.com/fsdevblog/laverie-loyal/internal/service/mocks"
	"github.com/fsdevblog/laverie-loyal/pkg/uow"
	uowmocks "github.com/fsdevblog/laverie-loyal/pkg/uow/mocks"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"
)

type LedgerServiceTestSuite struct {
	suite.Suite
	mockCtrl            *gomock.Controller
	mockUOW             *uowmocks.MockUOW
	mockTX              *uowmocks.MockTX
	mockAccountRepo     *mocks.MockLoyaltyAccountRepository
	mockTransactionRepo *mocks.MockPointTransactionRepository
	mockNotifier        *mocks.MockNotifier
	service             *LedgerService
}

func TestLedgerServiceSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}

func (s *LedgerServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockTX = uowmocks.NewMockTX(s.mockCtrl)
	s.mockAccountRepo = mocks.NewMockLoyaltyAccountRepository(s.mockCtrl)
	s.mockTransactionRepo = mocks.NewMockPointTransactionRepository(s.mockCtrl)
	s.mockNotifier = mocks.NewMockNotifier(s.mockCtrl)

	// Репозитории, которые сервис получает при инициализации.
	s.mockUOW.EXPECT().
		GetRepository(uow.RepositoryName(repoargs.LoyaltyAccountRepoName)).
		Return(s.mockAccountRepo, nil).AnyTimes()
	s.mockUOW.EXPECT().
		GetRepository(uow.RepositoryName(repoargs.PointTransactionRepoName)).
		Return(s.mockTransactionRepo, nil).AnyTimes()

	var err error
	s.service, err = NewLedgerService(s.mockUOW, s.mockNotifier)
	s.Require().NoError(err)
}

func (s *LedgerServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

// expectTxRepos настраивает выдачу репозиториев из транзакции.
func (s *LedgerServiceTestSuite) expectTxRepos() {
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.LoyaltyAccountRepoName)).
		Return(s.mockAccountRepo, nil).AnyTimes()
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.PointTransactionRepoName)).
		Return(s.mockTransactionRepo, nil).AnyTimes()
}

func (s *LedgerServiceTestSuite) expectUOWDo(times int) {
	s.mockUOW.EXPECT().Do(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(ctx, s.mockTX)
		},
	).Times(times)
}

func (s *LedgerServiceTestSuite) TestEarn_CreatesAccountAndAssignsTier() {
	userID := int64(gofakeit.Number(1, 1_000_000))
	amount := int64(1500)

	s.expectTxRepos()
	s.expectUOWDo(1)

	s.mockTransactionRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.PointTransactionCreate) (*domain.PointTransaction, error) {
			s.Equal(userID, args.UserID)
			s.Equal(domain.DirectionEarn, args.Direction)
			s.Equal(amount, args.Amount)
			s.Equal("order-completed", args.Source)
			return &domain.PointTransaction{ID: 1, UserID: userID, Direction: args.Direction, Amount: amount}, nil
		})

	// аккаунт создан upsert-ом, lifetime баллов хватает на SILVER.
	s.mockAccountRepo.EXPECT().Credit(gomock.Any(), repoargs.AccountCredit{UserID: userID, Amount: amount}).
		Return(&domain.LoyaltyAccount{
			UserID:         userID,
			Points:         amount,
			LifetimePoints: amount,
			Tier:           domain.TierBronze,
		}, nil)

	s.mockAccountRepo.EXPECT().
		SetTier(gomock.Any(), repoargs.AccountSetTier{UserID: userID, Tier: domain.TierSilver}).
		Return(nil)

	s.mockNotifier.EXPECT().Enqueue(gomock.Any()).Do(func(event NotificationEvent) {
		s.Equal(EventPointsEarned, event.Kind)
		s.Equal(userID, event.UserID)
		s.Equal(amount, event.Amount)
		s.Equal(domain.TierSilver, event.Tier)
	})

	account, err := s.service.Earn(s.T().Context(), EarnArgs{
		UserID: userID,
		Amount: amount,
		Source: "order-completed",
	})
	s.Require().NoError(err)
	s.Equal(amount, account.Points)
	s.Equal(domain.TierSilver, account.Tier)
}

func (s *LedgerServiceTestSuite) TestEarn_NonPositiveAmount() {
	for _, amount := range []int64{0, -10} {
		_, err := s.service.Earn(s.T().Context(), EarnArgs{UserID: 1, Amount: amount, Source: "manual"})
		s.Require().ErrorIs(err, domain.ErrNonPositiveAmount)
	}
}

func (s *LedgerServiceTestSuite) TestEarn_DuplicateReferenceIsNoop() {
	userID := int64(42)
	reference := "order-777"
	existing := &domain.LoyaltyAccount{
		UserID:         userID,
		Points:         500,
		LifetimePoints: 900,
		Tier:           domain.TierBronze,
	}

	s.expectTxRepos()
	s.expectUOWDo(1)

	// журнал пишется первым, дубликат reference обрывает транзакцию.
	s.mockTransactionRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrDuplicateKey)

	// сервис возвращает текущее состояние без изменений.
	s.mockAccountRepo.EXPECT().GetByUserID(gomock.Any(), userID).Return(existing, nil)

	account, err := s.service.Earn(s.T().Context(), EarnArgs{
		UserID:      userID,
		Amount:      100,
		Source:      "order-completed",
		ReferenceID: &reference,
	})
	s.Require().NoError(err)
	s.Equal(existing.Points, account.Points)
	s.Equal(existing.LifetimePoints, account.LifetimePoints)
}

func (s *LedgerServiceTestSuite) TestEarn_RetriesOnSerializationConflict() {
	userID := int64(7)
	amount := int64(50)

	s.expectTxRepos()
	s.expectUOWDo(2)

	// первая попытка завершается конфликтом сериализации, вторая проходит.
	first := s.mockTransactionRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrConflict)
	s.mockTransactionRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(&domain.PointTransaction{ID: 2, UserID: userID}, nil).After(first)

	s.mockAccountRepo.EXPECT().Credit(gomock.Any(), gomock.Any()).
		Return(&domain.LoyaltyAccount{
			UserID:         userID,
			Points:         amount,
			LifetimePoints: amount,
			Tier:           domain.TierBronze,
		}, nil)

	s.mockNotifier.EXPECT().Enqueue(gomock.Any())

	account, err := s.service.Earn(s.T().Context(), EarnArgs{UserID: userID, Amount: amount, Source: "manual"})
	s.Require().NoError(err)
	s.Equal(amount, account.Points)
}

func (s *LedgerServiceTestSuite) TestSpend_InsufficientBalance() {
	userID := int64(10)

	s.expectTxRepos()
	s.expectUOWDo(1)

	s.mockAccountRepo.EXPECT().GetForUpdate(gomock.Any(), userID).
		Return(&domain.LoyaltyAccount{UserID: userID, Points: 30, LifetimePoints: 30}, nil)

	// ни журнал, ни баланс затронуты не будут: Create/Debit не ожидаются.
	_, err := s.service.Spend(s.T().Context(), SpendArgs{UserID: userID, Amount: 31, Source: "manual"})
	s.Require().ErrorIs(err, domain.ErrInsufficientBalance)
}

func (s *LedgerServiceTestSuite) TestSpend_AccountNotFound() {
	s.expectTxRepos()
	s.expectUOWDo(1)

	s.mockAccountRepo.EXPECT().GetForUpdate(gomock.Any(), int64(99)).
		Return(nil, domain.ErrRecordNotFound)

	_, err := s.service.Spend(s.T().Context(), SpendArgs{UserID: 99, Amount: 5, Source: "manual"})
	s.Require().ErrorIs(err, domain.ErrAccountNotFound)
}

func (s *LedgerServiceTestSuite) TestSpend_ExactBalance() {
	userID := int64(11)
	amount := int64(30)

	s.expectTxRepos()
	s.expectUOWDo(1)

	s.mockAccountRepo.EXPECT().GetForUpdate(gomock.Any(), userID).
		Return(&domain.LoyaltyAccount{UserID: userID, Points: amount, LifetimePoints: 100}, nil)

	s.mockTransactionRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.PointTransactionCreate) (*domain.PointTransaction, error) {
			s.Equal(domain.DirectionSpend, args.Direction)
			s.Equal(amount, args.Amount)
			return &domain.PointTransaction{ID: 3, UserID: userID}, nil
		})

	// списание в ноль допустимо, lifetime не меняется.
	s.mockAccountRepo.EXPECT().Debit(gomock.Any(), repoargs.AccountDebit{UserID: userID, Amount: amount}).
		Return(&domain.LoyaltyAccount{UserID: userID, Points: 0, LifetimePoints: 100}, nil)

	account, err := s.service.Spend(s.T().Context(), SpendArgs{UserID: userID, Amount: amount, Source: "manual"})
	s.Require().NoError(err)
	s.Equal(int64(0), account.Points)
	s.Equal(int64(100), account.LifetimePoints)
}

func (s *LedgerServiceTestSuite) TestGetAccount_NotFound() {
	s.mockAccountRepo.EXPECT().GetByUserID(gomock.Any(), int64(404)).
		Return(nil, domain.ErrRecordNotFound)

	_, err := s.service.GetAccount(s.T().Context(), 404)
	s.Require().ErrorIs(err, domain.ErrAccountNotFound)
}

func (s *LedgerServiceTestSuite) TestTransactions_DirectionFilter() {
	userID := int64(5)
	direction := domain.DirectionSpend
	expected := []domain.PointTransaction{
		{ID: 2, UserID: userID, Direction: direction, Amount: 10, CreatedAt: time.Now()},
	}

	s.mockTransactionRepo.EXPECT().
		GetByFilter(gomock.Any(), repoargs.PointTransactionFilter{UserID: userID, Direction: &direction}).
		Return(expected, nil)

	transactions, err := s.service.Transactions(s.T().Context(), userID, &direction)
	s.Require().NoError(err)
	s.Equal(expected, transactions)
}
