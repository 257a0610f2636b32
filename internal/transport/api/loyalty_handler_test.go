package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/fsdevblog/laverie-loyal/internal/domain"
	"github.com/fsdevblog/laverie-loyal/internal/logger"
	"github.com/fsdevblog/laverie-loyal/internal/service"
	"github.com/fsdevblog/laverie-loyal/internal/transport/api/mocks"
	"github.com/fsdevblog/laverie-loyal/internal/transport/api/testutils"
	"github.com/fsdevblog/laverie-loyal/internal/transport/api/tokens"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"
)

type LoyaltyHandlerTestSuite struct {
	suite.Suite
	router            *gin.Engine
	mockLedgerService *mocks.MockLedgerServicer
	jwtSecret         []byte
}

func TestLoyaltyHandlerSuite(t *testing.T) {
	suite.Run(t, new(LoyaltyHandlerTestSuite))
}

func (s *LoyaltyHandlerTestSuite) SetupTest() {
	mockCtrl := gomock.NewController(s.T())
	defer mockCtrl.Finish()

	s.mockLedgerService = mocks.NewMockLedgerServicer(mockCtrl)
	s.jwtSecret = []byte("super secret key")

	var err error
	s.router, err = New(RouterArgs{
		Logger:        logger.New(os.Stdout),
		LedgerService: s.mockLedgerService,
		JWTSecretKey:  s.jwtSecret,
	})
	s.Require().NoError(err)
}

func (s *LoyaltyHandlerTestSuite) userToken(id int64) string {
	token, err := tokens.GenerateUserJWT(id, "", time.Hour, s.jwtSecret)
	s.Require().NoError(err)
	return token
}

func (s *LoyaltyHandlerTestSuite) adminToken(id int64) string {
	token, err := tokens.GenerateUserJWT(id, tokens.RoleAdmin, time.Hour, s.jwtSecret)
	s.Require().NoError(err)
	return token
}

func (s *LoyaltyHandlerTestSuite) TestShow() {
	var ownerID int64 = 1
	var strangerID int64 = 2

	account := &domain.LoyaltyAccount{
		UserID:         ownerID,
		Points:         150,
		LifetimePoints: 1200,
		Tier:           domain.TierSilver,
		UpdatedAt:      time.Now(),
	}

	s.mockLedgerService.EXPECT().GetAccount(gomock.Any(), ownerID).
		Return(account, nil).Times(2)
	s.mockLedgerService.EXPECT().GetAccount(gomock.Any(), int64(404)).
		Return(nil, domain.ErrAccountNotFound).Times(1)

	cases := []struct {
		name       string
		url        string
		jwtToken   string
		wantStatus int
	}{
		{name: "own account", url: "/api/loyalty/accounts/1", jwtToken: s.userToken(ownerID), wantStatus: http.StatusOK},
		{name: "admin reads any", url: "/api/loyalty/accounts/1", jwtToken: s.adminToken(100), wantStatus: http.StatusOK},
		{name: "foreign account", url: "/api/loyalty/accounts/1", jwtToken: s.userToken(strangerID), wantStatus: http.StatusForbidden},
		{name: "no account", url: "/api/loyalty/accounts/404", jwtToken: s.adminToken(100), wantStatus: http.StatusNotFound},
		{name: "not authorized", url: "/api/loyalty/accounts/1", wantStatus: http.StatusUnauthorized},
		{name: "bad id", url: "/api/loyalty/accounts/abc", jwtToken: s.userToken(ownerID), wantStatus: http.StatusBadRequest},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			args := testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodGet,
				URL:    t.url,
			}
			var reqOpts []func(*testutils.RequestOptions)
			if t.jwtToken != "" {
				reqOpts = append(reqOpts, testutils.WithHeader("Authorization", fmt.Sprintf("Bearer %s", t.jwtToken)))
			}
			res, err := testutils.MakeRequest(args, reqOpts...)
			s.Require().NoError(err)
			defer func() {
				closeErr := res.Body.Close()
				s.Require().NoError(closeErr)
			}()

			s.Equal(t.wantStatus, res.StatusCode)

			if t.wantStatus == http.StatusOK {
				var body AccountResponse
				s.Require().NoError(json.NewDecoder(res.Body).Decode(&body))
				s.Equal(account.Points, body.Points)
				s.Equal(string(account.Tier), body.Tier)
			}
		})
	}
}

func (s *LoyaltyHandlerTestSuite) TestEarn() {
	adminJWT := s.adminToken(100)
	userJWT := s.userToken(1)

	s.mockLedgerService.EXPECT().
		Earn(gomock.Any(), service.EarnArgs{UserID: 1, Amount: 500, Source: "order-completed"}).
		Return(&domain.LoyaltyAccount{UserID: 1, Points: 500, LifetimePoints: 500, Tier: domain.TierBronze}, nil).
		Times(1)
	s.mockLedgerService.EXPECT().
		Earn(gomock.Any(), service.EarnArgs{UserID: 1, Amount: -5, Source: "manual"}).
		Return(nil, domain.ErrNonPositiveAmount).
		Times(1)

	cases := []struct {
		name       string
		url        string
		payload    string
		jwtToken   string
		wantStatus int
	}{
		{
			name:       "ok",
			url:        "/api/loyalty/accounts/1/earn",
			payload:    `{"amount":500,"source":"order-completed"}`,
			jwtToken:   adminJWT,
			wantStatus: http.StatusOK,
		}, {
			name:       "negative amount",
			url:        "/api/loyalty/accounts/1/earn",
			payload:    `{"amount":-5,"source":"manual"}`,
			jwtToken:   adminJWT,
			wantStatus: http.StatusUnprocessableEntity,
		}, {
			name:       "missing source",
			url:        "/api/loyalty/accounts/1/earn",
			payload:    `{"amount":500}`,
			jwtToken:   adminJWT,
			wantStatus: http.StatusBadRequest,
		}, {
			name:       "bad user id",
			url:        "/api/loyalty/accounts/abc/earn",
			payload:    `{"amount":500,"source":"manual"}`,
			jwtToken:   adminJWT,
			wantStatus: http.StatusBadRequest,
		}, {
			name:       "not admin",
			url:        "/api/loyalty/accounts/1/earn",
			payload:    `{"amount":500,"source":"manual"}`,
			jwtToken:   userJWT,
			wantStatus: http.StatusForbidden,
		}, {
			name:       "not authorized",
			url:        "/api/loyalty/accounts/1/earn",
			payload:    `{"amount":500,"source":"manual"}`,
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			args := testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPost,
				URL:    t.url,
				Body:   bytes.NewReader([]byte(t.payload)),
			}
			reqOpts := []func(*testutils.RequestOptions){
				testutils.WithHeader("Content-Type", "application/json"),
			}
			if t.jwtToken != "" {
				reqOpts = append(reqOpts, testutils.WithHeader("Authorization", fmt.Sprintf("Bearer %s", t.jwtToken)))
			}
			res, err := testutils.MakeRequest(args, reqOpts...)
			s.Require().NoError(err)
			defer func() {
				closeErr := res.Body.Close()
				s.Require().NoError(closeErr)
			}()

			s.Equal(t.wantStatus, res.StatusCode)
		})
	}
}

func (s *LoyaltyHandlerTestSuite) TestSpend() {
	adminJWT := s.adminToken(100)

	s.mockLedgerService.EXPECT().
		Spend(gomock.Any(), service.SpendArgs{UserID: 1, Amount: 50, Source: "manual"}).
		Return(&domain.LoyaltyAccount{UserID: 1, Points: 0, LifetimePoints: 50, Tier: domain.TierBronze}, nil).
		Times(1)
	s.mockLedgerService.EXPECT().
		Spend(gomock.Any(), service.SpendArgs{UserID: 1, Amount: 100, Source: "manual"}).
		Return(nil, domain.ErrInsufficientBalance).
		Times(1)
	s.mockLedgerService.EXPECT().
		Spend(gomock.Any(), service.SpendArgs{UserID: 404, Amount: 10, Source: "manual"}).
		Return(nil, domain.ErrAccountNotFound).
		Times(1)

	cases := []struct {
		name       string
		url        string
		payload    string
		wantStatus int
	}{
		{name: "ok", url: "/api/loyalty/accounts/1/spend", payload: `{"amount":50,"source":"manual"}`, wantStatus: http.StatusOK},
		{name: "not enough points", url: "/api/loyalty/accounts/1/spend", payload: `{"amount":100,"source":"manual"}`, wantStatus: http.StatusPaymentRequired},
		{name: "no account", url: "/api/loyalty/accounts/404/spend", payload: `{"amount":10,"source":"manual"}`, wantStatus: http.StatusNotFound},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			args := testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPost,
				URL:    t.url,
				Body:   bytes.NewReader([]byte(t.payload)),
			}
			res, err := testutils.MakeRequest(args,
				testutils.WithHeader("Content-Type", "application/json"),
				testutils.WithHeader("Authorization", fmt.Sprintf("Bearer %s", adminJWT)),
			)
			s.Require().NoError(err)
			defer func() {
				closeErr := res.Body.Close()
				s.Require().NoError(closeErr)
			}()

			s.Equal(t.wantStatus, res.StatusCode)
		})
	}
}

func (s *LoyaltyHandlerTestSuite) TestTransactions() {
	adminJWT := s.adminToken(100)
	direction := domain.DirectionEarn

	transactions := []domain.PointTransaction{
		{ID: 2, UserID: 1, Direction: domain.DirectionEarn, Amount: 100, Source: "order-completed", CreatedAt: time.Now()},
	}

	s.mockLedgerService.EXPECT().
		Transactions(gomock.Any(), int64(1), gomock.Nil()).
		Return(transactions, nil).Times(1)
	s.mockLedgerService.EXPECT().
		Transactions(gomock.Any(), int64(1), &direction).
		Return(transactions, nil).Times(1)

	cases := []struct {
		name       string
		url        string
		wantStatus int
	}{
		{name: "all", url: "/api/loyalty/accounts/1/transactions", wantStatus: http.StatusOK},
		{name: "filtered", url: "/api/loyalty/accounts/1/transactions?direction=earn", wantStatus: http.StatusOK},
		{name: "bad direction", url: "/api/loyalty/accounts/1/transactions?direction=sideways", wantStatus: http.StatusUnprocessableEntity},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			args := testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodGet,
				URL:    t.url,
			}
			res, err := testutils.MakeRequest(args,
				testutils.WithHeader("Authorization", fmt.Sprintf("Bearer %s", adminJWT)),
			)
			s.Require().NoError(err)
			defer func() {
				closeErr := res.Body.Close()
				s.Require().NoError(closeErr)
			}()

			s.Equal(t.wantStatus, res.StatusCode)
		})
	}
}
