package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/fsdevblog/laverie-loyal/internal/domain"
	"github.com/fsdevblog/laverie-loyal/internal/logger"
	"github.com/fsdevblog/laverie-loyal/internal/repository/repoargs"
	"github.com/fsdevblog/laverie-loyal/internal/transport/api/mocks"
	"github.com/fsdevblog/laverie-loyal/internal/transport/api/testutils"
	"github.com/fsdevblog/laverie-loyal/internal/transport/api/tokens"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type RewardsHandlerTestSuite struct {
	suite.Suite
	router            *gin.Engine
	mockRewardService *mocks.MockRewardServicer
	jwtSecret         []byte
}

func TestRewardsHandlerSuite(t *testing.T) {
	suite.Run(t, new(RewardsHandlerTestSuite))
}

func (s *RewardsHandlerTestSuite) SetupTest() {
	mockCtrl := gomock.NewController(s.T())
	defer mockCtrl.Finish()

	s.mockRewardService = mocks.NewMockRewardServicer(mockCtrl)
	s.jwtSecret = []byte("super secret key")

	var err error
	s.router, err = New(RouterArgs{
		Logger:        logger.New(os.Stdout),
		RewardService: s.mockRewardService,
		JWTSecretKey:  s.jwtSecret,
	})
	s.Require().NoError(err)
}

func (s *RewardsHandlerTestSuite) token(id int64, role string) string {
	token, err := tokens.GenerateUserJWT(id, role, time.Hour, s.jwtSecret)
	s.Require().NoError(err)
	return token
}

func (s *RewardsHandlerTestSuite) TestIndex() {
	var userID int64 = 1
	userJWT := s.token(userID, "")

	catalog := []domain.Reward{
		{ID: 1, Name: "Скидка 10%", Type: domain.RewardDiscountPercentage, PointsCost: 100, Value: decimal.NewFromInt(10), IsActive: true},
		{ID: 2, Name: "Бесплатная стирка", Type: domain.RewardFreeService, PointsCost: 800, IsActive: true},
	}
	affordable := catalog[:1]

	s.mockRewardService.EXPECT().ListActive(gomock.Any()).Return(catalog, nil).Times(1)
	s.mockRewardService.EXPECT().AvailableFor(gomock.Any(), userID).Return(affordable, nil).Times(1)

	cases := []struct {
		name    string
		url     string
		wantLen int
	}{
		{name: "full catalog", url: RouteGroup + RewardsRoute, wantLen: 2},
		{name: "affordable only", url: RouteGroup + RewardsRoute + "?available=true", wantLen: 1},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			res, err := testutils.MakeRequest(testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodGet,
				URL:    t.url,
			}, testutils.WithHeader("Authorization", fmt.Sprintf("Bearer %s", userJWT)))
			s.Require().NoError(err)
			defer func() {
				closeErr := res.Body.Close()
				s.Require().NoError(closeErr)
			}()

			s.Require().Equal(http.StatusOK, res.StatusCode)

			var body []RewardResponse
			s.Require().NoError(json.NewDecoder(res.Body).Decode(&body))
			s.Len(body, t.wantLen)
		})
	}
}

func (s *RewardsHandlerTestSuite) TestCreate() {
	adminJWT := s.token(100, tokens.RoleAdmin)
	userJWT := s.token(1, "")

	s.mockRewardService.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.RewardCreate) (*domain.Reward, error) {
			s.Equal(domain.RewardGift, args.Type)
			s.Equal(int64(500), args.PointsCost)
			return &domain.Reward{
				ID:         3,
				Name:       args.Name,
				Type:       args.Type,
				PointsCost: args.PointsCost,
				IsActive:   true,
			}, nil
		}).Times(1)

	cases := []struct {
		name       string
		payload    string
		jwtToken   string
		wantStatus int
	}{
		{
			name:       "ok",
			payload:    `{"name":"Кружка","type":"gift","points_cost":500}`,
			jwtToken:   adminJWT,
			wantStatus: http.StatusCreated,
		}, {
			name:       "unknown type",
			payload:    `{"name":"Кружка","type":"teleport","points_cost":500}`,
			jwtToken:   adminJWT,
			wantStatus: http.StatusBadRequest,
		}, {
			name:       "zero cost",
			payload:    `{"name":"Кружка","type":"gift","points_cost":0}`,
			jwtToken:   adminJWT,
			wantStatus: http.StatusBadRequest,
		}, {
			name:       "not admin",
			payload:    `{"name":"Кружка","type":"gift","points_cost":500}`,
			jwtToken:   userJWT,
			wantStatus: http.StatusForbidden,
		},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			res, err := testutils.MakeRequest(testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPost,
				URL:    RouteGroup + RewardsRoute,
				Body:   bytes.NewReader([]byte(t.payload)),
			},
				testutils.WithHeader("Content-Type", "application/json"),
				testutils.WithHeader("Authorization", fmt.Sprintf("Bearer %s", t.jwtToken)),
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

func (s *RewardsHandlerTestSuite) TestUpdate() {
	adminJWT := s.token(100, tokens.RoleAdmin)

	newCost := int64(250)
	s.mockRewardService.EXPECT().Update(gomock.Any(), repoargs.RewardUpdate{ID: 1, PointsCost: &newCost}).
		Return(&domain.Reward{ID: 1, PointsCost: newCost, IsActive: true}, nil).Times(1)
	s.mockRewardService.EXPECT().Update(gomock.Any(), repoargs.RewardUpdate{ID: 404, PointsCost: &newCost}).
		Return(nil, domain.ErrRewardNotFound).Times(1)

	cases := []struct {
		name       string
		url        string
		wantStatus int
	}{
		{name: "ok", url: "/api/loyalty/rewards/1", wantStatus: http.StatusOK},
		{name: "not found", url: "/api/loyalty/rewards/404", wantStatus: http.StatusNotFound},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			res, err := testutils.MakeRequest(testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPatch,
				URL:    t.url,
				Body:   bytes.NewReader([]byte(`{"points_cost":250}`)),
			},
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

func (s *RewardsHandlerTestSuite) TestDeactivate() {
	adminJWT := s.token(100, tokens.RoleAdmin)

	s.mockRewardService.EXPECT().Deactivate(gomock.Any(), int64(1)).
		Return(&domain.Reward{ID: 1, IsActive: false}, nil)

	res, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodDelete,
		URL:    "/api/loyalty/rewards/1",
	}, testutils.WithHeader("Authorization", fmt.Sprintf("Bearer %s", adminJWT)))
	s.Require().NoError(err)
	defer func() {
		closeErr := res.Body.Close()
		s.Require().NoError(closeErr)
	}()

	s.Require().Equal(http.StatusOK, res.StatusCode)

	var body RewardResponse
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&body))
	s.False(body.IsActive)
}
