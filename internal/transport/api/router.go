package api

import (
	"time"

	"github.com/fsdevblog/laverie-loyal/internal/transport/api/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	DefaultServiceTimeout = 3 * time.Second
)

const (
	RouteGroup           = "/api"
	AccountRoute         = "/loyalty/accounts/:userID"
	TransactionsRoute    = "/loyalty/accounts/:userID/transactions"
	EarnRoute            = "/loyalty/accounts/:userID/earn"
	SpendRoute           = "/loyalty/accounts/:userID/spend"
	RewardsRoute         = "/loyalty/rewards"
	RewardRoute          = "/loyalty/rewards/:rewardID"
	RedeemRoute          = "/loyalty/rewards/:rewardID/redeem"
	RedemptionsRoute     = "/loyalty/redemptions"
	RedemptionRoute      = "/loyalty/redemptions/:redemptionID"
	RedemptionClaimRoute = "/loyalty/redemptions/:redemptionID/claim"
)

type RouterArgs struct {
	Logger            *logrus.Logger
	LedgerService     LedgerServicer
	RewardService     RewardServicer
	RedemptionService RedemptionServicer
	JWTSecretKey      []byte
}

func New(args RouterArgs) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery())
	if args.Logger != nil {
		r.Use(middlewares.Logger(args.Logger))
	}
	r.Use(middlewares.Errors())

	if err := registerValidators(); err != nil {
		return nil, err
	}

	loyaltyHandler := NewLoyaltyHandler(args.LedgerService)
	rewardsHandler := NewRewardsHandler(args.RewardService)
	redemptionsHandler := NewRedemptionsHandler(args.RedemptionService)

	api := r.Group(RouteGroup)
	api.Use(middlewares.AuthRequired(args.JWTSecretKey))
	// ниже все роуты группы требуют авторизованного пользователя.
	api.GET(AccountRoute, loyaltyHandler.Show)
	api.GET(RewardsRoute, rewardsHandler.Index)
	api.POST(RedeemRoute, redemptionsHandler.Redeem)
	api.GET(RedemptionRoute, redemptionsHandler.Show)

	admin := api.Group("")
	admin.Use(middlewares.AdminRequired())
	admin.POST(EarnRoute, loyaltyHandler.Earn)
	admin.POST(SpendRoute, loyaltyHandler.Spend)
	admin.GET(TransactionsRoute, loyaltyHandler.Transactions)
	admin.POST(RewardsRoute, rewardsHandler.Create)
	admin.PATCH(RewardRoute, rewardsHandler.Update)
	admin.DELETE(RewardRoute, rewardsHandler.Deactivate)
	admin.GET(RedemptionsRoute, redemptionsHandler.Pending)
	admin.POST(RedemptionClaimRoute, redemptionsHandler.Claim)

	return r, nil
}
