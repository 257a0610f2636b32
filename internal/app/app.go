package app

import (
	"context"
	"fmt"

	"github.com/fsdevblog/laverie-loyal/internal/repository/repoargs"

	"github.com/fsdevblog/laverie-loyal/internal/expiry"
	"github.com/fsdevblog/laverie-loyal/internal/transport/notifier"

	"github.com/fsdevblog/laverie-loyal/pkg/uow"

	"github.com/fsdevblog/laverie-loyal/internal/config"
	"github.com/fsdevblog/laverie-loyal/internal/repository/pgrepo"
	"github.com/fsdevblog/laverie-loyal/internal/service"
	"github.com/fsdevblog/laverie-loyal/internal/transport/api"
	"github.com/sirupsen/logrus"

	// driver for migration applying postgres.
	_ "github.com/golang-migrate/migrate/v4/database/postgres" //nolint:revive
	// driver to get migrations from files (*.sql in our case).
	"os/signal"
	"syscall"

	_ "github.com/golang-migrate/migrate/v4/source/file" //nolint:revive
	"github.com/jackc/pgx/v5/pgxpool"
)

type App struct {
	Config *config.Config
	Logger *logrus.Logger
}

func New(conf *config.Config, l *logrus.Logger) *App {
	return &App{
		Config: conf,
		Logger: l,
	}
}

func (a *App) Run() error {
	notifyCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Logger.Infof("Starting app with config: %+v", a.Config)
	conn, connErr := pgrepo.Connect(notifyCtx, a.Config.MigrationsDir, a.Config.DatabaseDSN, a.Logger)
	if connErr != nil {
		return fmt.Errorf("app run: %s", connErr.Error())
	}
	defer conn.Close()

	unitOfWork, uowErr := initUOW(conn)
	if uowErr != nil {
		return fmt.Errorf("app run: %s", uowErr.Error())
	}

	// При пустом адресе события никуда не отправляются.
	var notifierSvs service.Notifier = notifier.Noop{}
	if a.Config.NotifierAddress != "" {
		dispatcher := notifier.New(a.Config.NotifierAddress, a.Logger).
			SetWorkers(4) //nolint:mnd
		go dispatcher.Run(notifyCtx)
		notifierSvs = dispatcher
	}

	services, sErr := service.Factory(unitOfWork, notifierSvs)
	if sErr != nil {
		return fmt.Errorf("app run: %s", sErr.Error())
	}

	router, routerErr := api.New(api.RouterArgs{
		Logger:            a.Logger,
		LedgerService:     services.LedgerService,
		RewardService:     services.RewardService,
		RedemptionService: services.RedemptionService,
		JWTSecretKey:      []byte(a.Config.JWTSecret),
	})
	if routerErr != nil {
		return fmt.Errorf("app run: %s", routerErr.Error())
	}

	errChan := make(chan error, 1)

	go func() {
		if runErr := router.Run(a.Config.RunAddress); runErr != nil {
			errChan <- runErr
		}
	}()

	if a.Config.RedemptionTTL > 0 {
		sweeper := expiry.New(services.RedemptionService, a.Config.RedemptionTTL, a.Config.SweepInterval, a.Logger)
		go sweeper.Run(notifyCtx)
	}

	select {
	case <-notifyCtx.Done():
		return notifyCtx.Err() //nolint:wrapcheck
	case err := <-errChan:
		return err
	}
}

func initUOW(conn *pgxpool.Pool) (*uow.UnitOfWork, error) {
	unitOfWork := uow.NewUnitOfWork(conn)

	// loyalty account repo
	accountRepoFactoryFn := func(dbtx uow.DBTX) uow.Repository {
		return pgrepo.NewLoyaltyAccountRepository(dbtx)
	}
	if regErr := unitOfWork.Register(
		uow.RepositoryName(repoargs.LoyaltyAccountRepoName),
		accountRepoFactoryFn,
	); regErr != nil {
		return nil, fmt.Errorf("init UOW: %s", regErr.Error())
	}

	// point transaction repo
	transactionRepoFactoryFn := func(dbtx uow.DBTX) uow.Repository {
		return pgrepo.NewPointTransactionRepository(dbtx)
	}
	if regErr := unitOfWork.Register(
		uow.RepositoryName(repoargs.PointTransactionRepoName),
		transactionRepoFactoryFn,
	); regErr != nil {
		return nil, fmt.Errorf("init UOW: %s", regErr.Error())
	}

	// reward repo
	rewardRepoFactoryFn := func(dbtx uow.DBTX) uow.Repository {
		return pgrepo.NewRewardRepository(dbtx)
	}
	if regErr := unitOfWork.Register(uow.RepositoryName(repoargs.RewardRepoName), rewardRepoFactoryFn); regErr != nil {
		return nil, fmt.Errorf("init UOW: %s", regErr.Error())
	}

	// reward redemption repo
	redemptionRepoFactoryFn := func(dbtx uow.DBTX) uow.Repository {
		return pgrepo.NewRedemptionRepository(dbtx)
	}
	if regErr := unitOfWork.Register(
		uow.RepositoryName(repoargs.RedemptionRepoName),
		redemptionRepoFactoryFn,
	); regErr != nil {
		return nil, fmt.Errorf("init UOW: %s", regErr.Error())
	}

	return unitOfWork, nil
}
