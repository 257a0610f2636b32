package service

import (
	"fmt"

	"github.com/fsdevblog/laverie-loyal/pkg/uow"
)

type AppServices struct {
	LedgerService     *LedgerService
	RewardService     *RewardService
	RedemptionService *RedemptionService
}

// Factory единственная точка конструирования сервисов в процессе.
func Factory(unitOfWork uow.UOW, notifier Notifier) (*AppServices, error) {
	ledgerService, ledgerServiceErr := NewLedgerService(unitOfWork, notifier)
	if ledgerServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", ledgerServiceErr.Error())
	}

	rewardService, rewardServiceErr := NewRewardService(unitOfWork)
	if rewardServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", rewardServiceErr.Error())
	}

	redemptionService, redemptionServiceErr := NewRedemptionService(unitOfWork, ledgerService, notifier)
	if redemptionServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", redemptionServiceErr.Error())
	}

	return &AppServices{
		LedgerService:     ledgerService,
		RewardService:     rewardService,
		RedemptionService: redemptionService,
	}, nil
}
