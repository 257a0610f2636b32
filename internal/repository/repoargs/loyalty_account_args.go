package repoargs

import "github.com/fsdevblog/laverie-loyal/internal/domain"

// AccountCredit аргументы атомарного upsert начисления: если аккаунта нет,
// он создается с points = lifetime_points = Amount.
type AccountCredit struct {
	UserID int64
	Amount int64
}

// AccountDebit аргументы списания. Lifetime баллы списанием не затрагиваются.
type AccountDebit struct {
	UserID int64
	Amount int64
}

type AccountSetTier struct {
	UserID int64
	Tier   domain.TierType
}
