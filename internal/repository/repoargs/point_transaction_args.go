package repoargs

import "github.com/fsdevblog/laverie-loyal/internal/domain"

type PointTransactionCreate struct {
	UserID      int64
	Direction   domain.DirectionType
	Amount      int64
	Source      string
	ReferenceID *string
}

type PointTransactionFilter struct {
	UserID    int64
	Direction *domain.DirectionType
}
