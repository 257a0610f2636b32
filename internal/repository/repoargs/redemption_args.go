package repoargs

import (
	"time"

	"github.com/fsdevblog/laverie-loyal/internal/domain"
	"github.com/google/uuid"
)

type RedemptionCreate struct {
	ID               uuid.UUID
	UserID           int64
	RewardID         int64
	Status           domain.RedemptionStatusType
	VerificationCode string
	// ClaimedAt заполняется сразу для наград, не требующих физической выдачи.
	ClaimedAt *time.Time
}

type RedemptionClaim struct {
	ID               uuid.UUID
	ClaimedByAdminID int64
	Notes            *string
}
