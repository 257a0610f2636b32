package domain

type TierType string

const (
	TierBronze   TierType = "BRONZE"
	TierSilver   TierType = "SILVER"
	TierGold     TierType = "GOLD"
	TierPlatinum TierType = "PLATINUM"
)

type DirectionType string

const (
	DirectionEarn  DirectionType = "earn"
	DirectionSpend DirectionType = "spend"
)

type RewardType string

const (
	RewardDiscountPercentage RewardType = "discount_percentage"
	RewardDiscountFixed      RewardType = "discount_fixed"
	RewardFreeService        RewardType = "free_service"
	RewardGift               RewardType = "gift"
)

type RedemptionStatusType string

const (
	RedemptionStatusRedeemed RedemptionStatusType = "redeemed"
	RedemptionStatusClaimed  RedemptionStatusType = "claimed"
	RedemptionStatusExpired  RedemptionStatusType = "expired"
)
