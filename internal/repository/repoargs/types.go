package repoargs

type RepositoryName string

const (
	LoyaltyAccountRepoName   RepositoryName = "loyalty_account"
	PointTransactionRepoName RepositoryName = "point_transaction"
	RewardRepoName           RepositoryName = "reward"
	RedemptionRepoName       RepositoryName = "reward_redemption"
)
