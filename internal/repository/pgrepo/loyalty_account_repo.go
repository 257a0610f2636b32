package pgrepo

import (
	"context"

	"github.com/fsdevblog/laverie-loyal/internal/domain"
	"github.com/fsdevblog/laverie-loyal/internal/repository/repoargs"
	"github.com/fsdevblog/laverie-loyal/pkg/uow"
)

const accountColumns = "user_id, points, lifetime_points, tier, created_at, updated_at"

type LoyaltyAccountRepository struct {
	conn uow.DBTX
}

func NewLoyaltyAccountRepository(conn uow.DBTX) *LoyaltyAccountRepository {
	return &LoyaltyAccountRepository{conn: conn}
}

// Credit атомарно начисляет баллы. Если аккаунта нет, создает его одним upsert
// запросом: ветка "существует или нет" решается под блокировкой строки, а не
// отдельным чтением. Уровень при вставке ставится BRONZE, пересчет делает
// сервисный слой в той же транзакции.
func (r *LoyaltyAccountRepository) Credit(
	ctx context.Context,
	args repoargs.AccountCredit,
) (*domain.LoyaltyAccount, error) {
	row := r.conn.QueryRow(ctx, `
		INSERT INTO loyalty_accounts (user_id, points, lifetime_points, tier)
		VALUES ($1, $2, $2, 'BRONZE')
		ON CONFLICT (user_id) DO UPDATE
		SET points          = loyalty_accounts.points + EXCLUDED.points,
		    lifetime_points = loyalty_accounts.lifetime_points + EXCLUDED.points,
		    updated_at      = now()
		RETURNING `+accountColumns,
		args.UserID, args.Amount)

	account, err := scanAccount(row)
	if err != nil {
		return nil, convertErr(err, "crediting account of user %d", args.UserID)
	}
	return account, nil
}

// Debit уменьшает баланс. Lifetime баллы не затрагиваются. Проверка
// достаточности баланса лежит на сервисном слое, вызывающем Debit после
// GetForUpdate в одной транзакции; CHECK constraint points >= 0 страхует схему.
func (r *LoyaltyAccountRepository) Debit(
	ctx context.Context,
	args repoargs.AccountDebit,
) (*domain.LoyaltyAccount, error) {
	row := r.conn.QueryRow(ctx, `
		UPDATE loyalty_accounts
		SET points = points - $2, updated_at = now()
		WHERE user_id = $1
		RETURNING `+accountColumns,
		args.UserID, args.Amount)

	account, err := scanAccount(row)
	if err != nil {
		return nil, convertErr(err, "debiting account of user %d", args.UserID)
	}
	return account, nil
}

func (r *LoyaltyAccountRepository) SetTier(ctx context.Context, args repoargs.AccountSetTier) error {
	tag, err := r.conn.Exec(ctx, `
		UPDATE loyalty_accounts SET tier = $2, updated_at = now() WHERE user_id = $1`,
		args.UserID, args.Tier)
	if err != nil {
		return convertErr(err, "setting tier for user %d", args.UserID)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(errNoRowsAffected, "setting tier for user %d", args.UserID)
	}
	return nil
}

func (r *LoyaltyAccountRepository) GetByUserID(ctx context.Context, userID int64) (*domain.LoyaltyAccount, error) {
	row := r.conn.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM loyalty_accounts WHERE user_id = $1`, userID)

	account, err := scanAccount(row)
	if err != nil {
		return nil, convertErr(err, "getting account of user %d", userID)
	}
	return account, nil
}

// GetForUpdate читает аккаунт с блокировкой строки. Вызывать только внутри
// транзакции: блокировка сериализует конкурентные earn/spend по одному юзеру.
func (r *LoyaltyAccountRepository) GetForUpdate(ctx context.Context, userID int64) (*domain.LoyaltyAccount, error) {
	row := r.conn.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM loyalty_accounts WHERE user_id = $1 FOR UPDATE`, userID)

	account, err := scanAccount(row)
	if err != nil {
		return nil, convertErr(err, "locking account of user %d", userID)
	}
	return account, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.LoyaltyAccount, error) {
	var account domain.LoyaltyAccount
	if err := row.Scan(
		&account.UserID,
		&account.Points,
		&account.LifetimePoints,
		&account.Tier,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &account, nil
}
