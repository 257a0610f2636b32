package pgrepo

import (
	"context"
	"time"

	"github.com/fsdevblog/laverie-loyal/internal/domain"
	"github.com/fsdevblog/laverie-loyal/internal/repository/repoargs"
	"github.com/fsdevblog/laverie-loyal/pkg/uow"
	"github.com/google/uuid"
)

const redemptionColumns = "id, user_id, reward_id, status, verification_code, " +
	"claimed_at, claimed_by_admin_id, notes, created_at, updated_at"

type RedemptionRepository struct {
	conn uow.DBTX
}

func NewRedemptionRepository(conn uow.DBTX) *RedemptionRepository {
	return &RedemptionRepository{conn: conn}
}

func (r *RedemptionRepository) Create(
	ctx context.Context,
	args repoargs.RedemptionCreate,
) (*domain.RewardRedemption, error) {
	row := r.conn.QueryRow(ctx, `
		INSERT INTO reward_redemptions (id, user_id, reward_id, status, verification_code, claimed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+redemptionColumns,
		args.ID, args.UserID, args.RewardID, args.Status, args.VerificationCode, args.ClaimedAt)

	redemption, err := scanRedemption(row)
	if err != nil {
		return nil, convertErr(err, "creating redemption for user %d", args.UserID)
	}
	return redemption, nil
}

func (r *RedemptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.RewardRedemption, error) {
	row := r.conn.QueryRow(ctx,
		`SELECT `+redemptionColumns+` FROM reward_redemptions WHERE id = $1`, id)

	redemption, err := scanRedemption(row)
	if err != nil {
		return nil, convertErr(err, "finding redemption %s", id)
	}
	return redemption, nil
}

// GetForUpdate читает redemption с блокировкой строки. Вызывать только внутри
// транзакции: блокировка исключает двойную выдачу при конкурентных claim.
func (r *RedemptionRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.RewardRedemption, error) {
	row := r.conn.QueryRow(ctx,
		`SELECT `+redemptionColumns+` FROM reward_redemptions WHERE id = $1 FOR UPDATE`, id)

	redemption, err := scanRedemption(row)
	if err != nil {
		return nil, convertErr(err, "locking redemption %s", id)
	}
	return redemption, nil
}

// Claim переводит redemption в статус claimed. Условие по статусу в WHERE
// гарантирует монотонность перехода даже без предварительной блокировки.
func (r *RedemptionRepository) Claim(
	ctx context.Context,
	args repoargs.RedemptionClaim,
) (*domain.RewardRedemption, error) {
	row := r.conn.QueryRow(ctx, `
		UPDATE reward_redemptions
		SET status = $2, claimed_at = now(), claimed_by_admin_id = $3, notes = $4, updated_at = now()
		WHERE id = $1 AND status = $5
		RETURNING `+redemptionColumns,
		args.ID, domain.RedemptionStatusClaimed, args.ClaimedByAdminID, args.Notes, domain.RedemptionStatusRedeemed)

	redemption, err := scanRedemption(row)
	if err != nil {
		return nil, convertErr(err, "claiming redemption %s", args.ID)
	}
	return redemption, nil
}

// GetByStatus возвращает redemption записи в указанном статусе,
// отсортированные по дате создания по возрастанию (очередь на выдачу).
func (r *RedemptionRepository) GetByStatus(
	ctx context.Context,
	status domain.RedemptionStatusType,
) ([]domain.RewardRedemption, error) {
	rows, err := r.conn.Query(ctx,
		`SELECT `+redemptionColumns+` FROM reward_redemptions WHERE status = $1 ORDER BY created_at ASC`,
		status)
	if err != nil {
		return nil, convertErr(err, "getting redemptions by status %s", status)
	}
	defer rows.Close()

	var redemptions []domain.RewardRedemption
	for rows.Next() {
		redemption, scanErr := scanRedemption(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning redemption")
		}
		redemptions = append(redemptions, *redemption)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "getting redemptions by status %s", status)
	}
	return redemptions, nil
}

// ExpireOlderThan помечает просроченными redeemed записи старше cutoff.
// Возвращает кол-во затронутых строк. Статус expired терминальный.
func (r *RedemptionRepository) ExpireOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.conn.Exec(ctx, `
		UPDATE reward_redemptions
		SET status = $1, updated_at = now()
		WHERE status = $2 AND created_at < $3`,
		domain.RedemptionStatusExpired, domain.RedemptionStatusRedeemed, cutoff)
	if err != nil {
		return 0, convertErr(err, "expiring redemptions older than %s", cutoff)
	}
	return tag.RowsAffected(), nil
}

func scanRedemption(row rowScanner) (*domain.RewardRedemption, error) {
	var redemption domain.RewardRedemption
	if err := row.Scan(
		&redemption.ID,
		&redemption.UserID,
		&redemption.RewardID,
		&redemption.Status,
		&redemption.VerificationCode,
		&redemption.ClaimedAt,
		&redemption.ClaimedByAdminID,
		&redemption.Notes,
		&redemption.CreatedAt,
		&redemption.UpdatedAt,
	); err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &redemption, nil
}
