package pgrepo

import (
	"context"

	"github.com/fsdevblog/laverie-loyal/internal/domain"
	"github.com/fsdevblog/laverie-loyal/internal/repository/repoargs"
	"github.com/fsdevblog/laverie-loyal/pkg/uow"
	"github.com/shopspring/decimal"
)

// value читается с кастом в text: pgx не знает про shopspring numeric.
const rewardColumns = "id, name, description, type, points_cost, value::text, is_active, created_at, updated_at"

type RewardRepository struct {
	conn uow.DBTX
}

func NewRewardRepository(conn uow.DBTX) *RewardRepository {
	return &RewardRepository{conn: conn}
}

func (r *RewardRepository) Create(ctx context.Context, args repoargs.RewardCreate) (*domain.Reward, error) {
	row := r.conn.QueryRow(ctx, `
		INSERT INTO rewards (name, description, type, points_cost, value, is_active)
		VALUES ($1, $2, $3, $4, $5::numeric, TRUE)
		RETURNING `+rewardColumns,
		args.Name, args.Description, args.Type, args.PointsCost, args.Value.String())

	reward, err := scanReward(row)
	if err != nil {
		return nil, convertErr(err, "creating reward `%s`", args.Name)
	}
	return reward, nil
}

// Update обновляет только переданные (не nil) поля.
func (r *RewardRepository) Update(ctx context.Context, args repoargs.RewardUpdate) (*domain.Reward, error) {
	var value *string
	if args.Value != nil {
		s := args.Value.String()
		value = &s
	}
	row := r.conn.QueryRow(ctx, `
		UPDATE rewards
		SET name        = COALESCE($2, name),
		    description = COALESCE($3, description),
		    points_cost = COALESCE($4, points_cost),
		    value       = COALESCE($5::numeric, value),
		    is_active   = COALESCE($6, is_active),
		    updated_at  = now()
		WHERE id = $1
		RETURNING `+rewardColumns,
		args.ID, args.Name, args.Description, args.PointsCost, value, args.IsActive)

	reward, err := scanReward(row)
	if err != nil {
		return nil, convertErr(err, "updating reward %d", args.ID)
	}
	return reward, nil
}

// Deactivate скрывает награду от новых обменов. Существующие redemption записи
// не затрагиваются.
func (r *RewardRepository) Deactivate(ctx context.Context, id int64) (*domain.Reward, error) {
	row := r.conn.QueryRow(ctx, `
		UPDATE rewards SET is_active = FALSE, updated_at = now()
		WHERE id = $1
		RETURNING `+rewardColumns, id)

	reward, err := scanReward(row)
	if err != nil {
		return nil, convertErr(err, "deactivating reward %d", id)
	}
	return reward, nil
}

func (r *RewardRepository) FindByID(ctx context.Context, id int64) (*domain.Reward, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+rewardColumns+` FROM rewards WHERE id = $1`, id)

	reward, err := scanReward(row)
	if err != nil {
		return nil, convertErr(err, "finding reward %d", id)
	}
	return reward, nil
}

func (r *RewardRepository) GetActive(ctx context.Context) ([]domain.Reward, error) {
	return r.getList(ctx, `SELECT `+rewardColumns+` FROM rewards WHERE is_active ORDER BY points_cost ASC`)
}

// GetActiveUpToCost возвращает активные награды со стоимостью не выше maxCost.
// Используется для проекции "доступные награды" по текущему балансу юзера.
func (r *RewardRepository) GetActiveUpToCost(ctx context.Context, maxCost int64) ([]domain.Reward, error) {
	return r.getList(ctx,
		`SELECT `+rewardColumns+` FROM rewards WHERE is_active AND points_cost <= $1 ORDER BY points_cost ASC`,
		maxCost)
}

func (r *RewardRepository) getList(ctx context.Context, query string, args ...any) ([]domain.Reward, error) {
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, convertErr(err, "listing rewards")
	}
	defer rows.Close()

	var rewards []domain.Reward
	for rows.Next() {
		reward, scanErr := scanReward(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning reward")
		}
		rewards = append(rewards, *reward)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "listing rewards")
	}
	return rewards, nil
}

func scanReward(row rowScanner) (*domain.Reward, error) {
	var reward domain.Reward
	var rawValue string
	if err := row.Scan(
		&reward.ID,
		&reward.Name,
		&reward.Description,
		&reward.Type,
		&reward.PointsCost,
		&rawValue,
		&reward.IsActive,
		&reward.CreatedAt,
		&reward.UpdatedAt,
	); err != nil {
		return nil, err //nolint:wrapcheck
	}
	value, valueErr := decimal.NewFromString(rawValue)
	if valueErr != nil {
		return nil, valueErr //nolint:wrapcheck
	}
	reward.Value = value
	return &reward, nil
}
