package pgrepo

import (
	"context"

	"github.com/fsdevblog/laverie-loyal/internal/domain"
	"github.com/fsdevblog/laverie-loyal/internal/repository/repoargs"
	"github.com/fsdevblog/laverie-loyal/pkg/uow"
)

const transactionColumns = "id, user_id, direction, amount, source, reference_id, created_at, updated_at"

type PointTransactionRepository struct {
	conn uow.DBTX
}

func NewPointTransactionRepository(conn uow.DBTX) *PointTransactionRepository {
	return &PointTransactionRepository{conn: conn}
}

// Create добавляет запись в журнал операций. Записи неизменяемы, таблица
// append-only. Повторная операция с тем же (user_id, reference_id, direction)
// упирается в частичный уникальный индекс и возвращает domain.ErrDuplicateKey.
func (r *PointTransactionRepository) Create(
	ctx context.Context,
	args repoargs.PointTransactionCreate,
) (*domain.PointTransaction, error) {
	row := r.conn.QueryRow(ctx, `
		INSERT INTO point_transactions (user_id, direction, amount, source, reference_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+transactionColumns,
		args.UserID, args.Direction, args.Amount, args.Source, args.ReferenceID)

	transaction, err := scanTransaction(row)
	if err != nil {
		return nil, convertErr(err, "creating point transaction for user %d", args.UserID)
	}
	return transaction, nil
}

// GetByFilter возвращает журнал операций юзера, отсортированный по дате
// создания по убыванию. Фильтр по направлению опционален.
func (r *PointTransactionRepository) GetByFilter(
	ctx context.Context,
	filter repoargs.PointTransactionFilter,
) ([]domain.PointTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM point_transactions WHERE user_id = $1`
	queryArgs := []any{filter.UserID}
	if filter.Direction != nil {
		query += ` AND direction = $2`
		queryArgs = append(queryArgs, *filter.Direction)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.conn.Query(ctx, query, queryArgs...)
	if err != nil {
		return nil, convertErr(err, "getting point transactions of user %d", filter.UserID)
	}
	defer rows.Close()

	var transactions []domain.PointTransaction
	for rows.Next() {
		transaction, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning point transaction of user %d", filter.UserID)
		}
		transactions = append(transactions, *transaction)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "getting point transactions of user %d", filter.UserID)
	}
	return transactions, nil
}

func scanTransaction(row rowScanner) (*domain.PointTransaction, error) {
	var transaction domain.PointTransaction
	if err := row.Scan(
		&transaction.ID,
		&transaction.UserID,
		&transaction.Direction,
		&transaction.Amount,
		&transaction.Source,
		&transaction.ReferenceID,
		&transaction.CreatedAt,
		&transaction.UpdatedAt,
	); err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &transaction, nil
}
