package api

import (
	"context"
	"errors"
	"time"

	"github.com/fsdevblog/laverie-loyal/internal/domain"
	"github.com/fsdevblog/laverie-loyal/internal/service"
	"github.com/gin-gonic/gin"

	"net/http"
)

type LoyaltyHandler struct {
	svs LedgerServicer
}

func NewLoyaltyHandler(svs LedgerServicer) *LoyaltyHandler {
	return &LoyaltyHandler{
		svs: svs,
	}
}

type AccountResponse struct {
	UserID         int64  `json:"user_id"`
	Points         int64  `json:"points"`
	LifetimePoints int64  `json:"lifetime_points"`
	Tier           string `json:"tier"`
	UpdatedAt      string `json:"updated_at"`
}

func serializeAccount(account *domain.LoyaltyAccount) *AccountResponse {
	return &AccountResponse{
		UserID:         account.UserID,
		Points:         account.Points,
		LifetimePoints: account.LifetimePoints,
		Tier:           string(account.Tier),
		UpdatedAt:      account.UpdatedAt.Format(time.RFC3339),
	}
}

// Show GET RouteGroup + AccountRoute. Пользователь видит только свой счет,
// администратор - любой.
func (h *LoyaltyHandler) Show(c *gin.Context) {
	targetID, parseErr := parseInt64Param(c, "userID")
	if parseErr != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	if targetID != getUserIDFromContext(c) && !isAdmin(c) {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	account, err := h.svs.GetAccount(reqCtx, targetID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAccountNotFound):
			c.AbortWithStatus(http.StatusNotFound)
		default:
			_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		}
		return
	}

	c.JSON(http.StatusOK, serializeAccount(account))
}

type MutatePointsParams struct {
	Amount      int64   `json:"amount" binding:"required"`
	Source      string  `json:"source" binding:"required,max_bytes=100"`
	ReferenceID *string `json:"reference_id" binding:"omitempty,max_bytes=100"`
}

// Earn POST RouteGroup + EarnRoute. Только для администратора. Счет, которому
// начисляются баллы, определяется сегментом пути.
func (h *LoyaltyHandler) Earn(c *gin.Context) {
	targetID, parseErr := parseInt64Param(c, "userID")
	if parseErr != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	var params MutatePointsParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	account, err := h.svs.Earn(reqCtx, service.EarnArgs{
		UserID:      targetID,
		Amount:      params.Amount,
		Source:      params.Source,
		ReferenceID: params.ReferenceID,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNonPositiveAmount):
			c.AbortWithStatus(http.StatusUnprocessableEntity)
		default:
			_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		}
		return
	}

	c.JSON(http.StatusOK, serializeAccount(account))
}

// Spend POST RouteGroup + SpendRoute. Только для администратора.
func (h *LoyaltyHandler) Spend(c *gin.Context) {
	targetID, parseErr := parseInt64Param(c, "userID")
	if parseErr != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	var params MutatePointsParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	account, err := h.svs.Spend(reqCtx, service.SpendArgs{
		UserID:      targetID,
		Amount:      params.Amount,
		Source:      params.Source,
		ReferenceID: params.ReferenceID,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNonPositiveAmount):
			c.AbortWithStatus(http.StatusUnprocessableEntity)
		case errors.Is(err, domain.ErrAccountNotFound):
			c.AbortWithStatus(http.StatusNotFound)
		case errors.Is(err, domain.ErrInsufficientBalance):
			c.AbortWithStatus(http.StatusPaymentRequired)
		default:
			_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		}
		return
	}

	c.JSON(http.StatusOK, serializeAccount(account))
}

type TransactionResponseItem struct {
	ID          int64   `json:"id"`
	Direction   string  `json:"direction"`
	Amount      int64   `json:"amount"`
	Source      string  `json:"source"`
	ReferenceID *string `json:"reference_id,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// Transactions GET RouteGroup + TransactionsRoute. Только для администратора.
// Опциональный query параметр direction фильтрует по направлению операции.
func (h *LoyaltyHandler) Transactions(c *gin.Context) {
	targetID, parseErr := parseInt64Param(c, "userID")
	if parseErr != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	var direction *domain.DirectionType
	if raw := c.Query("direction"); raw != "" {
		d := domain.DirectionType(raw)
		if d != domain.DirectionEarn && d != domain.DirectionSpend {
			c.AbortWithStatus(http.StatusUnprocessableEntity)
			return
		}
		direction = &d
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	transactions, err := h.svs.Transactions(reqCtx, targetID, direction)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	response := make([]TransactionResponseItem, len(transactions))
	for i, transaction := range transactions {
		response[i] = TransactionResponseItem{
			ID:          transaction.ID,
			Direction:   string(transaction.Direction),
			Amount:      transaction.Amount,
			Source:      transaction.Source,
			ReferenceID: transaction.ReferenceID,
			CreatedAt:   transaction.CreatedAt.Format(time.RFC3339),
		}
	}

	c.JSON(http.StatusOK, response)
}
