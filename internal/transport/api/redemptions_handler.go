package api

import (
	"context"
	"errors"
	"time"

	"github.com/fsdevblog/laverie-loyal/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"net/http"
)

type RedemptionsHandler struct {
	svs RedemptionServicer
}

func NewRedemptionsHandler(svs RedemptionServicer) *RedemptionsHandler {
	return &RedemptionsHandler{
		svs: svs,
	}
}

type RedemptionResponse struct {
	ID               string  `json:"id"`
	UserID           int64   `json:"user_id"`
	RewardID         int64   `json:"reward_id"`
	Status           string  `json:"status"`
	VerificationCode string  `json:"verification_code"`
	ClaimedAt        *string `json:"claimed_at,omitempty"`
	Notes            *string `json:"notes,omitempty"`
	CreatedAt        string  `json:"created_at"`
}

func serializeRedemption(redemption *domain.RewardRedemption) *RedemptionResponse {
	response := &RedemptionResponse{
		ID:               redemption.ID.String(),
		UserID:           redemption.UserID,
		RewardID:         redemption.RewardID,
		Status:           string(redemption.Status),
		VerificationCode: redemption.VerificationCode,
		Notes:            redemption.Notes,
		CreatedAt:        redemption.CreatedAt.Format(time.RFC3339),
	}
	if redemption.ClaimedAt != nil {
		claimedAt := redemption.ClaimedAt.Format(time.RFC3339)
		response.ClaimedAt = &claimedAt
	}
	return response
}

// Redeem POST RouteGroup + RedeemRoute. Списывает стоимость награды со счета
// вызывающего и создает запись погашения.
func (h *RedemptionsHandler) Redeem(c *gin.Context) {
	rewardID, parseErr := parseInt64Param(c, "rewardID")
	if parseErr != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	redemption, err := h.svs.Redeem(reqCtx, getUserIDFromContext(c), rewardID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRewardNotFound):
			c.AbortWithStatus(http.StatusNotFound)
		case errors.Is(err, domain.ErrAccountNotFound):
			c.AbortWithStatus(http.StatusNotFound)
		case errors.Is(err, domain.ErrInsufficientBalance):
			c.AbortWithStatus(http.StatusPaymentRequired)
		default:
			_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		}
		return
	}

	c.JSON(http.StatusCreated, serializeRedemption(redemption))
}

type ClaimParams struct {
	Notes *string `json:"notes" binding:"omitempty,max_bytes=500"`
}

// Claim POST RouteGroup + RedemptionClaimRoute. Только для администратора.
// Подтверждает физическую выдачу GIFT награды.
func (h *RedemptionsHandler) Claim(c *gin.Context) {
	redemptionID, parseErr := uuid.Parse(c.Param("redemptionID"))
	if parseErr != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	var params ClaimParams
	if c.Request.ContentLength > 0 {
		if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
			_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
			return
		}
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	redemption, err := h.svs.Claim(reqCtx, redemptionID, getUserIDFromContext(c), params.Notes)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			c.AbortWithStatus(http.StatusNotFound)
		case errors.Is(err, domain.ErrInvalidRedemptionState):
			c.AbortWithStatus(http.StatusConflict)
		default:
			_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		}
		return
	}

	c.JSON(http.StatusOK, serializeRedemption(redemption))
}

// Pending GET RouteGroup + RedemptionsRoute. Только для администратора.
// Без query параметра status возвращает очередь GIFT погашений, ожидающих
// выдачи, в порядке создания. Параметр status переключает выборку на
// claimed или expired записи.
func (h *RedemptionsHandler) Pending(c *gin.Context) {
	status := domain.RedemptionStatusRedeemed
	if raw := c.Query("status"); raw != "" {
		status = domain.RedemptionStatusType(raw)
		switch status {
		case domain.RedemptionStatusRedeemed, domain.RedemptionStatusClaimed, domain.RedemptionStatusExpired:
		default:
			c.AbortWithStatus(http.StatusUnprocessableEntity)
			return
		}
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	redemptions, err := h.svs.ListByStatus(reqCtx, status)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	response := make([]RedemptionResponse, len(redemptions))
	for i := range redemptions {
		response[i] = *serializeRedemption(&redemptions[i])
	}

	c.JSON(http.StatusOK, response)
}

// Show GET RouteGroup + RedemptionRoute. Пользователь видит только свои
// погашения, администратор - любые.
func (h *RedemptionsHandler) Show(c *gin.Context) {
	redemptionID, parseErr := uuid.Parse(c.Param("redemptionID"))
	if parseErr != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	redemption, err := h.svs.GetByID(reqCtx, redemptionID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			c.AbortWithStatus(http.StatusNotFound)
		default:
			_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		}
		return
	}

	if redemption.UserID != getUserIDFromContext(c) && !isAdmin(c) {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	c.JSON(http.StatusOK, serializeRedemption(redemption))
}
