package api

import (
	"context"
	"errors"

	"github.com/fsdevblog/laverie-loyal/internal/domain"
	"github.com/fsdevblog/laverie-loyal/internal/repository/repoargs"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"net/http"
)

type RewardsHandler struct {
	svs RewardServicer
}

func NewRewardsHandler(svs RewardServicer) *RewardsHandler {
	return &RewardsHandler{
		svs: svs,
	}
}

type RewardResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Type        string  `json:"type"`
	PointsCost  int64   `json:"points_cost"`
	Value       float64 `json:"value"`
	IsActive    bool    `json:"is_active"`
}

func serializeReward(reward *domain.Reward) *RewardResponse {
	return &RewardResponse{
		ID:          reward.ID,
		Name:        reward.Name,
		Description: reward.Description,
		Type:        string(reward.Type),
		PointsCost:  reward.PointsCost,
		Value:       reward.Value.InexactFloat64(),
		IsActive:    reward.IsActive,
	}
}

func serializeRewards(rewards []domain.Reward) []RewardResponse {
	response := make([]RewardResponse, len(rewards))
	for i := range rewards {
		response[i] = *serializeReward(&rewards[i])
	}
	return response
}

// Index GET RouteGroup + RewardsRoute. Активный каталог наград. С query
// параметром available=true возвращает только доступные по балансу вызывающего.
func (h *RewardsHandler) Index(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	var rewards []domain.Reward
	var err error
	if c.Query("available") == "true" {
		rewards, err = h.svs.AvailableFor(reqCtx, getUserIDFromContext(c))
	} else {
		rewards, err = h.svs.ListActive(reqCtx)
	}
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusOK, serializeRewards(rewards))
}

type RewardCreateParams struct {
	Name        string          `json:"name" binding:"required,max_bytes=200"`
	Description string          `json:"description" binding:"max_bytes=1000"`
	Type        string          `json:"type" binding:"required,oneof=discount_percentage discount_fixed free_service gift"`
	PointsCost  int64           `json:"points_cost" binding:"required,gt=0"`
	Value       decimal.Decimal `json:"value"`
}

// Create POST RouteGroup + RewardsRoute. Только для администратора.
func (h *RewardsHandler) Create(c *gin.Context) {
	var params RewardCreateParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	reward, err := h.svs.Create(reqCtx, repoargs.RewardCreate{
		Name:        params.Name,
		Description: params.Description,
		Type:        domain.RewardType(params.Type),
		PointsCost:  params.PointsCost,
		Value:       params.Value,
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

	c.JSON(http.StatusCreated, serializeReward(reward))
}

type RewardUpdateParams struct {
	Name        *string          `json:"name" binding:"omitempty,max_bytes=200"`
	Description *string          `json:"description" binding:"omitempty,max_bytes=1000"`
	PointsCost  *int64           `json:"points_cost" binding:"omitempty,gt=0"`
	Value       *decimal.Decimal `json:"value"`
	IsActive    *bool            `json:"is_active"`
}

// Update PATCH RouteGroup + RewardRoute. Только для администратора.
// Меняет только переданные поля.
func (h *RewardsHandler) Update(c *gin.Context) {
	rewardID, parseErr := parseInt64Param(c, "rewardID")
	if parseErr != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	var params RewardUpdateParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	reward, err := h.svs.Update(reqCtx, repoargs.RewardUpdate{
		ID:          rewardID,
		Name:        params.Name,
		Description: params.Description,
		PointsCost:  params.PointsCost,
		Value:       params.Value,
		IsActive:    params.IsActive,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNonPositiveAmount):
			c.AbortWithStatus(http.StatusUnprocessableEntity)
		case errors.Is(err, domain.ErrRewardNotFound):
			c.AbortWithStatus(http.StatusNotFound)
		default:
			_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		}
		return
	}

	c.JSON(http.StatusOK, serializeReward(reward))
}

// Deactivate DELETE RouteGroup + RewardRoute. Только для администратора.
// Награда скрывается из каталога, история погашений остается.
func (h *RewardsHandler) Deactivate(c *gin.Context) {
	rewardID, parseErr := parseInt64Param(c, "rewardID")
	if parseErr != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	reward, err := h.svs.Deactivate(reqCtx, rewardID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRewardNotFound):
			c.AbortWithStatus(http.StatusNotFound)
		default:
			_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		}
		return
	}

	c.JSON(http.StatusOK, serializeReward(reward))
}
