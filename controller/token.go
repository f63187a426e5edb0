package controller

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cudliy/dao/mysql"
	"cudliy/models"
)

// GetUserTokenInfo returns the caller's token balance and VIP level.
// @Summary Get token info
// @Tags Token
// @Produce json
// @Success 200 {object} Response "token balance"
// @Router /api/v1/token/info [get]
func GetUserTokenInfo(c *gin.Context) {
	userID, err := getCurrentUserID(c)
	if err != nil {
		ResponseError(c, CodeNeedLogin)
		return
	}

	userToken, err := mysql.GetUserToken(userID)
	if err != nil {
		zap.L().Error("get user token failed", zap.Uint64("user_id", userID), zap.Error(err))
		ResponseError(c, CodeServerBusy)
		return
	}
	ResponseSuccess(c, userToken)
}

// RechargeTokens credits the caller's balance. Payment capture lives outside
// this service; this endpoint only applies the credit.
// @Summary Recharge tokens
// @Tags Token
// @Accept json
// @Produce json
// @Param request body models.RechargeForm true "amount to credit"
// @Success 200 {object} Response "updated balance"
// @Router /api/v1/token/recharge [post]
func RechargeTokens(c *gin.Context) {
	userID, err := getCurrentUserID(c)
	if err != nil {
		ResponseError(c, CodeNeedLogin)
		return
	}

	var form models.RechargeForm
	if err := c.ShouldBindJSON(&form); err != nil {
		ResponseError(c, CodeInvalidParams)
		return
	}

	if err := mysql.AddTokens(userID, form.Amount); err != nil {
		zap.L().Error("recharge tokens failed", zap.Uint64("user_id", userID), zap.Error(err))
		ResponseError(c, CodeServerBusy)
		return
	}

	userToken, err := mysql.GetUserToken(userID)
	if err != nil {
		ResponseError(c, CodeServerBusy)
		return
	}
	ResponseSuccess(c, userToken)
}
