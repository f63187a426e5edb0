package controller

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"cudliy/dao/mysql"
	"cudliy/logic"
	"cudliy/models"
	"cudliy/pkg/jwt"
)

// SignUpHandler registers a new account.
// @Summary User sign-up
// @Description Create a new account; new users receive an initial token grant.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.RegisterForm true "sign-up form"
// @Success 200 {object} Response "registered"
// @Failure 200 {object} Response "invalid params or user exists"
// @Router /signup [post]
func SignUpHandler(c *gin.Context) {
	var fo *models.RegisterForm
	if err := c.ShouldBindJSON(&fo); err != nil {
		zap.L().Error("SignUp with invalid param", zap.Error(err))
		errs, ok := err.(validator.ValidationErrors)
		if !ok {
			ResponseError(c, CodeInvalidParams)
			return
		}
		ResponseErrorWithMsg(c, CodeInvalidParams, removeTopStruct(errs.Translate(trans)))
		return
	}
	if err := logic.SignUp(fo); err != nil {
		zap.L().Error("logic.SignUp failed", zap.Error(err))
		if err.Error() == mysql.ErrorUserExit {
			ResponseError(c, CodeUserExist)
			return
		}
		ResponseError(c, CodeServerBusy)
		return
	}
	ResponseSuccess(c, nil)
}

// LoginHandler authenticates and returns the token pair.
// @Summary User login
// @Description Log in with username and password; returns access_token and refresh_token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.LoginForm true "login form"
// @Success 200 {object} Response "logged in"
// @Failure 200 {object} Response "user missing or wrong password"
// @Router /login [post]
func LoginHandler(c *gin.Context) {
	var u *models.LoginForm
	if err := c.ShouldBindJSON(&u); err != nil {
		zap.L().Error("Login with invalid param", zap.Error(err))
		errs, ok := err.(validator.ValidationErrors)
		if !ok {
			ResponseError(c, CodeInvalidParams)
			return
		}
		ResponseErrorWithMsg(c, CodeInvalidParams, removeTopStruct(errs.Translate(trans)))
		return
	}

	user, err := logic.Login(u)
	if err != nil {
		zap.L().Error("logic.Login failed", zap.String("username", u.UserName), zap.Error(err))
		switch err.Error() {
		case mysql.ErrorUserNotExit:
			ResponseError(c, CodeUserNotExist)
		case mysql.ErrorPasswordWrong:
			ResponseError(c, CodeInvalidPassword)
		default:
			ResponseError(c, CodeServerBusy)
		}
		return
	}

	ResponseSuccess(c, gin.H{
		// string, not number: js caps at 1<<53-1 while snowflake ids are int64
		"user_id":       fmt.Sprintf("%d", user.UserID),
		"user_name":     user.UserName,
		"access_token":  user.AccessToken,
		"refresh_token": user.RefreshToken,
	})
}

// RefreshTokenHandler exchanges a refresh token for a fresh pair.
// @Summary Refresh access token
// @Description Refresh access_token using refresh_token; the expired access token goes in the Authorization header.
// @Tags Auth
// @Produce json
// @Param refresh_token query string true "refresh token"
// @Param Authorization header string true "Bearer {access_token}"
// @Success 200 {object} map[string]string "new token pair"
// @Router /refresh_token [post]
func RefreshTokenHandler(c *gin.Context) {
	rt := c.Query("refresh_token")
	authHeader := c.Request.Header.Get("Authorization")
	if authHeader == "" {
		ResponseErrorWithMsg(c, CodeInvalidToken, "missing Authorization header")
		c.Abort()
		return
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if !(len(parts) == 2 && parts[0] == "Bearer") {
		ResponseErrorWithMsg(c, CodeInvalidToken, "malformed Authorization header")
		c.Abort()
		return
	}
	aToken, rToken, err := jwt.RefreshToken(parts[1], rt)
	if err != nil {
		zap.L().Error("jwt.RefreshToken failed", zap.Error(err))
		ResponseError(c, CodeInvalidToken)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token":  aToken,
		"refresh_token": rToken,
	})
}
