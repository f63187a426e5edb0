package logic

import (
	"cudliy/dao/mysql"
	"cudliy/models"
	"cudliy/pkg/jwt"
	"cudliy/pkg/snowflake"

	"go.uber.org/zap"
)

// initialTokens is the grant for every new account; overridden from config
// at startup.
var initialTokens int64 = 100

func SetInitialTokens(n int64) {
	if n > 0 {
		initialTokens = n
	}
}

// SignUp registers a new user and seeds their token balance.
func SignUp(form *models.RegisterForm) error {
	if err := mysql.CheckUserExist(form.UserName); err != nil {
		return err
	}

	userID, err := snowflake.GetID()
	if err != nil {
		return err
	}

	user := &models.User{
		UserID:       userID,
		UserName:     form.UserName,
		Password:     form.Password,
		Email:        form.Email,
		FirstName:    form.FirstName,
		LastName:     form.LastName,
		BusinessName: form.BusinessName,
		Phone:        form.Phone,
	}
	if err := mysql.InsertUser(user); err != nil {
		return err
	}

	// token seeding is best effort; the row is healed on first top-up
	if err := mysql.InitUserToken(userID, initialTokens); err != nil {
		zap.L().Warn("failed to init user tokens", zap.Uint64("user_id", userID), zap.Error(err))
	}
	return nil
}

// Login verifies credentials and issues the token pair.
func Login(form *models.LoginForm) (*models.User, error) {
	user := &models.User{
		UserName: form.UserName,
		Password: form.Password,
	}
	if err := mysql.Login(user); err != nil {
		return nil, err
	}

	accessToken, refreshToken, err := jwt.GenToken(user.UserID, user.UserName)
	if err != nil {
		return nil, err
	}
	user.AccessToken = accessToken
	user.RefreshToken = refreshToken
	return user, nil
}
