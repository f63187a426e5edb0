package mysql

import (
	"database/sql"
	"errors"

	"cudliy/models"
)

// GetUserToken returns the user's token balance and VIP level.
func GetUserToken(userID uint64) (*models.UserToken, error) {
	userToken := &models.UserToken{}
	sqlStr := "SELECT user_id, tokens, vip_level, created_at, updated_at FROM t_user_tokens WHERE user_id = ?"
	err := Db.Get(userToken, sqlStr, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("user token not found")
		}
		return nil, err
	}
	return userToken, nil
}

// InitUserToken seeds the token row for a new user (called from signup).
func InitUserToken(userID uint64, initialTokens int64) error {
	sqlStr := `INSERT INTO t_user_tokens (user_id, tokens, vip_level, created_at, updated_at)
	           VALUES (?, ?, 0, NOW(), NOW())
	           ON DUPLICATE KEY UPDATE tokens = tokens + ?`
	_, err := Db.Exec(sqlStr, userID, initialTokens, initialTokens)
	return err
}

// AddTokens credits a user (top-up, reward).
func AddTokens(userID uint64, amount int64) error {
	if amount == 0 {
		return errors.New("amount must be greater than 0")
	}
	sqlStr := "UPDATE t_user_tokens SET tokens = tokens + ?, updated_at = NOW() WHERE user_id = ?"
	result, err := Db.Exec(sqlStr, amount, userID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.New("user not found")
	}
	return nil
}
