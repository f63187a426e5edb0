package mysql

import (
	"crypto/md5"
	"database/sql"
	"encoding/hex"
	"errors"

	"cudliy/models"
)

const (
	ErrorUserExit      = "user already exists"
	ErrorUserNotExit   = "user does not exist"
	ErrorPasswordWrong = "password is wrong"
)

const passwordSecret = "cudliy.toys"

// CheckUserExist reports an error if the username is taken.
func CheckUserExist(username string) error {
	var count int
	if err := Db.Get(&count, `SELECT COUNT(user_id) FROM t_users WHERE username = ?`, username); err != nil {
		return err
	}
	if count > 0 {
		return errors.New(ErrorUserExit)
	}
	return nil
}

// InsertUser writes a new user row with an encrypted password.
func InsertUser(user *models.User) error {
	user.Password = encryptPassword([]byte(user.Password))
	query := `INSERT INTO t_users (user_id, username, password, email, first_name, last_name, business_name, phone, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())`
	_, err := Db.Exec(query, user.UserID, user.UserName, user.Password,
		user.Email, user.FirstName, user.LastName, user.BusinessName, user.Phone)
	return err
}

// Login verifies the password and fills in the stored user fields.
func Login(user *models.User) error {
	originPassword := user.Password
	query := `SELECT user_id, username, password, email, first_name, last_name, business_name, phone FROM t_users WHERE username = ?`
	err := Db.Get(user, query, user.UserName)
	if err != nil {
		if err == sql.ErrNoRows {
			return errors.New(ErrorUserNotExit)
		}
		return err
	}
	if encryptPassword([]byte(originPassword)) != user.Password {
		return errors.New(ErrorPasswordWrong)
	}
	return nil
}

func encryptPassword(data []byte) string {
	h := md5.New()
	h.Write([]byte(passwordSecret))
	return hex.EncodeToString(h.Sum(data))
}
