package models

// User mirrors the t_users table plus the tokens issued at login.
type User struct {
	UserID       uint64 `db:"user_id"`
	UserName     string `db:"username"`
	Password     string `db:"password"`
	Email        string `db:"email"`
	FirstName    string `db:"first_name"`
	LastName     string `db:"last_name"`
	BusinessName string `db:"business_name"`
	Phone        string `db:"phone"`
	AccessToken  string
	RefreshToken string
}

// RegisterForm carries the sign-up fields collected by the frontend.
type RegisterForm struct {
	UserName        string `json:"username" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	BusinessName    string `json:"business_name"`
	Phone           string `json:"phone"`
}

type LoginForm struct {
	UserName string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}
