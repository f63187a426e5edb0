package models

type UserToken struct {
	UserID    uint64 `db:"user_id" json:"user_id,string"`
	Tokens    int64  `db:"tokens" json:"tokens"`
	VIPLevel  uint8  `db:"vip_level" json:"vip_level"`
	CreatedAt string `db:"created_at" json:"created_at"`
	UpdatedAt string `db:"updated_at" json:"updated_at"`
}

type RechargeForm struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}
