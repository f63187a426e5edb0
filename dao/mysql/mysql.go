package mysql

import (
	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

var Db *sqlx.DB

// Init opens the MySQL pool. DSN shape: "user:password@tcp(host:port)/dbname?parseTime=true".
func Init(dsn string) (err error) {
	Db, err = sqlx.Connect("mysql", dsn)
	if err != nil {
		return
	}
	Db.SetMaxOpenConns(32)
	Db.SetMaxIdleConns(16)
	return
}

// Close closes the MySQL pool.
func Close() {
	_ = Db.Close()
}
