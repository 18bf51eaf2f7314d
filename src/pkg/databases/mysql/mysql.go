package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campus-wallet/src/pkg/log"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/viper"
)

var ErrNotConnected = errors.New("mysql: database is not connected")

type DBInterface interface {
	GetDB() (*sqlx.DB, error)
	// WithTransaction runs fn inside one transaction, committing on nil and rolling back otherwise.
	WithTransaction(ctx context.Context, fn func(tx *sqlx.Tx) error) error
	Close() error
}

type Database struct {
	db  *sqlx.DB
	log log.Log
}

func New(db *sqlx.DB, logger log.Log) *Database {
	return &Database{db: db, log: logger}
}

func InitConnection(v *viper.Viper, logger log.Log) (DBInterface, error) {
	dsn := v.GetString("database.dsn")
	if dsn == "" {
		return nil, fmt.Errorf("database.dsn is required")
	}

	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxIdleConns(v.GetInt("database.pool.idle"))
	db.SetMaxOpenConns(v.GetInt("database.pool.max"))
	db.SetConnMaxLifetime(time.Duration(v.GetInt("database.pool.lifetime")) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("mysql", "connected to database", "InitConnection", "")
	return New(db, logger), nil
}

func (d *Database) GetDB() (*sqlx.DB, error) {
	if d == nil || d.db == nil {
		return nil, ErrNotConnected
	}
	return d.db, nil
}

func (d *Database) WithTransaction(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	db, err := d.GetDB()
	if err != nil {
		return err
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			d.log.Error("mysql", fmt.Sprintf("rollback failed: %v", rbErr), "WithTransaction", err.Error())
		}
		return err
	}

	return tx.Commit()
}

func (d *Database) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}
