package mysql

import (
	"time"

	"github.com/shopspring/decimal"
	gormMysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type walletSchema struct {
	ID        string          `gorm:"type:char(36);primaryKey"`
	WalletID  string          `gorm:"type:varchar(32);uniqueIndex;not null"`
	UserID    string          `gorm:"type:char(36);uniqueIndex;not null"`
	Balance   decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0"`
	IsLocked  bool            `gorm:"not null;default:false"`
	Version   int64           `gorm:"not null;default:0"`
	CreatedAt time.Time       `gorm:"type:datetime(6);not null;default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt time.Time       `gorm:"type:datetime(6);not null;default:CURRENT_TIMESTAMP(6)"`
}

func (walletSchema) TableName() string { return "wallets" }

type transactionSchema struct {
	ID              string          `gorm:"type:char(36);primaryKey"`
	TransactionRef  string          `gorm:"type:varchar(40);uniqueIndex;not null"`
	Amount          decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	TransactionType string          `gorm:"type:varchar(20);not null;index"`
	Status          string          `gorm:"type:varchar(20);not null;default:completed"`
	Description     *string         `gorm:"type:varchar(255)"`
	FromUserID      *string         `gorm:"type:char(36);index:idx_transactions_from_created,priority:1"`
	ToUserID        *string         `gorm:"type:char(36);index:idx_transactions_to_created,priority:1"`
	FromWalletID    *string         `gorm:"type:char(36)"`
	ToWalletID      *string         `gorm:"type:char(36)"`
	CreatedAt       time.Time       `gorm:"type:datetime(6);not null;default:CURRENT_TIMESTAMP(6);index:idx_transactions_from_created,priority:2;index:idx_transactions_to_created,priority:2"`
}

func (transactionSchema) TableName() string { return "transactions" }

// Migrate creates or updates the wallets and transactions tables on the open connection.
func (d *Database) Migrate() error {
	db, err := d.GetDB()
	if err != nil {
		return err
	}

	gdb, err := gorm.Open(gormMysql.New(gormMysql.Config{Conn: db.DB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return err
	}

	if err := gdb.AutoMigrate(&walletSchema{}, &transactionSchema{}); err != nil {
		return err
	}
	d.log.Info("mysql", "schema migrated", "Migrate", "wallets,transactions")
	return nil
}
