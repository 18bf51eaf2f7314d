package config

import (
	"campus-wallet/src/pkg/databases/mysql"
	"campus-wallet/src/pkg/log"

	"github.com/spf13/viper"
)

// NewDatabase returns nil when the connection cannot be established.
func NewDatabase(viper *viper.Viper, log log.Log) mysql.DBInterface {
	db, err := mysql.InitConnection(viper, log)
	if err != nil {
		log.Error("database init", err.Error(), "config", "")
		return nil
	}

	if viper.GetBool("database.migrate") {
		if migrator, ok := db.(interface{ Migrate() error }); ok {
			if err := migrator.Migrate(); err != nil {
				log.Error("database init", err.Error(), "migrate", "")
			}
		}
	}

	return db
}
