package config

import (
	"context"
	"time"

	"campus-wallet/src/pkg/log"
	redisModule "campus-wallet/src/pkg/redis"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

func LoadRedisConfig(viper *viper.Viper, log log.Log) {
	CfgRedis := &redisModule.CfgRedis{
		UseCluster:           viper.GetBool("redis.use_cluster"),
		EnableTLS:            viper.GetBool("redis.tls"),
		RedisHost:            viper.GetString("redis.host"),
		RedisPort:            viper.GetString("redis.port"),
		RedisPassword:        viper.GetString("redis.password"),
		RedisDB:              viper.GetInt("redis.db"),
		RedisClusterNode:     viper.GetString("redis.cluster.node"),
		RedisClusterPassword: viper.GetString("redis.cluster.password"),
	}
	redisModule.LoadConfig(CfgRedis)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisModule.InitConnection(ctx); err != nil {
		log.Error("redis init", err.Error(), "config", "")
	}
}

// NewRedis returns nil when no connection was established.
func NewRedis() redis.UniversalClient {
	return redisModule.GetClient()
}
