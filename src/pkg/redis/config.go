package redis

import (
	"fmt"
	"strings"

	"campus-wallet/src/pkg/utils"
)

type CfgRedis struct {
	UseCluster           bool
	EnableTLS            bool
	RedisHost            string
	RedisPort            string
	RedisPassword        string
	RedisDB              int
	RedisClusterNode     string
	RedisClusterPassword string
}

type AppConfig struct {
	UseCluster bool
}

type RedisConfig struct {
	Host      string
	Port      string
	Password  string
	DB        int
	EnableTLS bool
}

type RedisClusterConfig struct {
	Hosts     []string
	Username  string
	Password  string
	EnableTLS bool
}

var (
	AppConfigData          AppConfig
	RedisConfigData        RedisConfig
	RedisClusterConfigData RedisClusterConfig
)

func LoadConfig(config *CfgRedis) {
	AppConfigData = AppConfig{
		UseCluster: config.UseCluster,
	}

	host := config.RedisHost
	if host == "" {
		host = "127.0.0.1"
	}
	port := config.RedisPort
	if port == "" {
		port = "6379"
	}

	RedisConfigData = RedisConfig{
		Host:      host,
		Port:      fmt.Sprintf("%v", port),
		Password:  config.RedisPassword,
		DB:        utils.ConvertInt(config.RedisDB),
		EnableTLS: config.EnableTLS,
	}

	var clusterHosts []string
	for _, node := range strings.Split(config.RedisClusterNode, ";") {
		if node = strings.TrimSpace(node); node != "" {
			clusterHosts = append(clusterHosts, node)
		}
	}
	RedisClusterConfigData = RedisClusterConfig{
		Hosts:     clusterHosts,
		Password:  config.RedisClusterPassword,
		EnableTLS: config.EnableTLS,
	}
}
