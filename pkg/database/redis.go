package database

import (
	"context"

	"github.com/go-redis/redis/v8"

	"pytutor-go/pkg/log"
)

var RDB *redis.Client

// InitRedis 初始化 Redis 客户端连接。
// Redis 承载 token 黑名单，以及多实例部署时的共享限流计数。
func InitRedis(addr, password string, db int) {
	RDB = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// 测试连接
	ctx := context.Background()
	if err := RDB.Ping(ctx).Err(); err != nil {
		log.Fatal("failed to connect to redis", err)
	}

	log.Info("Redis client connected successfully")
}
