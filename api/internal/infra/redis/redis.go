package redis

import (
	"checkout/api/internal/config"
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

func Init(config *config.Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Redis.Addr,
		Password: config.Redis.Password,
		DB:       config.Redis.Db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		panic("redis: ping failed: " + err.Error())
	}

	fmt.Println("redis: connected to", config.Redis.Addr)
	return client
}
