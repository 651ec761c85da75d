package lib

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

func GetRedisClient() *redis.Client {
	if redisClient != nil {
		return redisClient
	}
	redisHost := os.Getenv("REDIS_HOST")
	opt, err := redis.ParseURL(redisHost)
	if err != nil {
		log.Printf("[redis] Error parsing connection string: %s\n", err.Error())
		return nil
	}
	rdb := redis.NewClient(opt)
	redisClient = rdb
	return rdb
}

// NewRedisClient Replace redis instance with custom client implementation
func NewRedisClient(c *redis.Client) *redis.Client {
	redisClient = c
	return redisClient
}

func resetFlowKey(flowID string) string {
	return fmt.Sprintf("pwreset:%s", flowID)
}

// RevokeResetFlow burns a password-reset flow id so the token that carries it
// can only be redeemed once. The key expires with the token.
func RevokeResetFlow(ctx context.Context, flowID string, ttl time.Duration) error {
	rdb := GetRedisClient()
	if rdb == nil {
		return fmt.Errorf("redis unavailable")
	}
	return rdb.Set(ctx, resetFlowKey(flowID), "used", ttl).Err()
}

// ResetFlowRevoked reports whether the flow id was already redeemed.
func ResetFlowRevoked(ctx context.Context, flowID string) (bool, error) {
	rdb := GetRedisClient()
	if rdb == nil {
		return false, fmt.Errorf("redis unavailable")
	}
	err := rdb.Get(ctx, resetFlowKey(flowID)).Err()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CacheLastLogin records the user's last successful login. Best effort: a
// cache miss or outage never blocks the login path.
func CacheLastLogin(ctx context.Context, email string, at time.Time) {
	rdb := GetRedisClient()
	if rdb == nil {
		return
	}
	key := fmt.Sprintf("lastlogin:%s", email)
	if err := rdb.Set(ctx, key, at.Format(time.RFC3339), 0).Err(); err != nil {
		log.Printf("Failed to set value for key %s: %s\n", key, err)
	}
}
