package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

// InitRedis initializes the Redis client
func InitRedis() error {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://redis:6379" // Default Redis address for Docker
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	RedisClient = redis.NewClient(opt)

	// Test the connection
	ctx := context.Background()
	_, err = RedisClient.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return nil
}

// MarkEventProcessed records a payment-provider event ID so webhook replays
// are ignored. Returns true if this is the first time the event is seen.
func MarkEventProcessed(ctx context.Context, eventID string) (bool, error) {
	key := fmt.Sprintf("webhook:event:%s", eventID)
	return RedisClient.SetNX(ctx, key, "1", 24*time.Hour).Result()
}

// ClearEventProcessed releases a dedupe key so a provider retry of the same
// event is processed again. Called when handling failed after the key was set.
func ClearEventProcessed(ctx context.Context, eventID string) error {
	key := fmt.Sprintf("webhook:event:%s", eventID)
	return RedisClient.Del(ctx, key).Err()
}

// PublishJobUpdate publishes a job lifecycle update to Redis pub/sub
func PublishJobUpdate(ctx context.Context, jobID, status string, data map[string]interface{}) error {
	updateData := map[string]interface{}{
		"jobId":     jobID,
		"status":    status,
		"data":      data,
		"timestamp": time.Now().Unix(),
	}

	jsonData, err := json.Marshal(updateData)
	if err != nil {
		return err
	}

	return RedisClient.Publish(ctx, "jobs:updates", jsonData).Err()
}
