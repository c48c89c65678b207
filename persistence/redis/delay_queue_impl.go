package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	rd "github.com/go-redis/redis/v9"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/logger"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/persistence"
	"go.uber.org/zap"
)

type redisDelayQueue struct {
	*baseDao
}

var _ persistence.DelayQueue = new(redisDelayQueue)

func NewRedisDelayQueue(conf Config) *redisDelayQueue {
	return &redisDelayQueue{
		baseDao: newBaseDao(conf),
	}
}

func NewRedisDelayQueueFromClient(client rd.UniversalClient, namespace string) *redisDelayQueue {
	return &redisDelayQueue{
		baseDao: newBaseDaoFromClient(client, namespace),
	}
}

func (rq *redisDelayQueue) PushWithDelay(queueName string, delay time.Duration, message []byte) error {
	key := rq.getNamespaceKey("delay-queue", queueName)
	ctx := context.Background()
	dueTime := time.Now().Add(delay).UnixMilli()
	member := rd.Z{
		Score:  float64(dueTime),
		Member: message,
	}
	err := rq.redisClient.ZAdd(ctx, key, member).Err()
	if err != nil {
		logger.Error("error while push to redis sorted set", zap.String("queue", key), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

// Pop drains every member whose due time has passed.
func (rq *redisDelayQueue) Pop(queueName string) ([]string, error) {
	key := rq.getNamespaceKey("delay-queue", queueName)
	ctx := context.Background()
	currentTime := time.Now().UnixMilli()
	pipe := rq.redisClient.Pipeline()

	opt := &rd.ZRangeBy{
		Min: strconv.Itoa(0),
		Max: strconv.FormatInt(currentTime, 10),
	}
	zr := pipe.ZRangeByScore(ctx, key, opt)
	pipe.ZRemRangeByScore(ctx, key, strconv.Itoa(0), strconv.FormatInt(currentTime, 10))

	_, err := pipe.Exec(ctx)
	if err != nil {
		logger.Error("error while pop from redis sorted set", zap.String("queue", key), zap.Error(err))
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}

	res, err := zr.Result()
	if err != nil {
		if errors.Is(err, rd.Nil) {
			return []string{}, nil
		}
		logger.Error("error while pop from redis sorted set", zap.String("queue", key), zap.Error(err))
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return res, nil
}
