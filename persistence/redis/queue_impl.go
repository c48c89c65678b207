package redis

import (
	"context"
	"errors"

	rd "github.com/go-redis/redis/v9"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/logger"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/persistence"
	"go.uber.org/zap"
)

type redisQueue struct {
	*baseDao
}

var _ persistence.Queue = new(redisQueue)

func NewRedisQueue(conf Config) *redisQueue {
	return &redisQueue{
		baseDao: newBaseDao(conf),
	}
}

func NewRedisQueueFromClient(client rd.UniversalClient, namespace string) *redisQueue {
	return &redisQueue{
		baseDao: newBaseDaoFromClient(client, namespace),
	}
}

func (rq *redisQueue) Push(queueName string, message []byte) error {
	key := rq.getNamespaceKey("queue", queueName)
	ctx := context.Background()
	err := rq.redisClient.RPush(ctx, key, message).Err()
	if err != nil {
		logger.Error("error while push to redis list", zap.String("queue", key), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (rq *redisQueue) Pop(queueName string, batchSize int) ([]string, error) {
	key := rq.getNamespaceKey("queue", queueName)
	ctx := context.Background()
	res, err := rq.redisClient.LPopCount(ctx, key, batchSize).Result()
	if err != nil {
		if errors.Is(err, rd.Nil) {
			return []string{}, nil
		}
		logger.Error("error while pop from redis list", zap.String("queue", key), zap.Error(err))
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return res, nil
}
