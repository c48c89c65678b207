package redis

import (
	"context"
	"errors"
	"time"

	rd "github.com/go-redis/redis/v9"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/persistence"
)

const FLOW_LAST_RUN string = "FLOW_LAST_RUN"

type redisSchedulerStore struct {
	*baseDao
}

var _ persistence.SchedulerStore = new(redisSchedulerStore)

func NewRedisSchedulerStore(conf Config) *redisSchedulerStore {
	return &redisSchedulerStore{
		baseDao: newBaseDao(conf),
	}
}

func NewRedisSchedulerStoreFromClient(client rd.UniversalClient, namespace string) *redisSchedulerStore {
	return &redisSchedulerStore{
		baseDao: newBaseDaoFromClient(client, namespace),
	}
}

// LastExecution returns the zero time when the flow has never run.
func (rs *redisSchedulerStore) LastExecution(flowId string) (time.Time, error) {
	key := rs.getNamespaceKey(FLOW_LAST_RUN)
	ctx := context.Background()
	val, err := rs.redisClient.HGet(ctx, key, flowId).Result()
	if err != nil {
		if errors.Is(err, rd.Nil) {
			return time.Time{}, nil
		}
		return time.Time{}, persistence.StorageLayerError{Message: err.Error()}
	}
	at, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return time.Time{}, err
	}
	return at, nil
}

func (rs *redisSchedulerStore) SetLastExecution(flowId string, at time.Time) error {
	key := rs.getNamespaceKey(FLOW_LAST_RUN)
	ctx := context.Background()
	if err := rs.redisClient.HSet(ctx, key, flowId, at.Format(time.RFC3339)).Err(); err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}
