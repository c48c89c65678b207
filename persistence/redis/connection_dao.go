package redis

import (
	"context"
	"errors"
	"time"

	rd "github.com/go-redis/redis/v9"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/logger"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/model"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/persistence"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/util"
	"go.uber.org/zap"
)

const CONNECTION string = "CONNECTION"

type redisConnectionStore struct {
	*baseDao
	encDec util.EncoderDecoder[model.Connection]
}

var _ persistence.ConnectionStore = new(redisConnectionStore)

func NewRedisConnectionStore(conf Config) *redisConnectionStore {
	return &redisConnectionStore{
		baseDao: newBaseDao(conf),
		encDec:  util.NewJsonEncoderDecoder[model.Connection](),
	}
}

func NewRedisConnectionStoreFromClient(client rd.UniversalClient, namespace string) *redisConnectionStore {
	return &redisConnectionStore{
		baseDao: newBaseDaoFromClient(client, namespace),
		encDec:  util.NewJsonEncoderDecoder[model.Connection](),
	}
}

func (rs *redisConnectionStore) field(tenantId string, connectionId string) string {
	return tenantId + ":" + connectionId
}

func (rs *redisConnectionStore) Save(connection model.Connection) error {
	key := rs.getNamespaceKey(CONNECTION)
	ctx := context.Background()
	data, err := rs.encDec.Encode(connection)
	if err != nil {
		return err
	}
	if err := rs.redisClient.HSet(ctx, key, rs.field(connection.TenantId, connection.Id), data).Err(); err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (rs *redisConnectionStore) Get(tenantId string, connectionId string) (*model.Connection, error) {
	key := rs.getNamespaceKey(CONNECTION)
	ctx := context.Background()
	val, err := rs.redisClient.HGet(ctx, key, rs.field(tenantId, connectionId)).Result()
	if err != nil {
		if errors.Is(err, rd.Nil) {
			return nil, persistence.NotFoundError{Kind: "connection", Id: connectionId}
		}
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return rs.encDec.Decode([]byte(val))
}

func (rs *redisConnectionStore) List() ([]model.Connection, error) {
	key := rs.getNamespaceKey(CONNECTION)
	ctx := context.Background()
	vals, err := rs.redisClient.HVals(ctx, key).Result()
	if err != nil {
		if errors.Is(err, rd.Nil) {
			return nil, nil
		}
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	var connections []model.Connection
	for _, val := range vals {
		connection, err := rs.encDec.Decode([]byte(val))
		if err != nil {
			logger.Error("can not decode connection", zap.Error(err))
			continue
		}
		connections = append(connections, *connection)
	}
	return connections, nil
}

func (rs *redisConnectionStore) UpdateStatus(tenantId string, connectionId string, status model.ConnectionStatus, at time.Time) error {
	connection, err := rs.Get(tenantId, connectionId)
	if err != nil {
		return err
	}
	connection.Status = status
	connection.StatusCheckedAt = at
	return rs.Save(*connection)
}
