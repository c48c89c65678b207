package redis

import (
	"context"
	"errors"

	rd "github.com/go-redis/redis/v9"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/logger"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/model"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/persistence"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/util"
	"go.uber.org/zap"
)

const FLOW_DEF string = "FLOW_DEF"
const TENANTS string = "TENANTS"

type redisDefinitionStore struct {
	*baseDao
	encDec util.EncoderDecoder[model.FlowDefinition]
}

var _ persistence.DefinitionStore = new(redisDefinitionStore)

func NewRedisDefinitionStore(conf Config) *redisDefinitionStore {
	return &redisDefinitionStore{
		baseDao: newBaseDao(conf),
		encDec:  util.NewJsonEncoderDecoder[model.FlowDefinition](),
	}
}

func NewRedisDefinitionStoreFromClient(client rd.UniversalClient, namespace string) *redisDefinitionStore {
	return &redisDefinitionStore{
		baseDao: newBaseDaoFromClient(client, namespace),
		encDec:  util.NewJsonEncoderDecoder[model.FlowDefinition](),
	}
}

func (rs *redisDefinitionStore) Save(def model.FlowDefinition) error {
	key := rs.getNamespaceKey(def.TenantId, FLOW_DEF)
	ctx := context.Background()
	data, err := rs.encDec.Encode(def)
	if err != nil {
		return err
	}
	pipe := rs.redisClient.Pipeline()
	pipe.HSet(ctx, key, def.Id, data)
	pipe.SAdd(ctx, rs.getNamespaceKey(TENANTS), def.TenantId)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Error("error in saving flow definition", zap.String("flow", def.Id), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (rs *redisDefinitionStore) Get(tenantId string, flowId string) (*model.FlowDefinition, error) {
	key := rs.getNamespaceKey(tenantId, FLOW_DEF)
	ctx := context.Background()
	val, err := rs.redisClient.HGet(ctx, key, flowId).Result()
	if err != nil {
		if errors.Is(err, rd.Nil) {
			return nil, persistence.NotFoundError{Kind: "flow definition", Id: flowId}
		}
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return rs.encDec.Decode([]byte(val))
}

func (rs *redisDefinitionStore) Delete(tenantId string, flowId string) error {
	key := rs.getNamespaceKey(tenantId, FLOW_DEF)
	ctx := context.Background()
	if err := rs.redisClient.HDel(ctx, key, flowId).Err(); err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (rs *redisDefinitionStore) ListActiveByTrigger(tenantId string, trigger model.TriggerType) ([]model.FlowDefinition, error) {
	key := rs.getNamespaceKey(tenantId, FLOW_DEF)
	ctx := context.Background()
	vals, err := rs.redisClient.HVals(ctx, key).Result()
	if err != nil {
		if errors.Is(err, rd.Nil) {
			return nil, nil
		}
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	var defs []model.FlowDefinition
	for _, val := range vals {
		def, err := rs.encDec.Decode([]byte(val))
		if err != nil {
			logger.Error("can not decode flow definition", zap.String("tenant", tenantId), zap.Error(err))
			continue
		}
		if def.Active && def.Trigger.Type == trigger {
			defs = append(defs, *def)
		}
	}
	return defs, nil
}

func (rs *redisDefinitionStore) ListTenants() ([]string, error) {
	ctx := context.Background()
	tenants, err := rs.redisClient.SMembers(ctx, rs.getNamespaceKey(TENANTS)).Result()
	if err != nil {
		if errors.Is(err, rd.Nil) {
			return nil, nil
		}
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return tenants, nil
}
