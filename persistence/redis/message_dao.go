package redis

import (
	"context"
	"errors"
	"time"

	rd "github.com/go-redis/redis/v9"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/model"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/persistence"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/util"
)

const MESSAGE string = "MESSAGE"

type redisMessageStore struct {
	*baseDao
	encDec util.EncoderDecoder[model.Message]
}

var _ persistence.MessageStore = new(redisMessageStore)

func NewRedisMessageStore(conf Config) *redisMessageStore {
	return &redisMessageStore{
		baseDao: newBaseDao(conf),
		encDec:  util.NewJsonEncoderDecoder[model.Message](),
	}
}

func NewRedisMessageStoreFromClient(client rd.UniversalClient, namespace string) *redisMessageStore {
	return &redisMessageStore{
		baseDao: newBaseDaoFromClient(client, namespace),
		encDec:  util.NewJsonEncoderDecoder[model.Message](),
	}
}

func (rs *redisMessageStore) Create(message model.Message) error {
	key := rs.getNamespaceKey(message.TenantId, MESSAGE)
	ctx := context.Background()
	data, err := rs.encDec.Encode(message)
	if err != nil {
		return err
	}
	if err := rs.redisClient.HSet(ctx, key, message.Id, data).Err(); err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (rs *redisMessageStore) Get(tenantId string, messageId string) (*model.Message, error) {
	key := rs.getNamespaceKey(tenantId, MESSAGE)
	ctx := context.Background()
	val, err := rs.redisClient.HGet(ctx, key, messageId).Result()
	if err != nil {
		if errors.Is(err, rd.Nil) {
			return nil, persistence.NotFoundError{Kind: "message", Id: messageId}
		}
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return rs.encDec.Decode([]byte(val))
}

func (rs *redisMessageStore) MarkSent(tenantId string, messageId string, providerMessageId string, sentAt time.Time) error {
	message, err := rs.Get(tenantId, messageId)
	if err != nil {
		return err
	}
	message.ProviderMessageId = providerMessageId
	message.SentAt = &sentAt
	return rs.Create(*message)
}

func (rs *redisMessageStore) Delete(tenantId string, messageId string) error {
	key := rs.getNamespaceKey(tenantId, MESSAGE)
	ctx := context.Background()
	if err := rs.redisClient.HDel(ctx, key, messageId).Err(); err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}
